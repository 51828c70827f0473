package crawler

import "github.com/nao1215/onepage/internal/model"

// Stats counts what a crawl did.
type Stats struct {
	// Pages is the number of HTML pages processed, including the root.
	Pages int

	// SVGLeaves is the number of linked SVG documents stored verbatim.
	SVGLeaves int

	// Resources is the number of attributes replaced by data URLs.
	Resources int

	// ResourceBytes is the total size of the inlined files.
	ResourceBytes int64

	// RemoteSkipped is the number of remote references left untouched.
	RemoteSkipped int

	// DedupHits is the number of links to pages already known.
	DedupHits int

	// Missing lists references whose targets could not be read.
	Missing []model.MissingReference
}

// Result is the outcome of Bundle.
type Result struct {
	// Root is the processed root page. It is never part of Items.
	Root model.Page

	// RootID is the identity of the root page's source. Links back to the
	// root are rewritten to its anchor.
	RootID model.PageID

	// Items are the linked pages in discovery order.
	Items []model.RenderItem

	// Stats describes the crawl.
	Stats Stats

	// svgLeaves marks the items that are SVG leaves.
	svgLeaves map[model.PageID]bool
}

// IsSVG reports whether the item with the given id is an SVG leaf.
func (r *Result) IsSVG(id model.PageID) bool {
	return r.svgLeaves[id]
}
