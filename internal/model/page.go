package model

// Page is the result of processing one document: its extracted title and
// the serialized, rewritten body fragment.
//
// A Page is created exactly once per distinct PageID, when processing of the
// document finishes, and is treated as immutable afterwards.
type Page struct {
	// Title is the text of the first <title> element, or a placeholder when
	// the document has none. For SVG leaves it is the representative caption.
	Title string `json:"title"`

	// Content is the rewritten body markup. For SVG leaves it is the
	// unmodified SVG source.
	Content string `json:"content"`
}

// Size returns the length of the page content in bytes.
func (p Page) Size() int {
	return len(p.Content)
}

// RenderItem pairs a linked page with the identity it is anchored under in
// the assembled document.
type RenderItem struct {
	// LinkMarker is the identity whose hex form every rewritten link uses.
	LinkMarker PageID `json:"linkmarker"`

	// Page is the processed page.
	Page `json:"page"`
}
