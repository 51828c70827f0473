package model

import "time"

// Summary is a serializable account of one bundle build.
// It is produced by the pipeline and consumed by report writers and the
// history database.
type Summary struct {
	// Root is the root document path as given on the command line.
	Root string `json:"root"`

	// Dest is the output document path.
	Dest string `json:"dest"`

	// Title is the title of the assembled document.
	Title string `json:"title"`

	// RootID is the identity of the root document's source.
	RootID PageID `json:"root_id"`

	// StartedAt is when the build started.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time the build took.
	Duration time.Duration `json:"duration"`

	// Pages lists the root page followed by every linked page.
	Pages []PageSummary `json:"pages"`

	// Resources is the number of src/href attributes replaced by data URLs.
	Resources int `json:"resources"`

	// ResourceBytes is the total size of the inlined resources before encoding.
	ResourceBytes int64 `json:"resource_bytes"`

	// RemoteSkipped is the number of remote references left untouched.
	RemoteSkipped int `json:"remote_skipped"`

	// DedupHits is the number of links that resolved to an already known page.
	DedupHits int `json:"dedup_hits"`

	// Missing lists references whose targets could not be read.
	Missing []MissingReference `json:"missing,omitempty"`

	// OutputSize is the size of the written document in bytes.
	OutputSize int64 `json:"output_size"`
}

// PageSummary describes one page of a build.
type PageSummary struct {
	ID    PageID `json:"id"`
	Title string `json:"title"`
	Size  int    `json:"size"`
	Root  bool   `json:"root,omitempty"`
	SVG   bool   `json:"svg,omitempty"`
}

// MissingReference records a local reference whose target could not be loaded.
type MissingReference struct {
	// Page is the file containing the reference.
	Page string `json:"page"`

	// Tag and Attr locate the reference, e.g. "img" and "src".
	Tag  string `json:"tag"`
	Attr string `json:"attr"`

	// Ref is the attribute value as written in the page.
	Ref string `json:"ref"`

	// Reason is the load error message.
	Reason string `json:"reason"`
}

// LinkedPages returns the number of non-root pages in the summary.
func (s *Summary) LinkedPages() int {
	n := 0
	for _, p := range s.Pages {
		if !p.Root {
			n++
		}
	}
	return n
}
