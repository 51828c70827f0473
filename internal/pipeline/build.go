package pipeline

import (
	"time"

	"github.com/nao1215/onepage/internal/crawler"
	"github.com/nao1215/onepage/internal/database"
	"github.com/nao1215/onepage/internal/model"
)

// Build is the state of one bundle run. Steps read their inputs from it
// and store their results on it.
type Build struct {
	// Root is the root document path.
	Root string

	// Dest is the output document path.
	Dest string

	// Title overrides the document title. Empty means the root page's title.
	Title string

	// Generator is written to the output's generator meta tag.
	Generator string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Result is set by CrawlStep.
	Result *crawler.Result

	// Output is the assembled document, set by AssembleStep.
	Output []byte

	// OutputSize is the number of bytes written by WriteStep.
	OutputSize int64

	// CompletedSteps lists the names of the steps that succeeded.
	CompletedSteps []string

	// Err is the error that stopped the pipeline, if any.
	Err error

	// BuildID is the history id assigned by HistoryStep.
	BuildID int64

	// Previous is the last recorded build of the same root, if any.
	Previous *database.BuildRecord
}

// NewBuild creates a Build for root and dest.
func NewBuild(root, dest string) *Build {
	return &Build{
		Root:           root,
		Dest:           dest,
		StartedAt:      time.Now(),
		CompletedSteps: make([]string, 0),
	}
}

// DocumentTitle returns the title of the assembled document.
func (b *Build) DocumentTitle() string {
	if b.Title != "" || b.Result == nil {
		return b.Title
	}
	return b.Result.Root.Title
}

// Duration returns how long the build took, or has taken so far.
func (b *Build) Duration() time.Duration {
	if b.FinishedAt.IsZero() {
		return time.Since(b.StartedAt)
	}
	return b.FinishedAt.Sub(b.StartedAt)
}

// Summary returns the serializable account of the build. The root page is
// listed first, followed by the linked pages in output order.
func (b *Build) Summary() *model.Summary {
	s := &model.Summary{
		Root:       b.Root,
		Dest:       b.Dest,
		Title:      b.DocumentTitle(),
		StartedAt:  b.StartedAt,
		Duration:   b.Duration(),
		OutputSize: b.OutputSize,
	}
	if b.Result == nil {
		return s
	}

	res := b.Result
	s.RootID = res.RootID
	s.Resources = res.Stats.Resources
	s.ResourceBytes = res.Stats.ResourceBytes
	s.RemoteSkipped = res.Stats.RemoteSkipped
	s.DedupHits = res.Stats.DedupHits
	s.Missing = res.Stats.Missing

	s.Pages = make([]model.PageSummary, 0, len(res.Items)+1)
	s.Pages = append(s.Pages, model.PageSummary{
		ID:    res.RootID,
		Title: res.Root.Title,
		Size:  res.Root.Size(),
		Root:  true,
	})
	for _, item := range res.Items {
		s.Pages = append(s.Pages, model.PageSummary{
			ID:    item.LinkMarker,
			Title: item.Title,
			Size:  item.Size(),
			SVG:   res.IsSVG(item.LinkMarker),
		})
	}
	return s
}
