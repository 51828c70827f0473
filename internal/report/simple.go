package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/onepage/internal/model"
)

// SimpleWriter prints a short plain-text summary of a build.
//
// Design decision: We use plain text without ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
type SimpleWriter struct {
	baseWriter

	// verbose lists every page and missing reference.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the page and missing reference listings.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(s *model.Summary) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Wrote %s (%s)\n", s.Dest, FormatBytes(s.OutputSize))
	fmt.Fprintf(&sb, "  Title:     %s\n", s.Title)
	fmt.Fprintf(&sb, "  Pages:     %d (root + %d linked)\n", len(s.Pages), s.LinkedPages())
	fmt.Fprintf(&sb, "  Resources: %d inlined (%s)\n", s.Resources, FormatBytes(s.ResourceBytes))
	if s.RemoteSkipped > 0 {
		fmt.Fprintf(&sb, "  Remote:    %d left as links\n", s.RemoteSkipped)
	}
	fmt.Fprintf(&sb, "  Duration:  %s\n", s.Duration.Round(time.Millisecond))

	if len(s.Missing) > 0 {
		fmt.Fprintf(&sb, "  Missing:   %d reference(s) could not be read\n", len(s.Missing))
	}

	if w.verbose {
		w.writePages(&sb, s)
		w.writeMissing(&sb, s)
	}

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writePages(sb *strings.Builder, s *model.Summary) {
	if len(s.Pages) == 0 {
		return
	}
	sb.WriteString("\n")
	for _, p := range s.Pages {
		kind := "page"
		switch {
		case p.Root:
			kind = "root"
		case p.SVG:
			kind = "svg"
		}
		fmt.Fprintf(sb, "  [%s] %-4s %s (%s)\n", p.ID.Short(), kind, p.Title, FormatBytes(int64(p.Size)))
	}
}

func (w *SimpleWriter) writeMissing(sb *strings.Builder, s *model.Summary) {
	if len(s.Missing) == 0 {
		return
	}
	sb.WriteString("\n")
	for _, m := range s.Missing {
		fmt.Fprintf(sb, "  [!] %s: <%s %s=%q>\n", m.Page, m.Tag, m.Attr, m.Ref)
	}
}
