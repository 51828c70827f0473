package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/onepage/internal/model"
)

// MarkdownWriter outputs build reports in Markdown format.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the build report.
func (w *MarkdownWriter) Write(s *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeComposition(md, s)
	w.writePages(md, s)
	w.writeMissing(md, s)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the build properties table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("onepage build report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Title", s.Title},
			{"Root", "`" + s.Root + "`"},
			{"Destination", "`" + s.Dest + "`"},
			{"Built", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration.String()},
			{"Pages", strconv.Itoa(len(s.Pages))},
			{"Inlined resources", strconv.Itoa(s.Resources) + " (" + FormatBytes(s.ResourceBytes) + ")"},
			{"Remote references", strconv.Itoa(s.RemoteSkipped)},
			{"Duplicate links", strconv.Itoa(s.DedupHits)},
			{"Output size", FormatBytes(s.OutputSize)},
		},
	})
	md.PlainText("")
}

// writeComposition writes a mermaid pie chart of where the output bytes
// come from.
func (w *MarkdownWriter) writeComposition(md *markdown.Markdown, s *model.Summary) {
	var root, linked, svg int
	for _, p := range s.Pages {
		switch {
		case p.Root:
			root += p.Size
		case p.SVG:
			svg += p.Size
		default:
			linked += p.Size
		}
	}
	if root+linked+svg == 0 {
		return
	}

	md.H2("Composition")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page content by kind (bytes)"),
		piechart.WithShowData(true),
	)
	if root > 0 {
		chart.LabelAndIntValue("Root page", uint64(root))
	}
	if linked > 0 {
		chart.LabelAndIntValue("Linked pages", uint64(linked))
	}
	if svg > 0 {
		chart.LabelAndIntValue("SVG documents", uint64(svg))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePages writes the table of pages in document order.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, s *model.Summary) {
	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, len(s.Pages))
	for i, p := range s.Pages {
		kind := "page"
		switch {
		case p.Root:
			kind = "root"
		case p.SVG:
			kind = "svg"
		}
		rows[i] = []string{
			"`#" + p.ID.Short() + "`",
			kind,
			truncateString(p.Title, 60),
			FormatBytes(int64(p.Size)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Anchor", "Kind", "Title", "Size"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMissing writes the unreadable references, or a tip when there are none.
func (w *MarkdownWriter) writeMissing(md *markdown.Markdown, s *model.Summary) {
	md.H2("Missing references")
	md.PlainText("")

	if len(s.Missing) == 0 {
		md.Tip("Every local reference was inlined.")
		md.PlainText("")
		return
	}

	md.Warningf(
		"%d reference(s) could not be read and were left as they are.",
		len(s.Missing),
	)
	md.PlainText("")

	rows := make([][]string, len(s.Missing))
	for i, m := range s.Missing {
		rows[i] = []string{
			"`" + m.Page + "`",
			"`<" + m.Tag + " " + m.Attr + ">`",
			"`" + truncateString(m.Ref, 60) + "`",
			truncateString(m.Reason, 60),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Attribute", "Reference", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [onepage](https://github.com/nao1215/onepage)*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
