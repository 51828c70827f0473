package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nao1215/onepage/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files or stdout with the same
// API.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.Summary) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write summaries, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written; stops on the first error.
func (m *MultiWriter) Write(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// SyncWriter serializes calls to a Writer so that concurrent builds sharing
// one report destination do not interleave their output.
type SyncWriter struct {
	mu     sync.Mutex
	writer Writer
}

// NewSyncWriter wraps w.
func NewSyncWriter(w Writer) *SyncWriter {
	return &SyncWriter{writer: w}
}

// Write outputs the summary while holding the lock.
func (s *SyncWriter) Write(summary *model.Summary) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Write(summary)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// ForFile returns the writer matching the extension of path: JSON for
// ".json", Markdown otherwise.
func ForFile(path string, output io.Writer) Writer {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONWriter(output, WithPrettyPrint())
	}
	return NewMarkdownWriter(output)
}

// FormatBytes renders n with a binary unit, e.g. "1.5 KiB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
