package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/nao1215/onepage/internal/dataurl"
)

// DefaultMaxValueLen is the longest string value, in bytes, written as is.
const DefaultMaxValueLen = 256

// Format names accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ElidingHandler wraps an slog.Handler and shortens oversized string values.
//
// Design decision: We use a handler wrapper rather than wrapping call sites
// because:
//  1. Every package logs through plain *slog.Logger values
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Attributes added through With are covered too
type ElidingHandler struct {
	// handler receives the shortened records.
	handler slog.Handler

	// maxLen is the longest string value passed through unchanged.
	maxLen int
}

// NewElidingHandler creates an ElidingHandler around handler.
// A nil handler means slog.Default().Handler(); maxLen <= 0 means
// DefaultMaxValueLen.
func NewElidingHandler(handler slog.Handler, maxLen int) *ElidingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxValueLen
	}
	return &ElidingHandler{handler: handler, maxLen: maxLen}
}

// Enabled delegates to the underlying handler.
func (h *ElidingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle shortens the record's attributes and passes it on.
func (h *ElidingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.elide(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a new handler with the shortened attributes added.
func (h *ElidingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	elided := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		elided[i] = h.elide(a)
	}
	return &ElidingHandler{handler: h.handler.WithAttrs(elided), maxLen: h.maxLen}
}

// WithGroup returns a new handler with the given group name.
func (h *ElidingHandler) WithGroup(name string) slog.Handler {
	return &ElidingHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

func (h *ElidingHandler) elide(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		elided := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			elided[i] = h.elide(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(elided...)}
	case slog.KindString:
		return slog.String(a.Key, Elide(a.Value.String(), h.maxLen))
	default:
		return a
	}
}

// Elide shortens s for logging. Data URLs are summarized by Describe from the
// dataurl package; other strings longer than maxLen bytes are cut at a rune
// boundary and suffixed with their full length.
func Elide(s string, maxLen int) string {
	if dataurl.IsDataURL(s) {
		return dataurl.Describe(s)
	}
	if len(s) <= maxLen {
		return s
	}

	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s…(%d bytes)", s[:cut], len(s))
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewLogger creates a text logger that shortens oversized values.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(verbose)}
	return slog.New(NewElidingHandler(slog.NewTextHandler(w, opts), 0))
}

// NewJSONLogger is like NewLogger but writes JSON records.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(verbose)}
	return slog.New(NewElidingHandler(slog.NewJSONHandler(w, opts), 0))
}

// New returns NewLogger or NewJSONLogger depending on format.
// An empty format means FormatText.
func New(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	switch format {
	case "", FormatText:
		return NewLogger(w, verbose), nil
	case FormatJSON:
		return NewJSONLogger(w, verbose), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
