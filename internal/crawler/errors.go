package crawler

import "errors"

// Fatal page errors. They are wrapped in a *PageError identifying the
// offending file and abort the whole run.
//
// Design decision: We only make structural problems fatal. A missing image
// or stylesheet degrades the output, while an unparseable or bodyless page
// would silently drop content the reader expects to find.
var (
	// ErrRead is returned when a page itself (not a resource it references)
	// cannot be read, e.g. a missing root document.
	ErrRead = errors.New("failed to read page")

	// ErrParse is returned when a page's source cannot be decoded or parsed.
	ErrParse = errors.New("failed to parse page")

	// ErrMissingBody is returned when a page has no <body> element, as with
	// frameset documents.
	ErrMissingBody = errors.New("page has no <body> element")

	// ErrSerialize is returned when a rewritten body cannot be rendered.
	ErrSerialize = errors.New("failed to serialize page")
)

// PageError reports a fatal error while processing a page.
type PageError struct {
	// Path is the file being processed.
	Path string

	// Err is the underlying error; it wraps one of the sentinel errors.
	Err error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PageError) Unwrap() error {
	return e.Err
}
