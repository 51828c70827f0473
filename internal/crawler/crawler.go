package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/onepage/internal/model"
	"github.com/nao1215/onepage/internal/source"
	"github.com/nao1215/onepage/internal/tree"
)

// Defaults used when no option overrides them.
const (
	// DefaultRemotePrefix marks references that are never dereferenced.
	DefaultRemotePrefix = "http"

	// DefaultMissingTitle is used for pages without a <title>.
	DefaultMissingTitle = "Missing title"

	// DefaultUnknownSVGTitle is used for SVG leaves without a usable caption.
	DefaultUnknownSVGTitle = "Unknown"

	// resourceCharset is the charset declared on inlined text resources.
	resourceCharset = "UTF-8"
)

// DefaultMediaTypes maps lowercase file extensions (without the dot) to the
// media type declared on inlined src resources. Other extensions get an
// empty media type.
var DefaultMediaTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
}

// Crawler processes a root document and every page it links to.
//
// A Crawler is not safe for concurrent use. Each call to Bundle resets its
// statistics.
type Crawler struct {
	// src reads pages and resources.
	src source.Source

	// logger receives progress and warnings.
	logger *slog.Logger

	// remotePrefix marks references that are left untouched.
	remotePrefix string

	// missingTitle replaces an absent <title>.
	missingTitle string

	// unknownSVGTitle replaces an absent SVG caption.
	unknownSVGTitle string

	// svgIgnorePrefixes are boilerplate SVG captions to skip.
	svgIgnorePrefixes []string

	// mediaTypes maps extensions to media types for src resources.
	mediaTypes map[string]string

	// stats accumulates counters for the current run.
	stats Stats

	// svgLeaves records which stored pages are SVG leaves.
	svgLeaves map[model.PageID]bool
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithSource sets the file source. The default reads from the local disk.
func WithSource(src source.Source) Option {
	return func(c *Crawler) {
		c.src = src
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithRemotePrefix sets the prefix that marks remote references.
func WithRemotePrefix(prefix string) Option {
	return func(c *Crawler) {
		c.remotePrefix = prefix
	}
}

// WithMissingTitle sets the title used for pages without one.
func WithMissingTitle(title string) Option {
	return func(c *Crawler) {
		c.missingTitle = title
	}
}

// WithUnknownSVGTitle sets the title used for SVG leaves without a caption.
func WithUnknownSVGTitle(title string) Option {
	return func(c *Crawler) {
		c.unknownSVGTitle = title
	}
}

// WithSVGIgnorePrefixes replaces the boilerplate caption prefixes.
func WithSVGIgnorePrefixes(prefixes []string) Option {
	return func(c *Crawler) {
		c.svgIgnorePrefixes = prefixes
	}
}

// WithMediaTypes adds extension to media type mappings on top of
// DefaultMediaTypes. Extensions are matched case-insensitively and may be
// given with or without the leading dot.
func WithMediaTypes(types map[string]string) Option {
	return func(c *Crawler) {
		for ext, mediaType := range types {
			c.mediaTypes[normalizeExt(ext)] = mediaType
		}
	}
}

// New creates a Crawler with the given options.
func New(opts ...Option) *Crawler {
	c := &Crawler{
		src:               source.OS{},
		remotePrefix:      DefaultRemotePrefix,
		missingTitle:      DefaultMissingTitle,
		unknownSVGTitle:   DefaultUnknownSVGTitle,
		svgIgnorePrefixes: tree.DefaultSVGIgnorePrefixes,
		mediaTypes:        maps.Clone(DefaultMediaTypes),
		svgLeaves:         make(map[model.PageID]bool),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Stats returns the counters accumulated since the last Bundle call.
func (c *Crawler) Stats() Stats {
	s := c.stats
	s.Missing = append([]model.MissingReference(nil), c.stats.Missing...)
	return s
}

// Bundle processes rootFile and every page reachable from it.
//
// The root page's own identity is reserved in the registry before
// processing, so links back to the root become anchors to it instead of a
// second copy. The root is returned separately and never appears in Items.
func (c *Crawler) Bundle(ctx context.Context, rootFile string) (*Result, error) {
	c.stats = Stats{}
	c.svgLeaves = make(map[model.PageID]bool)

	raw, err := c.src.ReadFile(rootFile)
	if err != nil {
		return nil, &PageError{Path: rootFile, Err: fmt.Errorf("%w: %w", ErrRead, err)}
	}

	reg := model.NewRegistry()
	rootID := model.NewPageID(raw)
	reg.Reserve(rootID)

	c.logger.Info("bundling", "root", rootFile, "id", rootID.Short())

	root, err := c.process(ctx, rootFile, filepath.Dir(rootFile), raw, reg)
	if err != nil {
		return nil, err
	}

	return &Result{
		Root:      root,
		RootID:    rootID,
		Items:     reg.Items(),
		Stats:     c.Stats(),
		svgLeaves: maps.Clone(c.svgLeaves),
	}, nil
}

// Process reads currentFile, rewrites its body and returns the page.
// Linked pages discovered on the way are stored in reg; currentFile itself
// is not.
//
// Relative references are resolved against the directory of currentFile,
// or against parentSearchContext when currentFile has no directory part.
func (c *Crawler) Process(ctx context.Context, currentFile, parentSearchContext string, reg *model.Registry) (model.Page, error) {
	raw, err := c.src.ReadFile(currentFile)
	if err != nil {
		return model.Page{}, &PageError{Path: currentFile, Err: fmt.Errorf("%w: %w", ErrRead, err)}
	}
	return c.process(ctx, currentFile, parentSearchContext, raw, reg)
}

// page is the per-document state of one process call.
type page struct {
	// file is the document being processed.
	file string

	// searchContext is the directory references are resolved against.
	searchContext string
}

// process rewrites the document whose source is raw.
// raw is passed in so a linked page is hashed and parsed from the same read.
func (c *Crawler) process(ctx context.Context, file, parentSearchContext string, raw []byte, reg *model.Registry) (model.Page, error) {
	if err := ctx.Err(); err != nil {
		return model.Page{}, err
	}

	p := &page{
		file:          file,
		searchContext: searchContextFor(file, parentSearchContext),
	}
	c.logger.Debug("processing page", "file", file, "searchContext", p.searchContext)

	doc, err := tree.Parse(raw)
	if err != nil {
		return model.Page{}, &PageError{Path: file, Err: fmt.Errorf("%w: %w", ErrParse, err)}
	}

	title, ok := tree.Title(doc)
	if ok {
		c.logger.Debug("found title", "file", file, "title", title)
	} else {
		c.logger.Warn("page has no title", "file", file)
		title = c.missingTitle
	}

	body := tree.Body(doc)
	if body == nil {
		return model.Page{}, &PageError{Path: file, Err: ErrMissingBody}
	}

	var walkErr error
	tree.Walk(body, func(tag string, n *html.Node) tree.Action {
		c.inlineSource(p, tag, n)
		if err := c.rewriteHref(ctx, p, tag, n, reg); err != nil {
			walkErr = err
			return tree.Break
		}
		return tree.Next
	})
	if walkErr != nil {
		return model.Page{}, walkErr
	}

	content, err := tree.InnerHTML(body)
	if err != nil {
		return model.Page{}, &PageError{Path: file, Err: fmt.Errorf("%w: %w", ErrSerialize, err)}
	}

	c.stats.Pages++
	return model.Page{Title: title, Content: content}, nil
}

// searchContextFor returns the directory of file, or parent when file has
// no directory component.
func searchContextFor(file, parent string) string {
	if file == "" {
		return parent
	}
	dir := filepath.Dir(file)
	if dir == file {
		return parent
	}
	return dir
}

// resolve joins a reference onto the search context. Any query or fragment
// is dropped; absolute references replace the search context.
func resolve(searchContext, ref string) string {
	ref = filepath.FromSlash(refPath(ref))
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref)
	}
	return filepath.Join(searchContext, ref)
}

// refPath returns ref without its query and fragment.
func refPath(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

// normalizeExt lowercases an extension and strips its leading dot.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
