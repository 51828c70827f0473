package crawler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/nao1215/onepage/internal/dataurl"
	"github.com/nao1215/onepage/internal/model"
	"github.com/nao1215/onepage/internal/tree"
)

// inDocumentPrefixes mark references that already point inside the
// document or carry their content inline. They are skipped without a read.
var inDocumentPrefixes = []string{"#", "data:", "mailto:", "javascript:"}

// inlineSource replaces a local src attribute with a data URL holding the
// referenced file. Unreadable targets are left as they are.
func (c *Crawler) inlineSource(p *page, tag string, n *html.Node) {
	if !dom.HasAttribute(n, "src") {
		return
	}
	ref := dom.GetAttribute(n, "src")
	if !c.isLocal(tag, "src", ref) {
		return
	}

	data, err := c.load(p, ref)
	if err != nil {
		c.recordMissing(p, tag, "src", ref, err)
		return
	}

	mediaType := c.mediaTypes[normalizeExt(filepath.Ext(refPath(ref)))]
	dom.SetAttribute(n, "src", dataurl.Encode(mediaType, charsetFor(mediaType), data))

	c.stats.Resources++
	c.stats.ResourceBytes += int64(len(data))
	c.logger.Debug("inlined resource", "tag", tag, "src", ref, "mediaType", mediaType, "bytes", len(data))
}

// rewriteHref handles href on <link> and <a> elements. Only errors from
// processing a linked page are returned; they are fatal.
func (c *Crawler) rewriteHref(ctx context.Context, p *page, tag string, n *html.Node, reg *model.Registry) error {
	if tag != "link" && tag != "a" {
		return nil
	}
	if !dom.HasAttribute(n, "href") {
		return nil
	}
	ref := dom.GetAttribute(n, "href")
	if !c.isLocal(tag, "href", ref) {
		return nil
	}

	if tag == "link" {
		c.inlineLink(p, n, ref)
		return nil
	}
	return c.followLink(ctx, p, n, ref, reg)
}

// inlineLink replaces <link href> with a type-less data URL of the target.
func (c *Crawler) inlineLink(p *page, n *html.Node, ref string) {
	data, err := c.load(p, ref)
	if err != nil {
		c.recordMissing(p, "link", "href", ref, err)
		return
	}

	dom.SetAttribute(n, "href", dataurl.Encode("", resourceCharset, data))

	c.stats.Resources++
	c.stats.ResourceBytes += int64(len(data))
	c.logger.Info("inlined <link href>", "href", ref, "searchContext", p.searchContext)
}

// followLink rewrites <a href> to the anchor of the linked page and makes
// sure that page ends up in reg exactly once.
func (c *Crawler) followLink(ctx context.Context, p *page, n *html.Node, ref string, reg *model.Registry) error {
	raw, err := c.load(p, ref)
	if err != nil {
		c.recordMissing(p, "a", "href", ref, err)
		return nil
	}
	// Targets that are not text, such as images or archives, are treated
	// like unreadable ones and keep their href.
	text, err := tree.Decode(raw)
	if err != nil {
		c.recordMissing(p, "a", "href", ref, err)
		return nil
	}

	id := model.NewPageID(raw)
	dom.SetAttribute(n, "href", id.Anchor())

	target := resolve(p.searchContext, ref)
	c.logger.Info("found outgoing link", "href", ref, "target", target, "id", id.Short())

	if reg.Contains(id) {
		c.stats.DedupHits++
		c.logger.Debug("page already processed", "target", target, "id", id.Short())
		return nil
	}

	if normalizeExt(filepath.Ext(target)) == "svg" {
		leaf, err := c.svgLeaf(target, raw, text)
		if err != nil {
			return err
		}
		reg.Store(id, leaf)
		c.svgLeaves[id] = true
		c.stats.SVGLeaves++
		return nil
	}

	// Reserve before recursing so a cycle back to this page stops here.
	reg.Reserve(id)
	linked, err := c.process(ctx, target, p.searchContext, raw, reg)
	if err != nil {
		return err
	}
	reg.Store(id, linked)
	return nil
}

// svgLeaf builds the page for a linked SVG document from its source and
// decoded text. The SVG is kept verbatim and its own references are not
// followed.
func (c *Crawler) svgLeaf(file string, raw, text []byte) (model.Page, error) {
	doc, err := tree.Parse(raw)
	if err != nil {
		return model.Page{}, &PageError{Path: file, Err: fmt.Errorf("%w: %w", ErrParse, err)}
	}

	title, ok := tree.SVGTitle(doc, c.svgIgnorePrefixes)
	if !ok {
		title = c.unknownSVGTitle
	}
	c.logger.Debug("stored svg leaf", "file", file, "title", title)

	return model.Page{Title: title, Content: string(text)}, nil
}

// charsetFor returns the charset declared for an inlined resource. Binary
// media types get none; text and untyped resources are declared UTF-8.
func charsetFor(mediaType string) string {
	switch {
	case mediaType == "",
		strings.HasPrefix(mediaType, "text/"),
		strings.HasSuffix(mediaType, "+xml"),
		strings.HasSuffix(mediaType, "/javascript"),
		strings.HasSuffix(mediaType, "/json"):
		return resourceCharset
	default:
		return ""
	}
}

// isLocal reports whether ref should be dereferenced. Remote references are
// counted and logged.
func (c *Crawler) isLocal(tag, attr, ref string) bool {
	if strings.HasPrefix(ref, c.remotePrefix) {
		c.stats.RemoteSkipped++
		c.logger.Debug("ignoring remote reference", "tag", tag, "attr", attr, "ref", ref)
		return false
	}
	if refPath(ref) == "" {
		return false
	}
	for _, prefix := range inDocumentPrefixes {
		if strings.HasPrefix(strings.ToLower(ref), prefix) {
			return false
		}
	}
	return true
}

// load reads a reference relative to the page's search context.
func (c *Crawler) load(p *page, ref string) ([]byte, error) {
	c.logger.Debug("loading", "searchContext", p.searchContext, "ref", ref)
	return c.src.ReadFile(resolve(p.searchContext, ref))
}

// recordMissing logs and records a reference whose target could not be read
// or decoded.
func (c *Crawler) recordMissing(p *page, tag, attr, ref string, err error) {
	c.logger.Warn("couldn't load referenced file, ignoring",
		"page", p.file,
		"tag", tag,
		"attr", attr,
		"ref", ref,
		"error", err,
	)
	c.stats.Missing = append(c.stats.Missing, model.MissingReference{
		Page:   p.file,
		Tag:    tag,
		Attr:   attr,
		Ref:    ref,
		Reason: err.Error(),
	})
}
