// Package crawler turns a tree of locally linked HTML and SVG documents into
// the pieces of one self-contained document.
//
// # Architecture
//
// The package is designed around the Crawler type. Starting from a root page
// it walks the body of each document and rewrites references in place:
//
//   - src attributes are replaced by data URLs holding the referenced file
//   - <link href> attributes are replaced by data URLs as well
//   - <a href> attributes become in-document anchors (#<page id>), and the
//     linked page is processed recursively and stored in a model.Registry
//
// Linked pages are identified by the SHA-256 of their exact source bytes
// (model.PageID), so two paths reaching byte-identical files produce one
// page. Linked SVG files are stored verbatim as leaves; their own links are
// not followed.
//
// # Errors
//
// A reference whose target cannot be read is logged, recorded in Stats and
// left untouched. A page that cannot be parsed, has no <body>, or cannot be
// serialized aborts the whole run with a *PageError naming the file.
//
// # Remote references
//
// Values starting with the remote prefix ("http" by default) are never read.
// This is a plain textual prefix check, so "httpfoo" counts as remote too.
//
// # Usage
//
//	c := crawler.New(crawler.WithLogger(logger))
//	result, err := c.Bundle(ctx, "site/index.html")
package crawler
