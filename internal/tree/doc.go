// Package tree wraps golang.org/x/net/html with the small set of tree
// operations onepage needs: parsing a page with strict input decoding,
// walking elements in document order, locating the title and body, picking
// a caption out of an SVG document, and serializing a subtree back to markup.
//
// Design decision: We use golang.org/x/net/html for both parsing and
// serialization rather than encoding/xml because:
//  1. Real-world pages are HTML, not well-formed XML
//  2. The parser applies the same tree construction rules browsers do
//  3. SVG embedded in or linked from HTML is handled as foreign content
package tree
