package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// ErrInvalidEncoding is returned by Parse when a page that is UTF-8, either
// by declaration or because it declares nothing, contains invalid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8 in page source")

// utf8BOM is the byte order mark discarded before parsing.
var utf8BOM = []byte("\xef\xbb\xbf")

// Parse decodes raw page bytes to UTF-8 and parses them as an HTML document
// with scripting disabled, so <noscript> content is parsed as markup.
//
// The encoding is taken from a byte order mark or a <meta charset>
// declaration. Declared legacy encodings are converted to UTF-8; content
// that declares nothing must already be valid UTF-8. A leading byte order
// mark is discarded.
func Parse(raw []byte) (*html.Node, error) {
	text, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	doc, err := html.ParseWithOptions(bytes.NewReader(text), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// Decode converts raw page bytes to UTF-8 without a byte order mark.
func Decode(raw []byte) ([]byte, error) {
	enc, name, certain := charset.DetermineEncoding(raw, "text/html")

	// Without a BOM the sniffer guesses, falling back to windows-1252 for
	// anything, including plain ASCII. Only an explicit <meta> declaration
	// overrides UTF-8.
	if !certain {
		enc, name = nil, "utf-8"
		if label := declaredCharset(raw); label != "" {
			if e, canonical := charset.Lookup(label); e != nil && !strings.HasPrefix(canonical, "utf-16") {
				enc, name = e, canonical
			}
		}
	}

	if name == "utf-8" {
		text := bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(text) {
			return nil, ErrInvalidEncoding
		}
		return text, nil
	}

	text, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s page: %w", name, err)
	}
	return bytes.TrimPrefix(text, utf8BOM), nil
}

// prescanLimit is how far into a document a <meta> declaration is looked for.
const prescanLimit = 1024

// declaredCharset returns the charset label of the first <meta> element in
// the head of the document that declares one, either through a charset
// attribute or an http-equiv Content-Type. It returns "" when there is none.
func declaredCharset(raw []byte) string {
	head := raw
	if len(head) > prescanLimit {
		head = head[:prescanLimit]
	}

	z := html.NewTokenizer(bytes.NewReader(head))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr || string(name) != "meta" {
				continue
			}
			if label := metaCharset(z); label != "" {
				return label
			}
		}
	}
}

// metaCharset reads the attributes of the current <meta> token.
func metaCharset(z *html.Tokenizer) string {
	var label, content string
	var contentType bool
	for more := true; more; {
		var key, val []byte
		key, val, more = z.TagAttr()
		switch string(key) {
		case "charset":
			label = strings.TrimSpace(string(val))
		case "http-equiv":
			contentType = strings.EqualFold(strings.TrimSpace(string(val)), "content-type")
		case "content":
			content = string(val)
		}
	}

	if label != "" {
		return label
	}
	if contentType {
		return contentCharset(content)
	}
	return ""
}

// contentCharset extracts the charset parameter of a Content-Type value
// such as `text/html; charset=iso-8859-1`.
func contentCharset(content string) string {
	const param = "charset"
	i := -1
	for k := 0; k+len(param) <= len(content); k++ {
		if strings.EqualFold(content[k:k+len(param)], param) {
			i = k
			break
		}
	}
	if i < 0 {
		return ""
	}
	rest := strings.TrimLeft(content[i+len(param):], " \t")
	rest, ok := strings.CutPrefix(rest, "=")
	if !ok {
		return ""
	}
	rest = strings.Trim(strings.TrimSpace(rest), `"'`)
	if j := strings.IndexAny(rest, " \t;\"'"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// RenderChildren serializes the children of n, but not n itself, to w.
func RenderChildren(w io.Writer, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return err
		}
	}
	return nil
}

// InnerHTML returns the serialized children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf strings.Builder
	if err := RenderChildren(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
