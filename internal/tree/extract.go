package tree

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultSVGIgnorePrefixes are caption prefixes emitted as boilerplate by
// benchmark plotting tools (criterion via gnuplot). Captions starting with
// them never name what the chart is about.
var DefaultSVGIgnorePrefixes = []string{"Point estimate", "gnuplot_"}

// Title returns the text of the first <title> element whose first child is
// a text node. The second result is false when there is no such element.
func Title(root *html.Node) (string, bool) {
	var (
		title string
		found bool
	)
	Walk(root, func(tag string, n *html.Node) Action {
		if tag != "title" {
			return Next
		}
		if c := n.FirstChild; c != nil && c.Type == html.TextNode {
			title = c.Data
			found = true
			return Break
		}
		return Next
	})
	return title, found
}

// Body returns the first <body> element, or nil when there is none.
func Body(root *html.Node) *html.Node {
	var body *html.Node
	Walk(root, func(tag string, n *html.Node) Action {
		if tag == "body" {
			body = n
			return Break
		}
		return Next
	})
	return body
}

// SVGTitle picks a human readable caption out of an SVG document.
//
// Charts written by plotting tools wrap their captions as
// <text><tspan>caption</tspan></text>, so for every <title> or <text>
// element the text two levels below it (first child of the first child) is
// collected. Captions are deduplicated keeping first-seen order, entries
// starting with any of ignorePrefixes are dropped, and the first remaining
// caption is returned.
func SVGTitle(root *html.Node, ignorePrefixes []string) (string, bool) {
	seen := make(map[string]bool)
	captions := make([]string, 0)

	Walk(root, func(tag string, n *html.Node) Action {
		if tag != "title" && tag != "text" {
			return Next
		}
		inner := n.FirstChild
		if inner == nil {
			return Next
		}
		if c := inner.FirstChild; c != nil && c.Type == html.TextNode {
			if !seen[c.Data] {
				seen[c.Data] = true
				captions = append(captions, c.Data)
			}
		}
		return Next
	})

	for _, caption := range captions {
		if !hasAnyPrefix(caption, ignorePrefixes) {
			return caption, true
		}
	}
	return "", false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
