package tree

import (
	"testing"

	"github.com/go-shiori/dom"
)

// TestTitle tests title extraction.
func TestTitle(t *testing.T) {
	t.Parallel()

	t.Run("finds title text", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><head><title>Bench report</title></head><body></body></html>`)
		title, ok := Title(doc)
		if !ok {
			t.Fatal("expected a title")
		}
		if title != "Bench report" {
			t.Errorf("expected 'Bench report', got %q", title)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><body><p>no title</p></body></html>`)
		if _, ok := Title(doc); ok {
			t.Error("expected no title")
		}
	})

	t.Run("empty title element is not a title", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><head><title></title></head><body></body></html>`)
		if _, ok := Title(doc); ok {
			t.Error("expected no title for empty element")
		}
	})
}

// TestBody tests body extraction.
func TestBody(t *testing.T) {
	t.Parallel()

	t.Run("finds body", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><body class="main"><p>x</p></body></html>`)
		body := Body(doc)
		if body == nil {
			t.Fatal("expected a body")
		}
		if dom.GetAttribute(body, "class") != "main" {
			t.Errorf("expected the body element, got %q", dom.TagName(body))
		}
	})

	t.Run("parser synthesizes body for fragments", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<p>fragment</p>`)
		if Body(doc) == nil {
			t.Error("expected a synthesized body")
		}
	})

	t.Run("no body in a detached subtree", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<html><head><title>t</title></head><body></body></html>`)
		head := dom.QuerySelector(doc, "head")
		if head == nil {
			t.Fatal("expected head")
		}
		if Body(head) != nil {
			t.Error("expected no body below head")
		}
	})
}

// TestSVGTitle tests caption extraction from SVG documents.
func TestSVGTitle(t *testing.T) {
	t.Parallel()

	t.Run("skips boilerplate captions", func(t *testing.T) {
		t.Parallel()

		src := `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg">
<text x="1"><tspan>gnuplot_plot_1</tspan></text>
<text x="2"><tspan>Point estimate</tspan></text>
<text x="3"><tspan>fib 20: PDF</tspan></text>
<text x="4"><tspan>Density</tspan></text>
</svg>`
		doc := mustParse(t, src)
		title, ok := SVGTitle(doc, DefaultSVGIgnorePrefixes)
		if !ok {
			t.Fatal("expected a caption")
		}
		if title != "fib 20: PDF" {
			t.Errorf("expected 'fib 20: PDF', got %q", title)
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		t.Parallel()

		src := `<svg><text><tspan>A</tspan></text><text><tspan>A</tspan></text><text><tspan>B</tspan></text></svg>`
		doc := mustParse(t, src)
		title, ok := SVGTitle(doc, nil)
		if !ok || title != "A" {
			t.Errorf("expected 'A', got %q (%v)", title, ok)
		}
	})

	t.Run("direct text is two levels short", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<svg><title>plain</title></svg>`)
		if _, ok := SVGTitle(doc, nil); ok {
			t.Error("expected no caption for text directly inside title")
		}
	})

	t.Run("only boilerplate yields nothing", func(t *testing.T) {
		t.Parallel()

		doc := mustParse(t, `<svg><text><tspan>gnuplot_x</tspan></text></svg>`)
		if _, ok := SVGTitle(doc, DefaultSVGIgnorePrefixes); ok {
			t.Error("expected no caption")
		}
	})
}
