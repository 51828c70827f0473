package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"

	"github.com/nao1215/onepage/internal/model"
)

//go:embed templates/document.html.tmpl
var templateFS embed.FS

var documentTemplate = template.Must(
	template.ParseFS(templateFS, "templates/document.html.tmpl"),
)

// ErrNoRootID is returned when the input has no root identity, which would
// leave the root section without an anchor.
var ErrNoRootID = errors.New("render: root page has no id")

// Input is everything needed to assemble the output document.
type Input struct {
	// Title is the document title. Empty means the root page's title.
	Title string

	// Root is the processed root page.
	Root model.Page

	// RootID is the identity of the root page.
	RootID model.PageID

	// Items are the linked pages in the order they are rendered.
	Items []model.RenderItem

	// IsSVG reports whether an item is an SVG leaf. May be nil.
	IsSVG func(model.PageID) bool

	// Generator is written to the generator meta tag when not empty.
	Generator string
}

type section struct {
	ID      string
	Title   string
	Content template.HTML
	SVG     bool
}

type view struct {
	Title     string
	Generator string
	Sections  []section
}

// Document writes the assembled HTML document for in to w.
//
// Page content is inserted verbatim. It was serialized by the crawler from
// a parsed tree, so it is well-formed markup rather than untrusted text.
func Document(w io.Writer, in Input) error {
	if in.RootID.IsZero() {
		return ErrNoRootID
	}

	v := view{
		Title:     in.Title,
		Generator: in.Generator,
		Sections:  make([]section, 0, len(in.Items)+1),
	}
	if v.Title == "" {
		v.Title = in.Root.Title
	}

	v.Sections = append(v.Sections, section{
		ID:      in.RootID.String(),
		Title:   in.Root.Title,
		Content: template.HTML(in.Root.Content), //nolint:gosec // serialized by the crawler
	})
	for _, item := range in.Items {
		v.Sections = append(v.Sections, section{
			ID:      item.LinkMarker.String(),
			Title:   item.Title,
			Content: template.HTML(item.Content), //nolint:gosec // serialized by the crawler
			SVG:     in.IsSVG != nil && in.IsSVG(item.LinkMarker),
		})
	}

	if err := documentTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	return nil
}
