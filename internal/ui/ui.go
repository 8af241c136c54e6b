// Package ui renders the single page of the OCR front end from a controller snapshot.
package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"github.com/yuin/goldmark"

	"github.com/unisima/ocr-extractor/internal/controller"
	"github.com/unisima/ocr-extractor/internal/models"
	"github.com/unisima/ocr-extractor/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed instructions.md
var instructionsMarkdown []byte

// Page is everything one render needs
type Page struct {
	State    controller.Snapshot
	Download *models.Download
	GifPath  string
	Now      time.Time
}

// FooterProps drives the page footer
type FooterProps struct {
	Year   int
	Color  string
	Border string
}

type view struct {
	Palette          theme.Palette
	Header           HeaderProps
	ShowInstructions bool
	Instructions     template.HTML
	Buttons          ButtonsProps
	Loader           LoaderProps
	Preview          PreviewProps
	TextArea         TextAreaProps
	Footer           FooterProps
	DownloadURL      string
}

// Renderer holds the parsed templates
type Renderer struct {
	tmpl         *template.Template
	instructions template.HTML
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	var buf bytes.Buffer
	if err := goldmark.New().Convert(instructionsMarkdown, &buf); err != nil {
		return nil, fmt.Errorf("failed to render instructions: %w", err)
	}

	return &Renderer{
		tmpl: tmpl,
		// the markdown is embedded at build time
		instructions: template.HTML(buf.String()),
	}, nil
}

// Render writes the full page
func (r *Renderer) Render(w io.Writer, page Page) error {
	s := page.State
	now := page.Now
	if now.IsZero() {
		now = time.Now()
	}

	v := view{
		Palette:          s.Palette,
		Header:           Header(s.Theme, s.Palette),
		ShowInstructions: s.ShowInstructions,
		Instructions:     r.instructions,
		Buttons:          Buttons(s),
		Loader:           Loader(s),
		Preview:          Preview(s, page.GifPath),
		TextArea:         TextArea(s),
		Footer:           FooterProps{Year: now.Year(), Color: s.Palette.Text, Border: s.Palette.Border},
	}
	if page.Download != nil {
		v.DownloadURL = "/download/" + url.PathEscape(page.Download.Filename)
	}

	return r.tmpl.ExecuteTemplate(w, "page", v)
}

// Static serves the embedded stylesheet and images under /static/
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
