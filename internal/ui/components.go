package ui

import (
	"html/template"
	"strings"

	"github.com/unisima/ocr-extractor/internal/accumulator"
	"github.com/unisima/ocr-extractor/internal/controller"
	"github.com/unisima/ocr-extractor/internal/theme"
)

// HeaderProps drives the title bar
type HeaderProps struct {
	Title       string
	Color       string
	ToggleTitle string
	ToggleIcon  string
}

func Header(mode theme.Mode, p theme.Palette) HeaderProps {
	h := HeaderProps{Title: "OCR Extractor Pro", Color: p.Text}
	if mode == theme.Dark {
		h.ToggleTitle, h.ToggleIcon = "Cambiar a tema claro", "☀"
	} else {
		h.ToggleTitle, h.ToggleIcon = "Cambiar a tema oscuro", "☾"
	}
	return h
}

// ButtonsProps drives the action panel
type ButtonsProps struct {
	Palette         theme.Palette
	DisabledExtract bool
	DisabledSave    bool
	Loading         bool
	ExtractLabel    string
}

func Buttons(s controller.Snapshot) ButtonsProps {
	b := ButtonsProps{
		Palette:         s.Palette,
		DisabledExtract: !s.CanExtract(),
		DisabledSave:    !s.CanSave(),
		Loading:         s.Busy,
		ExtractLabel:    "🔍 Extraer texto (Easy OCR + PyTesseract)",
	}
	if s.Busy {
		b.ExtractLabel = "Procesando…"
	}
	return b
}

// LoaderProps drives the busy bar
type LoaderProps struct {
	Visible    bool
	Background template.CSS
	Class      string
}

func Loader(s controller.Snapshot) LoaderProps {
	l := LoaderProps{Visible: s.Busy, Background: "rgba(37, 99, 235, 0.2)", Class: "light"}
	if s.Theme == theme.Dark {
		l.Background, l.Class = "rgba(37, 99, 235, 0.15)", "dark"
	}
	return l
}

// PreviewProps drives the image panel
type PreviewProps struct {
	Palette    theme.Palette
	PreviewURL string
	ImageName  string
	Types      string
	PickedAt   string
	Sections   string
	GifPath    string
}

func Preview(s controller.Snapshot, gifPath string) PreviewProps {
	types := "—"
	if len(s.MIMETypes) > 0 {
		types = strings.Join(s.MIMETypes, ", ")
	}
	p := PreviewProps{
		Palette:    s.Palette,
		PreviewURL: s.PreviewURL,
		ImageName:  s.ImageName,
		Types:      types,
		Sections:   strings.Join(accumulator.Names(s.Text), ", "),
		GifPath:    gifPath,
	}
	if s.HasImage && !s.ImagePickedAt.IsZero() {
		p.PickedAt = s.ImagePickedAt.Format("15:04:05")
	}
	return p
}

// MessageStyle colors the status line under the text area
type MessageStyle struct {
	Class      string
	Background template.CSS
	Border     string
	Color      string
}

// TextAreaProps drives the editable text panel
type TextAreaProps struct {
	Palette theme.Palette
	Text    string
	Message string
	Style   MessageStyle
}

func TextArea(s controller.Snapshot) TextAreaProps {
	dark := s.Theme == theme.Dark
	style := MessageStyle{}
	switch {
	case s.StatusIsError:
		style.Class = "error"
		style.Border = "#ff6b6b"
		style.Color = "#ffb3b3"
		style.Background = template.CSS(pick(dark, "rgba(255, 80, 80, 0.15)", "rgba(255, 90, 90, 0.2)"))
	default:
		style.Class = "success"
		style.Border = s.Palette.Success
		style.Color = pick(dark, "#b6ffce", "#065f46")
		style.Background = template.CSS(pick(dark, "rgba(22, 163, 74, 0.25)", "rgba(34, 197, 94, 0.2)"))
	}
	style.Class += " " + string(s.Theme)

	return TextAreaProps{
		Palette: s.Palette,
		Text:    s.Text,
		Message: s.Status.String(),
		Style:   style,
	}
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
