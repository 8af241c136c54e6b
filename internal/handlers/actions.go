package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/unisima/ocr-extractor/internal/controller"
	"github.com/unisima/ocr-extractor/internal/ui"
)

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := h.session(w, r)
	page := ui.Page{
		State:    session.Snapshot(),
		Download: session.TakeDownload(),
		GifPath:  h.gifPath,
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		h.writeError(w, "Failed to render page: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write page", "err", err)
	}
}

func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	var engine controller.Engine
	switch strings.TrimPrefix(r.URL.Path, "/extract/") {
	case "local":
		engine = controller.Local
	case "cloud":
		engine = controller.Cloud
	default:
		http.NotFound(w, r)
		return
	}

	session := h.session(w, r)
	if !h.parseForm(w, r, session) {
		return
	}

	// the outcome is reported through the session status
	if err := session.Recognize(r.Context(), engine); err != nil {
		slog.Info("Recognition did not add text", "engine", engine, "reason", err)
	}
	h.backToIndex(w, r)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}
	session := h.session(w, r)
	if !h.parseForm(w, r, session) {
		return
	}

	if _, err := session.SaveAll(r.Context()); err != nil {
		slog.Info("Save did not produce a download", "reason", err)
	}
	h.backToIndex(w, r)
}

func (h *Handler) HandleText(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}
	session := h.session(w, r)
	if !h.parseForm(w, r, session) {
		return
	}
	h.backToIndex(w, r)
}

func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}
	session := h.session(w, r)
	if !h.parseForm(w, r, session) {
		return
	}
	session.ToggleTheme()
	h.backToIndex(w, r)
}

func (h *Handler) HandleInstructions(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}
	session := h.session(w, r)
	if !h.parseForm(w, r, session) {
		return
	}
	session.ToggleInstructions()
	h.backToIndex(w, r)
}
