package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unisima/ocr-extractor/internal/api"
	"github.com/unisima/ocr-extractor/internal/controller"
	"github.com/unisima/ocr-extractor/internal/storage"
	"github.com/unisima/ocr-extractor/internal/ui"
)

const (
	sessionCookie = "ocr_session"
	maxUpload     = 10 * 1024 * 1024
)

// Backend is what the handlers need from the OCR backend client
type Backend interface {
	api.Recognizer
	api.Saver
	api.Downloader
}

type Handler struct {
	sessionStore *storage.SessionStore
	backend      Backend
	renderer     *ui.Renderer
	gifPath      string
}

func New(backend Backend, renderer *ui.Renderer) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		backend:      backend,
		renderer:     renderer,
	}
}

// WithGif shows a decorative image under the preview
func (h *Handler) WithGif(path string) *Handler {
	h.gifPath = path
	return h
}

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.HandleIndex)
	mux.HandleFunc("/image", h.HandleImage)
	mux.HandleFunc("/extract/", h.HandleExtract)
	mux.HandleFunc("/save", h.HandleSave)
	mux.HandleFunc("/text", h.HandleText)
	mux.HandleFunc("/theme", h.HandleTheme)
	mux.HandleFunc("/instructions", h.HandleInstructions)
	mux.HandleFunc("/preview/", h.HandlePreview)
	mux.HandleFunc("/download/", h.HandleDownload)
	mux.HandleFunc("/api/state", h.HandleState)
	mux.Handle("/static/", ui.Static())
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// SweepSessions drops sessions idle longer than maxIdle
func (h *Handler) SweepSessions(maxIdle time.Duration) int {
	return h.sessionStore.Sweep(maxIdle)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

func (h *Handler) requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (h *Handler) backToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Session helpers
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *controller.Controller {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if session, ok := h.sessionStore.Get(cookie.Value); ok {
			return session
		}
	}

	sessionID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	slog.Info("Session created", "session_id", sessionID)
	return h.sessionStore.GetOrCreate(sessionID, func() *controller.Controller {
		return controller.New(h.backend, h.backend)
	})
}

// parseForm reads the submitted form and applies any edits made to the text area
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request, session *controller.Controller) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1024*1024)
	err := r.ParseMultipartForm(maxUpload)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		h.writeError(w, "Failed to read form: "+err.Error(), http.StatusBadRequest)
		return false
	}

	if values, ok := r.PostForm["text"]; ok && len(values) > 0 {
		session.SetText(normalizeNewlines(values[0]))
	}
	return true
}

// browsers submit textarea content with CRLF line endings
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
