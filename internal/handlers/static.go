package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// HandlePreview serves the selected image while its token is live
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/preview/")
	session := h.session(w, r)

	img, ok := session.Preview(token)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	// the bytes are user supplied and must stay inert
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	if _, err := w.Write(img.Data); err != nil {
		slog.Error("Unable to write preview", "err", err)
	}
}

// HandleDownload streams a saved file from the backend as an attachment
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/download/")

	// Prevent directory traversal attacks
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, "/\\") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	body, contentType, err := h.backend.Download(r.Context(), filename)
	if err != nil {
		h.writeError(w, "Failed to download file: "+err.Error(), http.StatusBadGateway)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.Copy(w, body); err != nil {
		slog.Error("Unable to stream download", "filename", filename, "err", err)
	}
}

// HandleState returns the session state as JSON
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, h.session(w, r).Snapshot())
}
