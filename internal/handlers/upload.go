package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/unisima/ocr-extractor/internal/models"
)

func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if !h.requirePost(w, r) {
		return
	}

	session := h.session(w, r)
	if !h.parseForm(w, r, session) {
		return
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		// the chooser was dismissed
		h.backToIndex(w, r)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	img, err := readImage(file, header)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session.ChooseImage(img)
	h.backToIndex(w, r)
}

func readImage(file multipart.File, header *multipart.FileHeader) (*models.Image, error) {
	// Limit file size to 10MB
	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if len(data) > maxUpload {
		return nil, fmt.Errorf("file too large (max 10MB)")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("unsupported file type %s", mimeType)
	}

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "imagen"
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		slog.Info("Image received", "name", name, "format", format, "width", cfg.Width, "height", cfg.Height)
	} else {
		slog.Warn("Failed to get image dimensions", "name", name, "error", err)
	}

	return &models.Image{
		Name:     name,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
