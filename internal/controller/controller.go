// Package controller owns the state of one OCR session and wires user actions to the backend.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unisima/ocr-extractor/internal/accumulator"
	"github.com/unisima/ocr-extractor/internal/api"
	"github.com/unisima/ocr-extractor/internal/mimeset"
	"github.com/unisima/ocr-extractor/internal/models"
	"github.com/unisima/ocr-extractor/internal/theme"
)

// DefaultFilename is used when the backend returns a path without a final segment
const DefaultFilename = "texto_extraido.txt"

// Engine selects which recognition endpoint an action uses
type Engine string

const (
	Local Engine = "local"
	Cloud Engine = "cloud"
)

// Controller holds the selected image, the accumulated text and the messages of one session.
// Network calls run without holding the state lock.
type Controller struct {
	recognizer api.Recognizer
	saver      api.Saver
	theme      *theme.Theme

	mu               sync.Mutex
	image            *models.Image
	previewToken     string
	text             string
	mimes            *mimeset.Set
	busy             bool
	status           Status
	showInstructions bool
	download         *models.Download
	lastActive       time.Time
}

// New creates a controller backed by the given client
func New(recognizer api.Recognizer, saver api.Saver) *Controller {
	return &Controller{
		recognizer: recognizer,
		saver:      saver,
		theme:      theme.New(),
		mimes:      mimeset.New(),
		lastActive: time.Now(),
	}
}

// ChooseImage replaces the selected image and its preview. A nil or empty image is ignored.
func (c *Controller) ChooseImage(img *models.Image) {
	if img.Empty() {
		return
	}
	if img.PickedAt.IsZero() {
		img.PickedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.previewToken != "" {
		slog.Debug("Preview revoked", "token", c.previewToken)
	}
	c.image = img
	c.previewToken = uuid.NewString()
	c.status = ""
	slog.Info("Image selected", "name", img.Name, "mime", img.MIMEType, "size", len(img.Data))
}

// Preview returns the image behind a live preview token
func (c *Controller) Preview(token string) (*models.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" || token != c.previewToken || c.image == nil {
		return nil, false
	}
	return c.image, true
}

// RunLocalRecognition recognizes the selected image with the print-text engines
func (c *Controller) RunLocalRecognition(ctx context.Context) error {
	return c.Recognize(ctx, Local)
}

// RunCloudRecognition recognizes the selected image with the handwriting provider
func (c *Controller) RunCloudRecognition(ctx context.Context) error {
	return c.Recognize(ctx, Cloud)
}

// Recognize sends the selected image to engine and merges the result into the accumulated text.
// The returned error is already reflected in the status message.
func (c *Controller) Recognize(ctx context.Context, engine Engine) error {
	extract, empty, ok, failed := c.recognizer.ExtractText, MsgNoText, MsgLocalOK, MsgLocalFailed
	if engine == Cloud {
		extract, empty, ok, failed = c.recognizer.ExtractTextCloud, MsgNoHandwriting, MsgCloudOK, MsgCloudFailed
	}

	c.mu.Lock()
	c.touch()
	if c.image == nil {
		c.status = MsgSelectImage
		c.mu.Unlock()
		return ErrNoImage
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	img := c.image
	c.mu.Unlock()

	result, err := extract(ctx, img)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		slog.Error("Recognition failed", "engine", engine, "image", img.Name, "err", err)
		c.status = failed
		return fmt.Errorf("failed to recognize %s: %w", img.Name, err)
	}

	recognized := ""
	if result != nil {
		recognized = strings.TrimSpace(result.Text)
	}
	if recognized == "" {
		c.status = empty
		return ErrNoText
	}

	c.text = accumulator.Merge(c.text, img.Name, recognized)
	c.mimes.Add(img.MIMEType)
	c.status = ok
	return nil
}

// SetText replaces the accumulated text with a user edit
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.text = text
}

// SaveAll stores the accumulated text on the backend and returns the file to download.
func (c *Controller) SaveAll(ctx context.Context) (*models.Download, error) {
	c.mu.Lock()
	c.touch()
	text := c.text
	mimes := c.mimes.Join(",")
	if strings.TrimSpace(text) == "" {
		c.status = MsgNothingToSave
		c.mu.Unlock()
		return nil, ErrNothingToSave
	}
	c.mu.Unlock()

	result, err := c.saver.SaveText(ctx, text, mimes)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		slog.Error("Save failed", "err", err)
		c.status = MsgSaveFailed
		return nil, fmt.Errorf("failed to save text: %w", err)
	}
	if result == nil || !result.Saved || result.TxtPath == "" {
		c.status = MsgNoDownload
		return nil, ErrNoDownload
	}

	filename := FilenameFromPath(result.TxtPath)
	c.download = &models.Download{
		Filename: filename,
		URL:      c.saver.DownloadURL(filename),
	}
	c.status = MsgDownloaded
	slog.Info("Saved text ready for download", "filename", filename)
	return c.download, nil
}

// TakeDownload returns the download produced by the last save and forgets it
func (c *Controller) TakeDownload() *models.Download {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.download
	c.download = nil
	return d
}

// FilenameFromPath returns the final segment of a server side path
func FilenameFromPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasSuffix(p, "/") {
		return DefaultFilename
	}
	name := path.Base(p)
	if name == "." || name == ".." || name == "/" || name == "" {
		return DefaultFilename
	}
	return name
}

// ToggleTheme flips between dark and light
func (c *Controller) ToggleTheme() theme.Mode {
	c.mu.Lock()
	c.touch()
	c.mu.Unlock()
	return c.theme.Toggle()
}

// ToggleInstructions shows or hides the help panel
func (c *Controller) ToggleInstructions() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.showInstructions = !c.showInstructions
	return c.showInstructions
}

// LastActive returns when the session last handled an action
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Close revokes the preview
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.previewToken = ""
	c.image = nil
}

func (c *Controller) touch() {
	c.lastActive = time.Now()
}
