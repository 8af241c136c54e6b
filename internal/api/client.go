package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/unisima/ocr-extractor/internal/models"
)

// Backend paths, relative to the configured base URL.
const (
	ocrPath      = "/api/ocr/"
	ocrCloudPath = "/api/ocr/cloud/"
	savePath     = "/api/save/"
	downloadPath = "/api/download/"
)

// Recognizer turns an image into text through a remote engine
type Recognizer interface {
	ExtractText(ctx context.Context, img *models.Image) (*models.RecognitionResult, error)
	ExtractTextCloud(ctx context.Context, img *models.Image) (*models.RecognitionResult, error)
}

// Saver persists accumulated text on the backend
type Saver interface {
	SaveText(ctx context.Context, text, mimeTypes string) (*models.SaveResult, error)
	DownloadURL(filename string) string
}

// Downloader fetches files the backend saved
type Downloader interface {
	Download(ctx context.Context, filename string) (io.ReadCloser, string, error)
}

// Client talks to the OCR backend
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// NewClient creates a client for baseURL. A zero timeout keeps the transport defaults.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ExtractText sends the image to the print-text engines
func (c *Client) ExtractText(ctx context.Context, img *models.Image) (*models.RecognitionResult, error) {
	return c.recognize(ctx, ocrPath, img)
}

// ExtractTextCloud sends the image to the handwriting provider
func (c *Client) ExtractTextCloud(ctx context.Context, img *models.Image) (*models.RecognitionResult, error) {
	return c.recognize(ctx, ocrCloudPath, img)
}

func (c *Client) recognize(ctx context.Context, path string, img *models.Image) (*models.RecognitionResult, error) {
	if img.Empty() {
		return nil, fmt.Errorf("no image data to send")
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(img.Name)))
	contentType := img.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var result models.RecognitionResult
	if err := c.post(ctx, path, w.FormDataContentType(), body, &result); err != nil {
		return nil, err
	}

	slog.Info("Recognition finished", "path", path, "image", img.Name, "length", len(result.Text))
	return &result, nil
}

// SaveText stores the accumulated text together with the comma joined MIME types
func (c *Client) SaveText(ctx context.Context, text, mimeTypes string) (*models.SaveResult, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if err := w.WriteField("text", text); err != nil {
		return nil, fmt.Errorf("failed to write text field: %w", err)
	}
	if err := w.WriteField("image_mime", mimeTypes); err != nil {
		return nil, fmt.Errorf("failed to write image_mime field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var result models.SaveResult
	if err := c.post(ctx, savePath, w.FormDataContentType(), body, &result); err != nil {
		return nil, err
	}

	slog.Info("Text saved", "saved", result.Saved, "txt_path", result.TxtPath)
	return &result, nil
}

// DownloadURL returns where the backend serves a saved file
func (c *Client) DownloadURL(filename string) string {
	return c.BaseURL + downloadPath + url.PathEscape(filename)
}

// Download fetches a saved file. The caller closes the returned body.
func (c *Client) Download(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(filename), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download %s: %w", filename, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", &StatusError{Code: resp.StatusCode, Body: string(b)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	return resp.Body, contentType, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
