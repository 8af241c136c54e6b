package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/unisima/ocr-extractor/internal/models"
)

// MaxImageSize caps how much of a remote or local image is read
const MaxImageSize = 10 << 20

// Fetcher loads images from local files or http(s) URLs
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsURL reports whether source should be fetched over HTTP
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load reads source as a URL or a file path
func (f *Fetcher) Load(ctx context.Context, source string) (*models.Image, error) {
	if IsURL(source) {
		return f.FetchURL(ctx, source)
	}
	return LoadFile(source)
}

// LoadFile reads an image from disk
func LoadFile(p string) (*models.Image, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := readLimited(file)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(p)
	return newImage(name, mime.TypeByExtension(filepath.Ext(name)), data)
}

// FetchURL downloads an image. The name is the last path segment of the URL.
func (f *Fetcher) FetchURL(ctx context.Context, rawURL string) (*models.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	name := path.Base(req.URL.Path)
	if name == "/" || name == "." {
		name = req.URL.Host
	}

	mimeType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = mime.TypeByExtension(path.Ext(name))
	}

	slog.Debug("Fetched image", "url", rawURL, "bytes", len(data), "mime", mimeType)
	return newImage(name, mimeType, data)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("image larger than %d bytes", MaxImageSize)
	}
	return data, nil
}

func newImage(name, mimeType string, data []byte) (*models.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", name)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &models.Image{
		Name:     name,
		MIMEType: mimeType,
		Data:     data,
		PickedAt: time.Now(),
	}, nil
}
