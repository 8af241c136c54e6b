package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/unisima/ocr-extractor/internal/accumulator"
	"github.com/unisima/ocr-extractor/internal/api"
	"github.com/unisima/ocr-extractor/internal/controller"
	"github.com/unisima/ocr-extractor/internal/ui"
)

type testEnv struct {
	server    *httptest.Server
	client    *http.Client
	saveCalls int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{}

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ocr/":
			_, _ = w.Write([]byte(`{"text":"hello"}`))
		case "/api/ocr/cloud/":
			http.Error(w, "provider down", http.StatusInternalServerError)
		case "/api/save/":
			env.saveCalls++
			_, _ = w.Write([]byte(`{"saved":true,"txt_path":"/data/exports/out_1.txt"}`))
		case "/api/download/out_1.txt":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("contenido guardado"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(backend.Close)

	renderer, err := ui.NewRenderer()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	h := New(api.NewClient(backend.URL, 0), renderer)
	env.server = httptest.NewServer(h.Routes())
	t.Cleanup(env.server.Close)

	jar, _ := cookiejar.New(nil)
	env.client = &http.Client{Jar: jar}
	return env
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (e *testEnv) postForm(t *testing.T, path string, values url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, values)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	resp.Body.Close()
	return resp
}

// postPage follows the redirect and returns the page it lands on
func (e *testEnv) postPage(t *testing.T, path string, values url.Values) string {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, values)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func (e *testEnv) upload(t *testing.T, name, mimeType string, data []byte) *http.Response {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(data)
	_ = w.WriteField("text", "")
	_ = w.Close()

	resp, err := e.client.Post(e.server.URL+"/image", w.FormDataContentType(), body)
	if err != nil {
		t.Fatalf("POST /image: %v", err)
	}
	resp.Body.Close()
	return resp
}

func (e *testEnv) state(t *testing.T) controller.Snapshot {
	t.Helper()
	_, body := e.get(t, "/api/state")
	var s controller.Snapshot
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("Invalid state JSON %q: %v", body, err)
	}
	return s
}

func TestIndexRendersAndSetsSession(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "No hay imagen seleccionada") {
		t.Error("Expected empty preview state")
	}

	u, _ := url.Parse(env.server.URL)
	if len(env.client.Jar.Cookies(u)) != 1 {
		t.Error("Expected a session cookie")
	}

	if resp, _ := env.get(t, "/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", resp.StatusCode)
	}
}

func TestExtractWithoutImage(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/")

	resp := env.postForm(t, "/extract/local", url.Values{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected redirect to index, got %d", resp.StatusCode)
	}
	if s := env.state(t); s.Status != controller.MsgSelectImage {
		t.Errorf("Unexpected status %q", s.Status)
	}
}

func TestUploadExtractSaveDownload(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/")

	env.upload(t, "a.png", "image/png", []byte("not really a png"))
	s := env.state(t)
	if !s.HasImage || s.ImageName != "a.png" {
		t.Fatalf("Expected image to be selected, got %+v", s)
	}

	resp, body := env.get(t, s.PreviewURL)
	if resp.StatusCode != http.StatusOK || body != "not really a png" {
		t.Errorf("Unexpected preview %d %q", resp.StatusCode, body)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected nosniff on preview, got %q", got)
	}
	if got := resp.Header.Get("Content-Security-Policy"); !strings.Contains(got, "default-src 'none'") {
		t.Errorf("Expected restrictive CSP on preview, got %q", got)
	}

	env.postForm(t, "/extract/local", url.Values{"text": {""}})
	env.postForm(t, "/extract/local", url.Values{"text": {env.state(t).Text}})
	s = env.state(t)
	if s.Text != accumulator.Label("a.png")+"hello\nhello" {
		t.Errorf("Unexpected text %q", s.Text)
	}
	if s.Status != controller.MsgLocalOK {
		t.Errorf("Unexpected status %q", s.Status)
	}

	env.postForm(t, "/extract/cloud", url.Values{"text": {s.Text}})
	failed := env.state(t)
	if failed.Text != s.Text || failed.Busy || failed.Status != controller.MsgCloudFailed {
		t.Errorf("Expected failed cloud call to keep state, got %+v", failed)
	}

	page := env.postPage(t, "/save", url.Values{"text": {s.Text}})
	if env.saveCalls != 1 {
		t.Fatalf("Expected one save call, got %d", env.saveCalls)
	}
	if !strings.Contains(page, `src="/download/out_1.txt"`) {
		t.Error("Expected the page after saving to trigger the download")
	}
	_, page = env.get(t, "/")
	if strings.Contains(page, "/download/out_1.txt") {
		t.Error("Expected the download to be triggered once")
	}

	resp, body = env.get(t, "/download/out_1.txt")
	if resp.StatusCode != http.StatusOK || body != "contenido guardado" {
		t.Errorf("Unexpected download %d %q", resp.StatusCode, body)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="out_1.txt"` {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}
}

func TestSaveBlankTextMakesNoCall(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/")

	env.postForm(t, "/save", url.Values{"text": {"  "}})
	if env.saveCalls != 0 {
		t.Errorf("Expected no save call, got %d", env.saveCalls)
	}
	if s := env.state(t); s.Status != controller.MsgNothingToSave {
		t.Errorf("Unexpected status %q", s.Status)
	}
}

func TestTextEditNormalizesNewlines(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/")

	env.postForm(t, "/text", url.Values{"text": {"line one\r\nline two"}})
	if s := env.state(t); s.Text != "line one\nline two" {
		t.Errorf("Unexpected text %q", s.Text)
	}
}

func TestToggles(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/")

	env.postForm(t, "/theme", url.Values{})
	env.postForm(t, "/instructions", url.Values{})
	s := env.state(t)
	if s.Theme != "light" || !s.ShowInstructions {
		t.Errorf("Unexpected toggles theme=%s instructions=%v", s.Theme, s.ShowInstructions)
	}

	_, page := env.get(t, "/")
	if !strings.Contains(page, "instructions-panel") || !strings.Contains(page, "#f7f8fc") {
		t.Error("Expected light page with instructions")
	}
}

func TestRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t)
	env.get(t, "/")

	if resp, _ := env.get(t, "/save"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /save, got %d", resp.StatusCode)
	}
	if resp, _ := env.get(t, "/preview/unknown"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown preview, got %d", resp.StatusCode)
	}
	if resp := env.postForm(t, "/extract/other", url.Values{}); resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown engine, got %d", resp.StatusCode)
	}
	if resp, _ := env.get(t, "/download/a%5Cb.txt"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for separator in filename, got %d", resp.StatusCode)
	}

	resp := env.upload(t, "notes.txt", "text/plain", []byte("hello"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for non-image upload, got %d", resp.StatusCode)
	}
}

func TestReadImageDetectsType(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n0000")
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, _ := w.CreateFormFile("file", "scan")
	_, _ = part.Write(pngHeader)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/image", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("file")
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	img, err := readImage(file, header)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if img.MIMEType != "image/png" || img.Name != "scan" {
		t.Errorf("Unexpected image %+v", img)
	}
}

func TestReadImageSizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"exactly the limit", maxUpload, false},
		{"one byte over", maxUpload + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, tt.size)
			copy(data, "\x89PNG\r\n\x1a\n")

			body := &bytes.Buffer{}
			w := multipart.NewWriter(body)
			part, _ := w.CreateFormFile("file", "big.png")
			_, _ = part.Write(data)
			_ = w.Close()

			req := httptest.NewRequest(http.MethodPost, "/image", body)
			req.Header.Set("Content-Type", w.FormDataContentType())
			file, header, err := req.FormFile("file")
			if err != nil {
				t.Fatal(err)
			}
			defer file.Close()

			img, err := readImage(file, header)
			if tt.wantErr && err == nil {
				t.Error("Expected size error")
			}
			if !tt.wantErr && (err != nil || len(img.Data) != tt.size) {
				t.Errorf("Expected %d bytes to be accepted, got err=%v", tt.size, err)
			}
		})
	}
}
