package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unisima/ocr-extractor/internal/accumulator"
	"github.com/unisima/ocr-extractor/internal/api"
	"github.com/unisima/ocr-extractor/internal/controller"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExtract(t *testing.T) {
	var savedMime string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ocr/":
			_, header, _ := r.FormFile("file")
			_, _ = w.Write([]byte(`{"text":"text of ` + header.Filename + `"}`))
		case "/api/save/":
			savedMime = r.FormValue("image_mime")
			_, _ = w.Write([]byte(`{"saved":true,"txt_path":"/data/exports/out_7.txt"}`))
		case "/api/download/out_7.txt":
			_, _ = w.Write([]byte("saved"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer backend.Close()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.png", "png bytes")
	b := writeFile(t, dir, "b.jpg", "jpg bytes")
	outDir := filepath.Join(dir, "exports")

	var out bytes.Buffer
	err := runExtract(context.Background(), api.NewClient(backend.URL, 0), &out, []string{a, b, a}, controller.Local, true, outDir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := accumulator.Label("a.png") + "text of a.png" +
		accumulator.Label("b.jpg") + "text of b.jpg" + "\ntext of a.png\n"
	if out.String() != expected {
		t.Errorf("Expected:\n%q\nGot:\n%q", expected, out.String())
	}
	if savedMime != "image/jpeg,image/png" {
		t.Errorf("Unexpected saved MIME list %q", savedMime)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "out_7.txt"))
	if err != nil || string(data) != "saved" {
		t.Errorf("Expected downloaded file, got %q (%v)", data, err)
	}
}

func TestRunExtractReportsFailures(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer backend.Close()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.png", "png bytes")

	var out bytes.Buffer
	err := runExtract(context.Background(), api.NewClient(backend.URL, 0), &out, []string{a, filepath.Join(dir, "missing.png")}, controller.Cloud, false, dir)
	if err == nil || !strings.Contains(err.Error(), "2 of 2 images failed") {
		t.Errorf("Expected both images to fail, got %v", err)
	}
	if strings.TrimSpace(out.String()) != "" {
		t.Errorf("Expected no text, got %q", out.String())
	}
}

func TestRunExtractSaveWithoutText(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"  "}`))
	}))
	defer backend.Close()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.png", "png bytes")

	var out bytes.Buffer
	err := runExtract(context.Background(), api.NewClient(backend.URL, 0), &out, []string{a}, controller.Local, true, dir)
	if err == nil || !strings.Contains(err.Error(), string(controller.MsgNothingToSave)) {
		t.Errorf("Expected nothing-to-save error, got %v", err)
	}
}
