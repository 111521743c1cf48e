package source

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/menta2k/socialfit/pkg/types"
)

// createTestPNG encodes a small gradient image as PNG
func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func imageServer(t *testing.T, body []byte, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		switch r.URL.Path {
		case "/image.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(body)
		case "/garbage":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("definitely not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIsRemote(t *testing.T) {
	cases := map[string]bool{
		"http://example.com/a.jpg":  true,
		"HTTPS://example.com/a.jpg": true,
		"photo.jpg":                 false,
		"/tmp/photo.jpg":            false,
		"ftp://example.com/a.jpg":   false,
		"http:photo.jpg":            false,
	}
	for src, want := range cases {
		if got := IsRemote(src); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestLoadURL(t *testing.T) {
	srv := imageServer(t, createTestPNG(t, 40, 20), nil)
	loader := New()

	img, err := loader.Load(context.Background(), srv.URL+"/image.png")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Errorf("Expected 40x20, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestLoadURLNotFound(t *testing.T) {
	srv := imageServer(t, nil, nil)
	loader := New()

	_, err := loader.Load(context.Background(), srv.URL+"/missing.png")
	if !types.IsKind(err, types.SourceFetch) {
		t.Fatalf("Expected SourceFetch error, got %v", err)
	}
}

func TestLoadURLUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	loader, err := NewWithConfig(Config{Timeout: 2 * time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}

	_, err = loader.Load(context.Background(), addr+"/image.png")
	if !types.IsKind(err, types.SourceFetch) {
		t.Fatalf("Expected SourceFetch error, got %v", err)
	}
}

func TestLoadURLUndecodable(t *testing.T) {
	srv := imageServer(t, nil, nil)
	loader := New()

	_, err := loader.Load(context.Background(), srv.URL+"/garbage")
	if !types.IsKind(err, types.SourceLoad) {
		t.Fatalf("Expected SourceLoad error, got %v", err)
	}
}

func TestFetchSizeLimit(t *testing.T) {
	body := createTestPNG(t, 64, 64)
	srv := imageServer(t, body, nil)

	loader, err := NewWithConfig(Config{MaxBytes: int64(len(body) - 1)}, nil)
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}

	_, err = loader.Fetch(context.Background(), srv.URL+"/image.png")
	if !types.IsKind(err, types.SourceFetch) {
		t.Fatalf("Expected SourceFetch error for oversized body, got %v", err)
	}
}

func TestFetchAllowedHosts(t *testing.T) {
	srv := imageServer(t, createTestPNG(t, 8, 8), nil)

	denied, err := NewWithConfig(Config{AllowedHosts: []string{"*.example.com"}}, nil)
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	if _, err := denied.Fetch(context.Background(), srv.URL+"/image.png"); !types.IsKind(err, types.SourceFetch) {
		t.Errorf("Expected host to be rejected, got %v", err)
	}

	allowed, err := NewWithConfig(Config{AllowedHosts: []string{"127.0.0.*"}}, nil)
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	if _, err := allowed.Fetch(context.Background(), srv.URL+"/image.png"); err != nil {
		t.Errorf("Expected wildcard host to be allowed, got %v", err)
	}
}

func TestFetchRejectsScheme(t *testing.T) {
	_, err := New().Fetch(context.Background(), "ftp://example.com/a.png")
	if !types.IsKind(err, types.SourceFetch) {
		t.Errorf("Expected SourceFetch error, got %v", err)
	}
}

func TestFetchCache(t *testing.T) {
	var hits int32
	srv := imageServer(t, createTestPNG(t, 8, 8), &hits)

	loader, err := NewWithConfig(Config{CacheMaxCost: 1 << 20, CacheTTL: time.Minute}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWithConfig failed: %v", err)
	}
	defer loader.Close()

	for i := 0; i < 3; i++ {
		if _, err := loader.LoadURL(context.Background(), srv.URL+"/image.png"); err != nil {
			t.Fatalf("LoadURL failed: %v", err)
		}
	}

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("Expected a single download, got %d", n)
	}
}

func TestFetchContextCancelled(t *testing.T) {
	srv := imageServer(t, createTestPNG(t, 8, 8), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Fetch(ctx, srv.URL+"/image.png")
	if !types.IsKind(err, types.SourceFetch) {
		t.Errorf("Expected SourceFetch error, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, createTestPNG(t, 30, 10), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := New().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 10 {
		t.Errorf("Expected 30x10, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := New().LoadFile(filepath.Join(dir, "missing.jpg"))
	if !types.IsKind(err, types.SourceLoad) {
		t.Errorf("Expected SourceLoad for missing file, got %v", err)
	}

	bad := filepath.Join(dir, "bad.jpg")
	if err := os.WriteFile(bad, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = New().LoadFile(bad)
	if !types.IsKind(err, types.SourceLoad) {
		t.Errorf("Expected SourceLoad for undecodable file, got %v", err)
	}

	_, err = New().LoadFile(dir)
	if !types.IsKind(err, types.SourceLoad) {
		t.Errorf("Expected SourceLoad for directory, got %v", err)
	}
}
