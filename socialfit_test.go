package socialfit

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/socialfit/pkg/filter"
	"github.com/menta2k/socialfit/pkg/frame"
	"github.com/menta2k/socialfit/pkg/types"
)

// createTestImage creates a simple test image with a bright subject in the centre
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}
	return img
}

// writeTestImage saves a test image to dir and returns its path
func writeTestImage(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(createTestImage(width, height), path); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func TestNew(t *testing.T) {
	studio := New()
	if studio == nil {
		t.Fatal("New() returned nil")
	}
	if studio.loader == nil || studio.fitter == nil {
		t.Error("Expected loader and fitter to be initialized")
	}
	if studio.Frames().Len() != 4 {
		t.Errorf("Expected 4 default platforms, got %d", studio.Frames().Len())
	}
}

func TestNewWithOptions(t *testing.T) {
	frames, err := frame.NewTable(frame.Frame{Platform: "Story", Width: 1080, Height: 1920})
	if err != nil {
		t.Fatal(err)
	}

	studio, err := NewWithOptions(Options{Frames: frames})
	if err != nil {
		t.Fatalf("NewWithOptions failed: %v", err)
	}
	defer studio.Close()

	result, err := studio.FitImage(createTestImage(400, 300), "story")
	if err != nil {
		t.Fatalf("FitImage failed: %v", err)
	}
	if b := result.Image.Bounds(); b.Dx() != 1080 || b.Dy() != 1920 {
		t.Errorf("Expected 1080x1920, got %dx%d", b.Dx(), b.Dy())
	}
	if studio.encode.Quality != 90 {
		t.Errorf("Expected default quality, got %d", studio.encode.Quality)
	}
}

func TestFitLocalScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "wide.png", 4000, 2000)

	result, err := New().Fit(context.Background(), path, "Instagram")
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if b := result.Image.Bounds(); b.Dx() != 1080 || b.Dy() != 1080 {
		t.Errorf("Expected 1080x1080, got %dx%d", b.Dx(), b.Dy())
	}
	p := result.Placement
	if p.Width != 1080 || p.Height != 540 || p.OffsetY != 270 {
		t.Errorf("Expected 1080x540 content padded 270px, got %+v", p)
	}
}

func TestFitRemoteScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "tall.png", 600, 800)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	}))
	defer srv.Close()

	result, err := New().Fit(context.Background(), srv.URL+"/tall.png", "Youtube")
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	p := result.Placement
	if p.Width != 540 || p.Height != 720 || p.OffsetX != 370 {
		t.Errorf("Expected 540x720 content padded 370px, got %+v", p)
	}
}

func TestFitInvalidPlatformSkipsDownload(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	_, err := New().Fit(context.Background(), srv.URL+"/a.png", "Tiktok")
	if !types.IsKind(err, types.InvalidPlatform) {
		t.Fatalf("Expected InvalidPlatform, got %v", err)
	}
	for _, name := range []string{"Youtube", "Instagram", "Twitter", "Facebook"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Expected %s in error: %v", name, err)
		}
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("Expected no download for an invalid platform")
	}
}

func TestProcessUnreachableWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	out := t.TempDir()
	_, err := New().Process(context.Background(), Job{
		Source:    addr + "/photo.jpg",
		Platform:  "Twitter",
		Contrast:  true,
		OutputDir: out,
	})
	if !types.IsKind(err, types.SourceFetch) {
		t.Fatalf("Expected SourceFetch error, got %v", err)
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("Expected no output files, found %d", len(entries))
	}
}

func TestProcessAllEffects(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "results")
	path := writeTestImage(t, in, "photo.png", 300, 200)

	report, err := New().Process(context.Background(), Job{
		Source:     path,
		Platform:   "Facebook",
		WithFilter: true,
		Filter:     filter.EdgeEnhance,
		Grid:       true,
		Contrast:   true,
		Sketch:     true,
		OutputDir:  out,
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	var names []string
	for _, f := range report.Files {
		names = append(names, filepath.Base(f))
		if _, err := os.Stat(f); err != nil {
			t.Errorf("Reported file %s missing: %v", f, err)
		}
	}
	sort.Strings(names)

	want := []string{
		"EDGE_ENHANCE_result.jpg",
		"Facebook_fitted.jpg",
		"contrast_comparison.jpg",
		"equalized.jpg",
		"filters_comparison.jpg",
		"grayscale.jpg",
		"sketch_comparison.jpg",
		"sobel_edges.jpg",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Expected files %v, got %v", want, names)
	}

	fitted, err := imaging.Open(filepath.Join(out, "Facebook_fitted.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	if b := fitted.Bounds(); b.Dx() != 1200 || b.Dy() != 630 {
		t.Errorf("Expected 1200x630, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestFilterGrid(t *testing.T) {
	sheet, err := New().FilterGrid(createTestImage(160, 120), filter.Sharpen)
	if err != nil {
		t.Fatalf("FilterGrid failed: %v", err)
	}
	// 10 filters on 4 columns make 3 rows.
	if b := sheet.Bounds(); b.Dx() != 4*320+5*6 {
		t.Errorf("Unexpected sheet width %d", b.Dx())
	}
}

func TestSaveImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	studio := New()

	if err := studio.SaveImage(createTestImage(20, 10), path); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	info := studio.GetImageInfo(img)
	if info.Width != 20 || info.Height != 10 {
		t.Errorf("Unexpected info %+v", info)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected %s, got %s", Version, GetVersion())
	}
}
