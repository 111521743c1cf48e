// Package output encodes result images to disk
package output

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/socialfit/pkg/types"
)

// DefaultQuality is used for lossy formats when no quality is given
const DefaultQuality = 90

// DefaultOptions returns JPEG at DefaultQuality
func DefaultOptions() types.EncodeOptions {
	return types.EncodeOptions{Format: "jpg", Quality: DefaultQuality}
}

// FormatFromPath returns the lower-case extension of path without the dot,
// or "jpg" when there is none.
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}

// Supported reports whether format can be written
func Supported(format string) bool {
	switch strings.ToLower(format) {
	case "jpg", "jpeg", "png", "webp", "gif", "bmp", "tif", "tiff":
		return true
	}
	return false
}

// Encode writes img to w in the requested format
func Encode(w io.Writer, img image.Image, opts types.EncodeOptions) error {
	quality := opts.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	switch strings.ToLower(opts.Format) {
	case "", "jpg", "jpeg":
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case "png":
		return imaging.Encode(w, img, imaging.PNG)
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: opts.Lossless, Quality: float32(quality)})
	case "gif":
		return imaging.Encode(w, img, imaging.GIF)
	case "bmp":
		return imaging.Encode(w, img, imaging.BMP)
	case "tif", "tiff":
		return imaging.Encode(w, img, imaging.TIFF)
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

// Save encodes img to path. The data goes to a temporary file in the same
// directory that is renamed into place, so a failed save leaves nothing
// behind. An empty opts.Format is taken from the path's extension.
func Save(img image.Image, path string, opts types.EncodeOptions) error {
	if opts.Format == "" {
		opts.Format = FormatFromPath(path)
	}
	if !Supported(opts.Format) {
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, img, opts); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
