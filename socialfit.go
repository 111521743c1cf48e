// Package socialfit prepares a single image for a social-media platform.
//
// The central operation fits an image into the platform's fixed frame without
// distortion: the source is scaled to fit, centered, and the remaining area is
// padded with a solid background. Around that sit a set of convolution
// filters, histogram-equalized contrast and a Sobel edge "sketch", plus
// labelled comparison sheets for reviewing the results.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/menta2k/socialfit"
//	)
//
//	func main() {
//		studio := socialfit.New()
//		defer studio.Close()
//
//		result, err := studio.Fit(context.Background(), "https://example.com/photo.jpg", "Instagram")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := studio.SaveImage(result.Image, "photo_instagram.jpg"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// Components:
//
//  1. Frame (pkg/frame): the immutable platform frame table
//  2. Source (pkg/source): URL download or local file load, then decode
//  3. Canvas (pkg/canvas): resize-and-letterbox
//  4. Filter, Contrast, Sketch (pkg/filter, pkg/contrast, pkg/sketch)
//  5. Compare (pkg/compare): comparison sheets
//  6. Output (pkg/output): encoding to JPEG, PNG or WebP
//
// Failures from loading and fitting carry a types.Kind: InvalidPlatform,
// SourceFetch, SourceLoad or DegenerateImage.
package socialfit

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/menta2k/socialfit/pkg/canvas"
	"github.com/menta2k/socialfit/pkg/compare"
	"github.com/menta2k/socialfit/pkg/contrast"
	"github.com/menta2k/socialfit/pkg/filter"
	"github.com/menta2k/socialfit/pkg/frame"
	"github.com/menta2k/socialfit/pkg/output"
	"github.com/menta2k/socialfit/pkg/sketch"
	"github.com/menta2k/socialfit/pkg/source"
	"github.com/menta2k/socialfit/pkg/types"
)

// Version of the socialfit library
const Version = "1.0.0"

// Studio provides a high-level interface over loading, fitting and effects
type Studio struct {
	loader *source.Loader
	fitter *canvas.Fitter
	encode types.EncodeOptions
	logger *zap.Logger
}

// Options configures a Studio. Zero values select defaults.
type Options struct {
	Frames frame.Table
	Source source.Config
	Canvas canvas.Config
	Encode types.EncodeOptions
	Logger *zap.Logger
}

// New creates a Studio with the default frame table and configuration
func New() *Studio {
	return &Studio{
		loader: source.New(),
		fitter: canvas.New(frame.Default()),
		encode: output.DefaultOptions(),
		logger: zap.NewNop(),
	}
}

// NewWithOptions creates a Studio with custom configuration
func NewWithOptions(opts Options) (*Studio, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	frames := opts.Frames
	if frames.Len() == 0 {
		frames = frame.Default()
	}

	loader, err := source.NewWithConfig(opts.Source, logger.Named("source"))
	if err != nil {
		return nil, err
	}

	encode := opts.Encode
	if encode.Quality == 0 {
		encode.Quality = output.DefaultQuality
	}

	return &Studio{
		loader: loader,
		fitter: canvas.NewWithConfig(frames, opts.Canvas),
		encode: encode,
		logger: logger,
	}, nil
}

// Close releases resources held by the loader
func (s *Studio) Close() {
	s.loader.Close()
}

// Frames returns the platform frame table in use
func (s *Studio) Frames() frame.Table {
	return s.fitter.Frames()
}

// LoadImage loads an image from a URL or a local path
func (s *Studio) LoadImage(ctx context.Context, src string) (image.Image, error) {
	return s.loader.Load(ctx, src)
}

// Fit loads src and fits it to platform's frame. The platform is checked
// before any I/O, so an unknown platform never triggers a download.
func (s *Studio) Fit(ctx context.Context, src, platform string) (canvas.Result, error) {
	fr, err := s.fitter.Frames().Lookup(platform)
	if err != nil {
		return canvas.Result{}, err
	}

	img, err := s.loader.Load(ctx, src)
	if err != nil {
		return canvas.Result{}, err
	}

	result, err := s.fitter.FitToFrame(img, fr)
	if err != nil {
		return canvas.Result{}, err
	}

	s.logger.Debug("fitted image",
		zap.String("source", src),
		zap.String("platform", fr.Platform),
		zap.Int("source_width", result.Source.Width),
		zap.Int("source_height", result.Source.Height),
		zap.Int("content_width", result.Placement.Width),
		zap.Int("content_height", result.Placement.Height))

	return result, nil
}

// FitImage fits an already decoded image to platform's frame
func (s *Studio) FitImage(img image.Image, platform string) (canvas.Result, error) {
	return s.fitter.Fit(img, platform)
}

// ApplyFilter applies one of the fixed filters
func (s *Studio) ApplyFilter(img image.Image, f filter.Filter) (*image.NRGBA, error) {
	return filter.Apply(img, f)
}

// FilterGrid renders every filter applied to img on one sheet, with the
// chosen filter's caption highlighted.
func (s *Studio) FilterGrid(img image.Image, chosen filter.Filter) (*image.NRGBA, error) {
	all := filter.All()
	panels := make([]compare.Panel, 0, len(all))
	for _, f := range all {
		out, err := filter.Apply(img, f)
		if err != nil {
			return nil, fmt.Errorf("filter %v failed: %w", f, err)
		}
		panels = append(panels, compare.Panel{Title: f.String(), Image: out, Highlight: f == chosen})
	}
	return compare.Sheet(panels, compare.Layout{Columns: 4, CellWidth: 320, CellHeight: 240, Margin: 6})
}

// Equalize returns the grayscale version of img and its histogram-equalized
// counterpart
func (s *Studio) Equalize(img image.Image) contrast.Result {
	return contrast.Equalize(img)
}

// Sketch returns the binarized Sobel edges of img
func (s *Studio) Sketch(img image.Image) *image.Gray {
	return sketch.Sketch(img)
}

// GetImageInfo returns basic information about an image
func (s *Studio) GetImageInfo(img image.Image) types.ImageInfo {
	return types.InfoOf(img)
}

// SaveImage writes img to path using the studio's encode options. The
// format follows the path's extension.
func (s *Studio) SaveImage(img image.Image, path string) error {
	opts := s.encode
	opts.Format = output.FormatFromPath(path)
	return output.Save(img, path, opts)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
