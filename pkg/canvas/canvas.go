// Package canvas fits an image into a fixed platform frame without
// distortion: the source is scaled to fit, centered, and the leftover area is
// filled with a solid background (letterboxing).
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/menta2k/socialfit/pkg/frame"
	"github.com/menta2k/socialfit/pkg/types"
)

// Fitter scales images onto platform frames
type Fitter struct {
	frames frame.Table
	config Config
}

// Config holds configuration for canvas fitting
type Config struct {
	Background color.Color
	Filter     imaging.ResampleFilter
}

// DefaultConfig returns a white background with Lanczos resampling
func DefaultConfig() Config {
	return Config{
		Background: color.White,
		Filter:     imaging.Lanczos,
	}
}

// New creates a Fitter over the given frame table with default configuration
func New(frames frame.Table) *Fitter {
	return NewWithConfig(frames, DefaultConfig())
}

// NewWithConfig creates a Fitter with custom configuration. Unset fields fall
// back to the defaults.
func NewWithConfig(frames frame.Table, config Config) *Fitter {
	def := DefaultConfig()
	if config.Background == nil {
		config.Background = def.Background
	}
	if config.Filter.Kernel == nil {
		config.Filter = def.Filter
	}
	return &Fitter{frames: frames, config: config}
}

// Frames returns the frame table the fitter resolves platforms against
func (f *Fitter) Frames() frame.Table {
	return f.frames
}

// Result contains the outcome of a fit
type Result struct {
	Image     *image.NRGBA
	Frame     frame.Frame
	Placement types.Placement
	Source    types.ImageInfo
}

// Fit resolves platform in the frame table and fits img onto that frame
func (f *Fitter) Fit(img image.Image, platform string) (Result, error) {
	fr, err := f.frames.Lookup(platform)
	if err != nil {
		return Result{}, err
	}
	return f.FitToFrame(img, fr)
}

// FitToFrame scales img to fit inside fr, preserving its aspect ratio, and
// composites it centered onto a new canvas of exactly fr's size.
func (f *Fitter) FitToFrame(img image.Image, fr frame.Frame) (Result, error) {
	if img == nil {
		return Result{}, types.Errorf(types.DegenerateImage, "fit", "no source image")
	}
	info := types.InfoOf(img)

	placement, err := Layout(info.Width, info.Height, fr)
	if err != nil {
		return Result{}, err
	}

	var content image.Image
	if placement.Width == info.Width && placement.Height == info.Height {
		content = img
	} else {
		content = imaging.Resize(img, placement.Width, placement.Height, f.config.Filter)
	}

	// Overlay alpha-composites, so translucent sources end up on the
	// background rather than leaving holes in the canvas.
	dst := imaging.New(fr.Width, fr.Height, f.config.Background)
	dst = imaging.Overlay(dst, content, image.Pt(placement.OffsetX, placement.OffsetY), 1.0)

	return Result{
		Image:     dst,
		Frame:     fr,
		Placement: placement,
		Source:    info,
	}, nil
}

// Layout computes the size and offset of a srcWidth x srcHeight image fitted
// into fr. When the frame is relatively wider than the source the content is
// height-constrained and padded left/right; otherwise it is width-constrained
// and padded top/bottom. The derived side is rounded half away from zero in
// both branches. Offsets use floor division, so with an odd leftover the
// content sits half a pixel toward the left/top.
func Layout(srcWidth, srcHeight int, fr frame.Frame) (types.Placement, error) {
	if srcHeight <= 0 || srcWidth <= 0 {
		return types.Placement{}, types.Errorf(types.DegenerateImage, "layout",
			"source image is %dx%d, both sides must be positive", srcWidth, srcHeight)
	}
	if fr.Width <= 0 || fr.Height <= 0 {
		return types.Placement{}, fmt.Errorf("invalid frame size %dx%d", fr.Width, fr.Height)
	}

	sourceRatio := float64(srcWidth) / float64(srcHeight)
	targetRatio := fr.Ratio()

	var w, h int
	if targetRatio > sourceRatio {
		h = fr.Height
		w = clampInt(int(math.Round(sourceRatio*float64(fr.Height))), 1, fr.Width)
	} else {
		w = fr.Width
		h = clampInt(int(math.Round(float64(fr.Width)/sourceRatio)), 1, fr.Height)
	}

	return types.Placement{
		Width:   w,
		Height:  h,
		OffsetX: (fr.Width - w) / 2,
		OffsetY: (fr.Height - h) / 2,
	}, nil
}

// ParseResampleFilter maps a filter name to an imaging resampling filter.
// Nearest-neighbour is refused since it leaves visible artifacts.
func ParseResampleFilter(name string) (imaging.ResampleFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lanczos":
		return imaging.Lanczos, nil
	case "catmullrom":
		return imaging.CatmullRom, nil
	case "mitchell", "mitchellnetravali":
		return imaging.MitchellNetravali, nil
	case "box":
		return imaging.Box, nil
	case "linear":
		return imaging.Linear, nil
	case "gaussian":
		return imaging.Gaussian, nil
	case "bspline":
		return imaging.BSpline, nil
	case "hann":
		return imaging.Hann, nil
	case "hamming":
		return imaging.Hamming, nil
	case "blackman":
		return imaging.Blackman, nil
	case "nearest", "nearestneighbor":
		return imaging.ResampleFilter{}, fmt.Errorf("resample filter %q is not allowed", name)
	default:
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter %q", name)
	}
}

// ParseColor parses a #RGB or #RRGGBB hex colour
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(s, "%2x%2x%2x", &r, &g, &b); err != nil {
			return nil, fmt.Errorf("invalid colour %q: %w", s, err)
		}
	default:
		return nil, fmt.Errorf("invalid colour %q", s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
