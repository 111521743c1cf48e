// Package filter implements the fixed set of convolution filters offered on a
// fitted image. Kernels follow the classic PIL ImageFilter definitions.
package filter

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Filter is one of the supported visual filters
type Filter int

const (
	Original Filter = iota
	Blur
	Contour
	Detail
	EdgeEnhance
	EdgeEnhanceMore
	Emboss
	FindEdges
	Sharpen
	Smooth
)

var names = [...]string{
	Original:        "ORIGINAL",
	Blur:            "BLUR",
	Contour:         "CONTOUR",
	Detail:          "DETAIL",
	EdgeEnhance:     "EDGE ENHANCE",
	EdgeEnhanceMore: "EDGE ENHANCE MORE",
	Emboss:          "EMBOSS",
	FindEdges:       "FIND EDGES",
	Sharpen:         "SHARPEN",
	Smooth:          "SMOOTH",
}

// All returns every filter in display order
func All() []Filter {
	out := make([]Filter, len(names))
	for i := range names {
		out[i] = Filter(i)
	}
	return out
}

// String returns the display name, e.g. "EDGE ENHANCE"
func (f Filter) String() string {
	if f < 0 || int(f) >= len(names) {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return names[f]
}

// Slug returns a filename-friendly name, e.g. "EDGE_ENHANCE"
func (f Filter) Slug() string {
	return strings.ReplaceAll(f.String(), " ", "_")
}

// Parse resolves a filter name. Case is ignored, as are spaces, underscores
// and hyphens, so "edge enhance", "EDGE_ENHANCE" and "EdgeEnhance" all match.
func Parse(name string) (Filter, error) {
	key := normalize(name)
	for i, n := range names {
		if normalize(n) == key {
			return Filter(i), nil
		}
	}
	valid := make([]string, len(names))
	copy(valid, names[:])
	return Original, fmt.Errorf("unknown filter %q, choose one of: %s", name, strings.Join(valid, ", "))
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(s)))
}

// Apply returns a new image with f applied to img. Original returns an
// unmodified copy.
func Apply(img image.Image, f Filter) (*image.NRGBA, error) {
	switch f {
	case Original:
		return imaging.Clone(img), nil
	case Blur:
		var k [25]float64
		for i, w := range blurKernel {
			k[i] = w / 16
		}
		return imaging.Convolve5x5(img, k, nil), nil
	}

	k, ok := kernels3x3[f]
	if !ok {
		return nil, fmt.Errorf("unsupported filter %v", f)
	}
	return imaging.Convolve3x3(img, k.scaled(), &imaging.ConvolveOptions{Bias: k.offset}), nil
}

// kernel3x3 mirrors a PIL kernel: each weight is divided by scale and offset
// is added to the result.
type kernel3x3 struct {
	weights [9]float64
	scale   float64
	offset  int
}

func (k kernel3x3) scaled() [9]float64 {
	var out [9]float64
	for i, w := range k.weights {
		out[i] = w / k.scale
	}
	return out
}

var blurKernel = [25]float64{
	1, 1, 1, 1, 1,
	1, 0, 0, 0, 1,
	1, 0, 0, 0, 1,
	1, 0, 0, 0, 1,
	1, 1, 1, 1, 1,
}

var kernels3x3 = map[Filter]kernel3x3{
	Contour: {[9]float64{
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	}, 1, 255},
	Detail: {[9]float64{
		0, -1, 0,
		-1, 10, -1,
		0, -1, 0,
	}, 6, 0},
	EdgeEnhance: {[9]float64{
		-1, -1, -1,
		-1, 10, -1,
		-1, -1, -1,
	}, 2, 0},
	EdgeEnhanceMore: {[9]float64{
		-1, -1, -1,
		-1, 9, -1,
		-1, -1, -1,
	}, 1, 0},
	Emboss: {[9]float64{
		-1, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}, 1, 128},
	FindEdges: {[9]float64{
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	}, 1, 0},
	Sharpen: {[9]float64{
		-2, -2, -2,
		-2, 32, -2,
		-2, -2, -2,
	}, 16, 0},
	Smooth: {[9]float64{
		1, 1, 1,
		1, 5, 1,
		1, 1, 1,
	}, 13, 0},
}
