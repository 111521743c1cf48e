// Package contrast equalizes the luminance histogram of an image
package contrast

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Result holds the grayscale input and its equalized counterpart
type Result struct {
	Gray      *image.NRGBA
	Equalized *image.NRGBA
}

// Equalize converts img to grayscale and spreads its levels over the full
// 0-255 range by mapping each level through the cumulative histogram.
func Equalize(img image.Image) Result {
	gray := imaging.Grayscale(img)
	lut := LookupTable(imaging.Histogram(gray))

	eq := imaging.AdjustFunc(gray, func(c color.NRGBA) color.NRGBA {
		v := lut[c.R]
		return color.NRGBA{R: v, G: v, B: v, A: c.A}
	})

	return Result{Gray: gray, Equalized: eq}
}

// LookupTable builds the level mapping for a normalized histogram: each level
// maps to its cumulative share of pixels scaled to 255. An empty histogram
// yields the identity mapping.
func LookupTable(hist [256]float64) [256]uint8 {
	var lut [256]uint8

	var total float64
	for _, v := range hist {
		total += v
	}
	if total <= 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	var cdf float64
	for i, v := range hist {
		cdf += v
		lut[i] = uint8(math.Round(math.Min(cdf/total, 1) * 255))
	}
	return lut
}
