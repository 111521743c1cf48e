// Package sketch turns an image into a binary edge drawing using the Sobel
// operator.
package sketch

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultThreshold is the gradient magnitude above which a pixel is an edge
const DefaultThreshold = 50

var (
	sobelX = [9]float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}
	sobelY = [9]float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}
)

// Sketch returns the binarized Sobel edges of img using DefaultThreshold
func Sketch(img image.Image) *image.Gray {
	return Edges(img, DefaultThreshold)
}

// Edges converts img to grayscale, computes the Sobel gradient magnitude and
// marks pixels whose magnitude exceeds threshold white, all others black.
//
// Each directional response is clamped to 255 before the magnitude is taken.
// That does not change the outcome for thresholds below 255, since a clamped
// component alone already exceeds them.
func Edges(img image.Image, threshold float64) *image.Gray {
	gray := imaging.Grayscale(img)
	gx := imaging.Convolve3x3(gray, sobelX, &imaging.ConvolveOptions{Abs: true})
	gy := imaging.Convolve3x3(gray, sobelY, &imaging.ConvolveOptions{Abs: true})

	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*gx.Stride + x*4
			mag := math.Hypot(float64(gx.Pix[i]), float64(gy.Pix[i]))
			if mag > threshold {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}
