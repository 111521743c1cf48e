package types

import "image"

// Placement describes where the scaled content sits on a fitted canvas
type Placement struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`
}

// Rect returns the content rectangle in canvas coordinates
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.OffsetX, p.OffsetY, p.OffsetX+p.Width, p.OffsetY+p.Height)
}

// Padding returns the background margins left around the content on a
// canvasWidth x canvasHeight canvas.
func (p Placement) Padding(canvasWidth, canvasHeight int) (left, top, right, bottom int) {
	left = p.OffsetX
	top = p.OffsetY
	right = canvasWidth - p.OffsetX - p.Width
	bottom = canvasHeight - p.OffsetY - p.Height
	return left, top, right, bottom
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
}

// InfoOf returns basic information about an image. AspectRatio is zero for
// images without height.
func InfoOf(img image.Image) ImageInfo {
	b := img.Bounds()
	info := ImageInfo{Width: b.Dx(), Height: b.Dy(), Area: b.Dx() * b.Dy()}
	if info.Height > 0 {
		info.AspectRatio = float64(info.Width) / float64(info.Height)
	}
	return info
}

// EncodeOptions controls how an image is written to disk
type EncodeOptions struct {
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
}
