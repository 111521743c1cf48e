// Package compare renders labelled comparison sheets: a grid of panels, each
// an image scaled into a fixed cell with a caption above it.
package compare

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel is a single captioned image on a sheet
type Panel struct {
	Title     string
	Image     image.Image
	Highlight bool
}

// Layout controls the sheet geometry
type Layout struct {
	Columns    int
	CellWidth  int
	CellHeight int
	Margin     int
}

// DefaultLayout returns a two-column layout suited to before/after sheets
func DefaultLayout() Layout {
	return Layout{
		Columns:    2,
		CellWidth:  480,
		CellHeight: 360,
		Margin:     8,
	}
}

var (
	background     = color.White
	titleColor     = color.NRGBA{0, 0, 0, 255}
	highlightColor = color.NRGBA{220, 0, 0, 255}
	face           = basicfont.Face7x13
)

// titleHeight is the caption band above each cell
const titleHeight = 20

// Sheet lays out panels row by row. Each image is scaled down to fit its cell
// (never up) and centered in it.
func Sheet(panels []Panel, layout Layout) (*image.NRGBA, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("no panels to render")
	}
	if layout.Columns <= 0 || layout.CellWidth <= 0 || layout.CellHeight <= 0 || layout.Margin < 0 {
		return nil, fmt.Errorf("invalid sheet layout %+v", layout)
	}

	cols := layout.Columns
	if cols > len(panels) {
		cols = len(panels)
	}
	rows := (len(panels) + cols - 1) / cols

	width := cols*layout.CellWidth + (cols+1)*layout.Margin
	height := rows*(layout.CellHeight+titleHeight) + (rows+1)*layout.Margin
	dst := imaging.New(width, height, background)

	for i, p := range panels {
		if p.Image == nil {
			return nil, fmt.Errorf("panel %d (%q) has no image", i, p.Title)
		}
		cell := cellRect(i, cols, layout)

		c := titleColor
		if p.Highlight {
			c = highlightColor
		}
		drawTitle(dst, p.Title, cell.Min.X, cell.Min.Y, layout.CellWidth, c)

		thumb := imaging.Fit(p.Image, layout.CellWidth, layout.CellHeight, imaging.Lanczos)
		tb := thumb.Bounds()
		pos := image.Pt(
			cell.Min.X+(layout.CellWidth-tb.Dx())/2,
			cell.Min.Y+titleHeight+(layout.CellHeight-tb.Dy())/2,
		)
		dst = imaging.Overlay(dst, thumb, pos, 1.0)
	}

	return dst, nil
}

// BeforeAfter renders the common two-panel sheet
func BeforeAfter(beforeTitle string, before image.Image, afterTitle string, after image.Image) (*image.NRGBA, error) {
	return Sheet([]Panel{
		{Title: beforeTitle, Image: before},
		{Title: afterTitle, Image: after},
	}, DefaultLayout())
}

// cellRect returns the bounds of panel i including its caption band
func cellRect(i, cols int, layout Layout) image.Rectangle {
	col, row := i%cols, i/cols
	x := layout.Margin + col*(layout.CellWidth+layout.Margin)
	y := layout.Margin + row*(layout.CellHeight+titleHeight+layout.Margin)
	return image.Rect(x, y, x+layout.CellWidth, y+titleHeight+layout.CellHeight)
}

func drawTitle(dst *image.NRGBA, title string, x, y, width int, c color.Color) {
	if title == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	textWidth := d.MeasureString(title).Ceil()
	left := x + (width-textWidth)/2
	if left < x {
		left = x
	}
	ascent := face.Metrics().Ascent.Ceil()
	d.Dot = fixed.P(left, y+(titleHeight+ascent)/2)
	d.DrawString(title)
}
