// Package render draws what a viewport shows into an off-screen image,
// for snapshots and for hosts that do their own compositing.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"imageview/pkg/geom"
)

// Canvas is a drawing surface with a background color.
type Canvas struct {
	img    *image.RGBA
	width  int
	height int

	background color.Color
}

// NewCanvas creates a canvas filled with bg. A nil bg is transparent.
func NewCanvas(width, height int, bg color.Color) *Canvas {
	if bg == nil {
		bg = color.Transparent
	}
	c := &Canvas{
		img:        image.NewRGBA(image.Rect(0, 0, width, height)),
		width:      width,
		height:     height,
		background: bg,
	}
	c.Clear()
	return c
}

// Image returns the underlying RGBA image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear fills the canvas with the background color.
func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{c.background}, image.Point{}, draw.Src)
}

// DrawImageTransformed draws img through m, which maps image pixels
// (relative to the image's bounds origin) to canvas pixels.
func (c *Canvas) DrawImageTransformed(img image.Image, m geom.Matrix, q draw.Interpolator) {
	b := img.Bounds()
	s2d := geom.Translate(-float64(b.Min.X), -float64(b.Min.Y)).Multiply(m)
	q.Transform(c.img, s2d.Aff3(), img, b, draw.Over, nil)
}

// DrawImageScaled draws img scaled into r.
func (c *Canvas) DrawImageScaled(img image.Image, r geom.Rect, q draw.Interpolator) {
	q.Scale(c.img, r.Pixels(), img, img.Bounds(), draw.Over, nil)
}

// StrokeRect outlines r with a line of the given width drawn inside it.
func (c *Canvas) StrokeRect(r geom.Rect, width float64, col color.Color) {
	if r.Width <= 0 || r.Height <= 0 || width <= 0 {
		return
	}
	w := width
	if w*2 > r.Width {
		w = r.Width / 2
	}
	if w*2 > r.Height {
		w = r.Height / 2
	}

	z := vector.NewRasterizer(c.width, c.height)
	// Outer edge clockwise, inner edge counter-clockwise: the windings
	// cancel inside and only the frame is filled.
	rectPath(z, r, true)
	rectPath(z, geom.Rect{X: r.X + w, Y: r.Y + w, Width: r.Width - 2*w, Height: r.Height - 2*w}, false)
	z.Draw(c.img, c.img.Bounds(), &image.Uniform{col}, image.Point{})
}

func rectPath(z *vector.Rasterizer, r geom.Rect, clockwise bool) {
	x0, y0 := float32(r.X), float32(r.Y)
	x1, y1 := float32(r.X+r.Width), float32(r.Y+r.Height)
	z.MoveTo(x0, y0)
	if clockwise {
		z.LineTo(x1, y0)
		z.LineTo(x1, y1)
		z.LineTo(x0, y1)
	} else {
		z.LineTo(x0, y1)
		z.LineTo(x1, y1)
		z.LineTo(x1, y0)
	}
	z.ClosePath()
}
