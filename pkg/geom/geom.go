// Package geom provides the plane geometry used by the viewport:
// points, sizes, rectangles and affine transforms.
//
// The coordinate space has the origin in the top left corner with the
// axes extending right and down.
package geom

import (
	"image"
	"math"
)

// Point represents a 2D point.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(other Point) Point {
	return Point{p.X + other.X, p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{p.X - other.X, p.Y - other.Y}
}

// Scale scales the point by a factor.
func (p Point) Scale(s float64) Point {
	return Point{p.X * s, p.Y * s}
}

// Size is a width and a height.
type Size struct {
	Width, Height float64
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// SizeOf returns the pixel size of an image's bounds.
func SizeOf(img image.Image) Size {
	if img == nil {
		return Size{}
	}
	b := img.Bounds()
	return Size{float64(b.Dx()), float64(b.Dy())}
}

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Scale scales both dimensions by a factor.
func (s Size) Scale(f float64) Size {
	return Size{s.Width * f, s.Height * f}
}

// Center returns the midpoint of a rectangle of this size at the origin.
func (s Size) Center() Point {
	return Point{s.Width / 2, s.Height / 2}
}

// Rect represents a rectangle as an origin and a size.
type Rect struct {
	X, Y, Width, Height float64
}

// RectOf builds a rectangle from an origin and a size.
func RectOf(origin Point, size Size) Rect {
	return Rect{origin.X, origin.Y, size.Width, size.Height}
}

// NewRect creates a rectangle from two corner points.
func NewRect(x1, y1, x2, y2 float64) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

// Origin returns the top left corner.
func (r Rect) Origin() Point {
	return Point{r.X, r.Y}
}

// Size returns the rectangle's size.
func (r Rect) Size() Size {
	return Size{r.Width, r.Height}
}

// Pixels rounds the rectangle to integer pixel coordinates. Edges are
// rounded to the nearest pixel independently so adjacent rectangles
// never overlap.
func (r Rect) Pixels() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
}

// ScaledRect multiplies both the origin and the size of r by factor.
// It maps a rectangle measured on screen into the pixel space of an
// image displayed at 1/factor of its native resolution.
func ScaledRect(r Rect, factor float64) Rect {
	return Rect{
		X:      r.X * factor,
		Y:      r.Y * factor,
		Width:  r.Width * factor,
		Height: r.Height * factor,
	}
}

// DisplayRect returns the rectangle an image of imageSize occupies when
// drawn aspect-fit and centered inside container. The container's own
// origin is added, so the result is in the container's parent space.
func DisplayRect(container Rect, imageSize Size) Rect {
	if imageSize.Empty() {
		return Rect{}
	}
	scale := math.Min(container.Width/imageSize.Width, container.Height/imageSize.Height)
	w := imageSize.Width * scale
	h := imageSize.Height * scale
	return Rect{
		X:      (container.Width-w)/2 + container.X,
		Y:      (container.Height-h)/2 + container.Y,
		Width:  w,
		Height: h,
	}
}

// Clamp limits v to [lo, hi]. When lo > hi the lower bound wins.
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
