package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"imageview/pkg/geom"
	"imageview/pkg/viewport"
)

// ErrNothingToRender is returned when there is no image or the viewport
// has no area.
var ErrNothingToRender = errors.New("render: nothing to render")

// Snapshot renders what a viewport in state s shows of img: the image
// through the content-to-view transform over bg, at viewport size.
func Snapshot(img image.Image, s viewport.Snapshot, bg color.Color) (*image.RGBA, error) {
	if img == nil || s.ViewportSize.Empty() || s.ZoomScale <= 0 {
		return nil, ErrNothingToRender
	}
	w := int(math.Ceil(s.ViewportSize.Width))
	h := int(math.Ceil(s.ViewportSize.Height))

	c := NewCanvas(w, h, bg)
	c.DrawImageTransformed(img, s.ContentToView(), draw.ApproxBiLinear)
	return c.Image(), nil
}

// SnapshotAt renders like Snapshot into a width x height pixel image,
// for hosts whose pixels are not viewport points.
func SnapshotAt(img image.Image, s viewport.Snapshot, bg color.Color, width, height int) (*image.RGBA, error) {
	if img == nil || s.ViewportSize.Empty() || s.ZoomScale <= 0 || width <= 0 || height <= 0 {
		return nil, ErrNothingToRender
	}
	m := s.ContentToView().Multiply(geom.Scale(
		float64(width)/s.ViewportSize.Width,
		float64(height)/s.ViewportSize.Height,
	))
	c := NewCanvas(width, height, bg)
	c.DrawImageTransformed(img, m, draw.ApproxBiLinear)
	return c.Image(), nil
}

// VisibleRect returns the part of the image, in image pixels, that the
// viewport shows.
func VisibleRect(s viewport.Snapshot) geom.Rect {
	inv := s.ContentToView().Inverse()
	r := inv.TransformRect(geom.RectOf(geom.Point{}, s.ViewportSize))
	x0 := geom.Clamp(r.X, 0, s.ImageSize.Width)
	y0 := geom.Clamp(r.Y, 0, s.ImageSize.Height)
	x1 := geom.Clamp(r.X+r.Width, 0, s.ImageSize.Width)
	y1 := geom.Clamp(r.Y+r.Height, 0, s.ImageSize.Height)
	return geom.NewRect(x0, y0, x1, y1)
}

// Overview renders the whole image fitted into a square of maxSide
// pixels and outlines the part the viewport shows.
func Overview(img image.Image, s viewport.Snapshot, maxSide int, frame color.Color) (*image.RGBA, error) {
	if img == nil || maxSide <= 0 || s.ZoomScale <= 0 {
		return nil, ErrNothingToRender
	}
	size := geom.SizeOf(img)
	if size.Empty() {
		return nil, ErrNothingToRender
	}
	if size != s.ImageSize {
		return nil, fmt.Errorf("render: image is %vx%v, state is for %vx%v",
			size.Width, size.Height, s.ImageSize.Width, s.ImageSize.Height)
	}
	scale := math.Min(float64(maxSide)/size.Width, float64(maxSide)/size.Height)
	w := int(math.Max(1, math.Round(size.Width*scale)))
	h := int(math.Max(1, math.Round(size.Height*scale)))

	c := NewCanvas(w, h, color.Transparent)
	c.DrawImageScaled(img, geom.Rect{Width: float64(w), Height: float64(h)}, draw.ApproxBiLinear)

	visible := geom.ScaledRect(VisibleRect(s), float64(w)/size.Width)
	c.StrokeRect(visible, math.Max(1, float64(maxSide)/100), frame)
	return c.Image(), nil
}
