// Package crop turns the visible part of a viewport into a new image,
// and rotates images in place.
package crop

import (
	"errors"
	"fmt"
	"image"
	"math"

	"imageview/pkg/geom"
)

// ErrCroppingFailed is returned when the crop zone does not overlap the
// source image.
var ErrCroppingFailed = errors.New("crop: cropping failed")

// ErrRotationFailed is returned when a Rotator produces no image.
var ErrRotationFailed = errors.New("crop: rotation failed")

// Cropper cuts a pixel rectangle out of an image. Implementations clamp
// or reject rectangles that leave the image bounds; an empty result
// means the rectangle was rejected.
type Cropper interface {
	Crop(src image.Image, r image.Rectangle) (image.Image, error)
}

// Rotator rotates an image by degrees around its center without
// changing the canvas size. Positive angles turn clockwise.
type Rotator interface {
	Rotate(src image.Image, degrees float64) (image.Image, error)
}

// Engine maps the visible window onto source pixels and delegates the
// pixel work to its primitives.
type Engine struct {
	Cropper Cropper
	Rotator Rotator
}

// NewEngine returns an engine backed by the default primitives.
func NewEngine() *Engine {
	return &Engine{
		Cropper: ImagingCropper{},
		Rotator: BildRotator{},
	}
}

// ImageViewScale is the ratio between an image's native resolution and
// the size it is drawn at on screen.
func ImageViewScale(src geom.Size, displayed geom.Rect) float64 {
	return math.Max(src.Width/displayed.Width, src.Height/displayed.Height)
}

// Zone returns the crop zone in source pixels for a viewport showing
// the window at offset with the given size, when the image is drawn
// into displayed (scroll coordinates).
func Zone(offset geom.Point, size geom.Size, displayed geom.Rect, src geom.Size) geom.Rect {
	scale := ImageViewScale(src, displayed)
	visible := geom.RectOf(offset.Sub(displayed.Origin()), size)
	return geom.ScaledRect(visible, scale)
}

// Crop cuts the visible window out of src.
func (e *Engine) Crop(offset geom.Point, size geom.Size, displayed geom.Rect, src image.Image) (image.Image, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source image", ErrCroppingFailed)
	}
	if displayed.Width <= 0 || displayed.Height <= 0 {
		return nil, fmt.Errorf("%w: image is not displayed", ErrCroppingFailed)
	}

	zone := Zone(offset, size, displayed, geom.SizeOf(src))
	r := zone.Pixels().Add(src.Bounds().Min)

	out, err := e.Cropper.Crop(src, r)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Bounds().Empty() {
		return nil, fmt.Errorf("%w: zone %v outside %v", ErrCroppingFailed, r, src.Bounds())
	}
	return out, nil
}

// Rotate rotates src by degrees. A whole number of turns returns src
// itself.
func (e *Engine) Rotate(src image.Image, degrees float64) (image.Image, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source image", ErrRotationFailed)
	}
	if math.Mod(degrees, 360) == 0 {
		return src, nil
	}
	out, err := e.Rotator.Rotate(src, degrees)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, ErrRotationFailed
	}
	return out, nil
}
