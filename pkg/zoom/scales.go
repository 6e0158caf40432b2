package zoom

import (
	"errors"
	"fmt"
	"math"

	"imageview/pkg/geom"
)

const (
	// DefaultMaxScaleFactor is how far past the minimum scale a user
	// may zoom in.
	DefaultMaxScaleFactor = 3.0

	// UnconstrainedMaxScaleFactor lifts the zoom-in cap for hosts that
	// want practically unlimited magnification.
	UnconstrainedMaxScaleFactor = 999.0

	// restMargin keeps the minimum scale just under the fitted scale, so
	// hosts paging between viewports can still tell the content is at
	// rest.
	restMargin = 0.999
)

// ErrDegenerate is returned when the scales cannot be derived because
// the image or the viewport has no area.
var ErrDegenerate = errors.New("zoom: degenerate geometry")

// Scales is the allowed zoom range.
type Scales struct {
	Min, Max float64
}

// Clamp limits scale to the range.
func (s Scales) Clamp(scale float64) float64 {
	return geom.Clamp(scale, s.Min, s.Max)
}

// Fitted returns the scale that makes the image satisfy mode inside
// viewport, before the maximum and the rest margin are applied.
func Fitted(viewport, image geom.Size, mode ContentMode) float64 {
	xScale := viewport.Width / image.Width
	yScale := viewport.Height / image.Height

	switch mode.kind {
	case aspectFill:
		return math.Max(xScale, yScale)
	case aspectFit:
		return math.Min(xScale, yScale)
	case widthFill:
		return xScale
	case heightFill:
		return yScale
	case customOffset:
		return xScale * mode.factor
	}
	return 1
}

// Compute returns the zoom range for an image shown in viewport under
// mode. The maximum is maxScaleFactor times the fitted scale; the
// minimum never exceeds the maximum.
func Compute(viewport, image geom.Size, mode ContentMode, maxScaleFactor float64) (Scales, error) {
	if image.Empty() {
		return Scales{}, fmt.Errorf("%w: image size %vx%v", ErrDegenerate, image.Width, image.Height)
	}
	if viewport.Empty() {
		return Scales{}, fmt.Errorf("%w: viewport size %vx%v", ErrDegenerate, viewport.Width, viewport.Height)
	}
	if maxScaleFactor <= 0 {
		return Scales{}, fmt.Errorf("%w: max scale factor %v", ErrDegenerate, maxScaleFactor)
	}

	minScale := Fitted(viewport, image, mode)
	if !(minScale > 0) || math.IsInf(minScale, 0) {
		return Scales{}, fmt.Errorf("%w: fitted scale %v for %v", ErrDegenerate, minScale, mode)
	}
	maxScale := maxScaleFactor * minScale

	// An image smaller than the viewport is not forced to overflow it.
	if minScale > maxScale {
		minScale = maxScale
	}

	return Scales{
		Min: minScale * restMargin,
		Max: maxScale,
	}, nil
}
