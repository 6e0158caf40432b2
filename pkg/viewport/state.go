// Package viewport holds the scroll and zoom state of an image shown
// through a viewport and applies the policies that keep it consistent
// across content mode changes, resizes and gestures.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"imageview/pkg/geom"
	"imageview/pkg/zoom"
)

const (
	// DefaultDoubleTapZoomFactor is the zoom reached by a double tap,
	// relative to the minimum scale.
	DefaultDoubleTapZoomFactor = 2.0

	doubleTapTolerance = 0.01

	// minScaleTolerance is one float32 ULP at 1.0. A scale this close to
	// the minimum counts as resting at the minimum.
	minScaleTolerance = 1.0 / (1 << 23)
)

// ErrNoImage is returned by operations that need an image size and a
// computed zoom range.
var ErrNoImage = errors.New("viewport: no image")

// State is the scroll and zoom state of one viewport. The zero value is
// not usable; call New.
//
// State is not safe for concurrent use.
type State struct {
	identifier int

	viewportSize geom.Size
	imageSize    geom.Size
	offset       geom.Point
	scale        float64
	scales       zoom.Scales

	mode  zoom.ContentMode
	next  zoom.ContentMode
	focus FocusOffset

	maxScaleFactor      float64
	doubleTapZoomFactor float64

	// Captured by PrepareToResize. A zero scale means "at minimum".
	centerAfterResize geom.Point
	scaleAfterResize  float64
}

// New returns a state in width-fill mode that toggles to aspect-fit,
// focused at the beginning.
func New() *State {
	return &State{
		scale:               1,
		mode:                zoom.WidthFill,
		next:                zoom.AspectFit,
		focus:               Beginning,
		maxScaleFactor:      zoom.DefaultMaxScaleFactor,
		doubleTapZoomFactor: DefaultDoubleTapZoomFactor,
	}
}

// Identifier returns the caller-assigned tag.
func (s *State) Identifier() int { return s.identifier }

// SetIdentifier sets the caller-assigned tag.
func (s *State) SetIdentifier(id int) { s.identifier = id }

// ViewportSize returns the size of the visible window.
func (s *State) ViewportSize() geom.Size { return s.viewportSize }

// SetViewportSize records a new viewport size without recomputing
// anything. Use Resize to keep the visible content stable.
func (s *State) SetViewportSize(size geom.Size) { s.viewportSize = size }

// ImageSize returns the native size of the configured image.
func (s *State) ImageSize() geom.Size { return s.imageSize }

// ContentOffset returns the top left corner of the visible window in
// content coordinates.
func (s *State) ContentOffset() geom.Point { return s.offset }

// ZoomScale returns the current zoom scale.
func (s *State) ZoomScale() float64 { return s.scale }

// Scales returns the current zoom range.
func (s *State) Scales() zoom.Scales { return s.scales }

// ContentMode returns the active content mode.
func (s *State) ContentMode() zoom.ContentMode { return s.mode }

// SetContentMode sets the active content mode. It takes effect at the
// next ConfigureForSize.
func (s *State) SetContentMode(m zoom.ContentMode) { s.mode = m }

// NextContentMode returns the mode ToggleContentMode switches to.
func (s *State) NextContentMode() zoom.ContentMode { return s.next }

// SetNextContentMode sets the mode ToggleContentMode switches to.
func (s *State) SetNextContentMode(m zoom.ContentMode) { s.next = m }

// FocusOffset returns the focus policy.
func (s *State) FocusOffset() FocusOffset { return s.focus }

// SetFocusOffset sets the focus policy.
func (s *State) SetFocusOffset(f FocusOffset) { s.focus = f }

// MaxScaleFactor returns how far past the minimum scale zooming may go.
func (s *State) MaxScaleFactor() float64 { return s.maxScaleFactor }

// SetMaxScaleFactor changes the zoom-in cap. It takes effect at the next
// scale computation.
func (s *State) SetMaxScaleFactor(f float64) error {
	if !(f > 0) {
		return fmt.Errorf("viewport: max scale factor %v must be positive", f)
	}
	s.maxScaleFactor = f
	return nil
}

// DoubleTapZoomFactor returns the zoom reached by a double tap relative
// to the minimum scale.
func (s *State) DoubleTapZoomFactor() float64 { return s.doubleTapZoomFactor }

// SetDoubleTapZoomFactor sets the double tap zoom factor.
func (s *State) SetDoubleTapZoomFactor(f float64) error {
	if !(f > 0) {
		return fmt.Errorf("viewport: double tap zoom factor %v must be positive", f)
	}
	s.doubleTapZoomFactor = f
	return nil
}

// HasImage reports whether an image size is set and a zoom range has
// been computed for it.
func (s *State) HasImage() bool {
	return !s.imageSize.Empty() && s.scales.Max > 0
}

// SetImageSize records an image size without a zoom range, for a
// viewport that has not been laid out yet. Any previous range, scale and
// offset are dropped, so HasImage reports false until ConfigureForSize
// runs.
func (s *State) SetImageSize(size geom.Size) {
	s.imageSize = size
	s.scales = zoom.Scales{}
	s.scale = 1
	s.offset = geom.Point{}
}

// ContentSize is the image size at the current zoom scale.
func (s *State) ContentSize() geom.Size {
	return s.imageSize.Scale(s.scale)
}

// ImageFrame returns where the zoomed image sits in scroll coordinates.
// An axis on which the content is smaller than the viewport is centered.
func (s *State) ImageFrame() geom.Rect {
	content := s.ContentSize()
	var x, y float64
	if content.Width < s.viewportSize.Width {
		x = (s.viewportSize.Width - content.Width) / 2
	}
	if content.Height < s.viewportSize.Height {
		y = (s.viewportSize.Height - content.Height) / 2
	}
	return geom.RectOf(geom.Pt(x, y), content)
}

// ViewToContent converts a point in viewport coordinates to native
// image coordinates.
func (s *State) ViewToContent(p geom.Point) geom.Point {
	return s.ContentToViewMatrix().Inverse().Transform(p)
}

// ContentToView converts a point in native image coordinates to
// viewport coordinates.
func (s *State) ContentToView(p geom.Point) geom.Point {
	return s.ContentToViewMatrix().Transform(p)
}

// ContentToViewMatrix maps native image coordinates to viewport
// coordinates at the current scale and offset.
func (s *State) ContentToViewMatrix() geom.Matrix {
	return contentToView(s.scale, s.ImageFrame(), s.offset)
}

func contentToView(scale float64, frame geom.Rect, offset geom.Point) geom.Matrix {
	return geom.Scale(scale, scale).
		Multiply(geom.Translate(frame.X-offset.X, frame.Y-offset.Y))
}

// maxOffset is the largest offset that keeps the viewport inside the
// content. It is negative on an axis where the content is smaller.
func (s *State) maxOffset() geom.Point {
	content := s.ContentSize()
	return geom.Pt(content.Width-s.viewportSize.Width, content.Height-s.viewportSize.Height)
}

func (s *State) clampOffset(p geom.Point) geom.Point {
	limit := s.maxOffset()
	return geom.Pt(geom.Clamp(p.X, 0, limit.X), geom.Clamp(p.Y, 0, limit.Y))
}

// ConfigureForSize recomputes the zoom range for an image of the given
// size, resets the scale to the minimum and applies the focus policy.
// On error the state is left unchanged.
func (s *State) ConfigureForSize(imageSize geom.Size) error {
	scales, err := zoom.Compute(s.viewportSize, imageSize, s.mode, s.maxScaleFactor)
	if err != nil {
		return err
	}
	s.imageSize = imageSize
	s.scales = scales
	s.scale = scales.Min
	s.offset = s.focusedOffset()
	return nil
}

func (s *State) focusedOffset() geom.Point {
	if s.focus != Center {
		return geom.Point{}
	}

	content := s.ContentSize()
	var x, y float64
	if content.Width > s.viewportSize.Width {
		x = (content.Width - s.viewportSize.Width) / 2
	}
	if content.Height > s.viewportSize.Height {
		y = (content.Height - s.viewportSize.Height) / 2
	}

	switch {
	case s.mode == zoom.AspectFit:
		return geom.Point{}
	case s.mode == zoom.AspectFill:
		return geom.Pt(x, y)
	case s.mode == zoom.HeightFill:
		return geom.Pt(x, 0)
	case s.mode == zoom.WidthFill, s.mode.IsCustomOffset():
		return geom.Pt(0, y)
	}
	return geom.Point{}
}

// UpdateImageSize switches to an image of a different size without
// resetting the view: the zoom range is recomputed and the current scale
// and offset are clamped into it.
func (s *State) UpdateImageSize(imageSize geom.Size) error {
	scales, err := zoom.Compute(s.viewportSize, imageSize, s.mode, s.maxScaleFactor)
	if err != nil {
		return err
	}
	s.imageSize = imageSize
	s.scales = scales
	s.scale = scales.Clamp(s.scale)
	s.offset = s.clampOffset(s.offset)
	return nil
}

// ToggleContentMode switches to the next content mode, or back to
// aspect fill when the next mode is already active, and re-applies the
// focus policy.
func (s *State) ToggleContentMode() error {
	if !s.HasImage() {
		return ErrNoImage
	}
	prev := s.mode
	if s.mode != s.next {
		s.mode = s.next
	} else {
		s.mode = zoom.AspectFill
	}
	if err := s.ConfigureForSize(s.imageSize); err != nil {
		s.mode = prev
		return err
	}
	return nil
}

// SetContentOffset sets the zoom scale, clamped into range, and the
// offset as given.
func (s *State) SetContentOffset(offset geom.Point, scale float64) error {
	if !s.HasImage() {
		return ErrNoImage
	}
	s.scale = s.scales.Clamp(scale)
	s.offset = offset
	return nil
}

// PrepareToResize captures the content point at the center of the
// viewport and the scale to restore. A scale resting at the minimum is
// recorded as 0 so that it snaps to the new minimum after the resize.
func (s *State) PrepareToResize() {
	s.centerAfterResize = s.ViewToContent(s.viewportSize.Center())
	s.scaleAfterResize = s.scale
	if s.scaleAfterResize <= s.scales.Min+minScaleTolerance {
		s.scaleAfterResize = 0
	}
}

// RecoverFromResize applies a new viewport size, restores the captured
// scale within the new range and puts the captured point back at the
// center of the viewport. On error the state is left unchanged.
func (s *State) RecoverFromResize(size geom.Size) error {
	scales, err := zoom.Compute(size, s.imageSize, s.mode, s.maxScaleFactor)
	if err != nil {
		return err
	}
	s.viewportSize = size
	s.scales = scales

	restore := s.scaleAfterResize
	if restore == 0 {
		restore = scales.Min
	}
	s.scale = scales.Clamp(restore)

	frame := s.ImageFrame()
	offset := s.centerAfterResize.Scale(s.scale).Add(frame.Origin()).Sub(size.Center())
	s.offset = s.clampOffset(offset)
	return nil
}

// Resize changes the viewport size. When an image is set and the new
// size has area, the visible content is preserved with PrepareToResize
// and RecoverFromResize; otherwise the size is only recorded. It reports
// whether recovery ran.
func (s *State) Resize(size geom.Size) (bool, error) {
	if size == s.viewportSize {
		return false, nil
	}
	if size.Empty() || !s.HasImage() {
		s.viewportSize = size
		return false, nil
	}
	s.PrepareToResize()
	if err := s.RecoverFromResize(size); err != nil {
		return false, err
	}
	return true, nil
}

// ZoomRect returns the rectangle, in native image coordinates, that
// fills the viewport at scale with center in its middle.
func (s *State) ZoomRect(scale float64, center geom.Point) geom.Rect {
	w := s.viewportSize.Width / scale
	h := s.viewportSize.Height / scale
	return geom.Rect{
		X:      center.X - w/2,
		Y:      center.Y - h/2,
		Width:  w,
		Height: h,
	}
}

// ZoomToRect zooms so that r, in native image coordinates, fills the
// viewport as far as the zoom range allows, centered on r.
func (s *State) ZoomToRect(r geom.Rect) error {
	if !s.HasImage() {
		return ErrNoImage
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("viewport: empty zoom rect %+v", r)
	}
	scale := math.Min(s.viewportSize.Width/r.Width, s.viewportSize.Height/r.Height)
	s.scale = s.scales.Clamp(scale)

	center := geom.Pt(r.X+r.Width/2, r.Y+r.Height/2)
	frame := s.ImageFrame()
	offset := center.Scale(s.scale).Add(frame.Origin()).Sub(s.viewportSize.Center())
	s.offset = s.clampOffset(offset)
	return nil
}

// ZoomAbout sets the scale, clamped into range, keeping the content
// under focus (a viewport point) in place.
func (s *State) ZoomAbout(scale float64, focus geom.Point) error {
	if !s.HasImage() {
		return ErrNoImage
	}
	anchor := s.ViewToContent(focus)
	s.scale = s.scales.Clamp(scale)

	frame := s.ImageFrame()
	offset := anchor.Scale(s.scale).Add(frame.Origin()).Sub(focus)
	s.offset = s.clampOffset(offset)
	return nil
}

// Pinch multiplies the scale by factor around focus.
func (s *State) Pinch(factor float64, focus geom.Point) error {
	if !(factor > 0) {
		return fmt.Errorf("viewport: pinch factor %v must be positive", factor)
	}
	return s.ZoomAbout(s.scale*factor, focus)
}

// Pan scrolls the content by delta viewport points. Dragging right
// (positive delta) reveals content further left.
func (s *State) Pan(delta geom.Point) error {
	if !s.HasImage() {
		return ErrNoImage
	}
	s.offset = s.clampOffset(s.offset.Sub(delta))
	return nil
}

// DoubleTap zooms in on the tapped viewport point, or back out to the
// minimum scale when already zoomed in at least as far as a double tap
// would. It reports whether it zoomed in.
func (s *State) DoubleTap(p geom.Point) (bool, error) {
	if !s.HasImage() {
		return false, ErrNoImage
	}
	target := s.scales.Clamp(s.scales.Min * s.doubleTapZoomFactor)
	if s.scale >= target-doubleTapTolerance {
		return false, s.ZoomAbout(s.scales.Min, s.viewportSize.Center())
	}
	return true, s.ZoomToRect(s.ZoomRect(target, s.ViewToContent(p)))
}

// Snapshot is a read-only copy of a State.
type Snapshot struct {
	Identifier      int
	ViewportSize    geom.Size
	ImageSize       geom.Size
	ContentSize     geom.Size
	ContentOffset   geom.Point
	ImageFrame      geom.Rect
	ZoomScale       float64
	MinZoomScale    float64
	MaxZoomScale    float64
	ContentMode     zoom.ContentMode
	NextContentMode zoom.ContentMode
	FocusOffset     FocusOffset
}

// ContentToView returns the transform from native image coordinates to
// viewport coordinates for the copied state.
func (s Snapshot) ContentToView() geom.Matrix {
	return contentToView(s.ZoomScale, s.ImageFrame, s.ContentOffset)
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Identifier:      s.identifier,
		ViewportSize:    s.viewportSize,
		ImageSize:       s.imageSize,
		ContentSize:     s.ContentSize(),
		ContentOffset:   s.offset,
		ImageFrame:      s.ImageFrame(),
		ZoomScale:       s.scale,
		MinZoomScale:    s.scales.Min,
		MaxZoomScale:    s.scales.Max,
		ContentMode:     s.mode,
		NextContentMode: s.next,
		FocusOffset:     s.focus,
	}
}
