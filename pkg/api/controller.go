// Package api exposes the interactive image view controller: the single
// entry point a host UI drives with layout changes, gestures and
// explicit crop or rotate requests.
package api

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"imageview/pkg/crop"
	"imageview/pkg/geom"
	"imageview/pkg/viewport"
	"imageview/pkg/zoom"
)

// Controller owns the viewport state of one image view and the images
// shown in it.
//
// A Controller is not safe for concurrent use. Hosts call it from their
// UI goroutine.
type Controller struct {
	state    *viewport.State
	engine   *crop.Engine
	listener Listener
	log      *zap.Logger

	original image.Image
	current  image.Image

	configured bool
	pending    bool

	// ScrollEnabled gates Pan.
	ScrollEnabled bool
	// PinchAllowed gates Pinch.
	PinchAllowed bool
	// DoubleTapToZoomAllowed gates DoubleTap.
	DoubleTapToZoomAllowed bool
}

// New creates a controller with all gestures enabled.
func New(opts ...Option) *Controller {
	o := NewOptions(opts...)

	c := &Controller{
		state:                  viewport.New(),
		engine:                 &crop.Engine{Cropper: o.Cropper, Rotator: o.Rotator},
		listener:               o.Listener,
		log:                    o.Logger,
		ScrollEnabled:          true,
		PinchAllowed:           true,
		DoubleTapToZoomAllowed: true,
	}
	if c.listener == nil {
		c.listener = nopListener{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.engine.Cropper == nil {
		c.engine.Cropper = crop.ImagingCropper{}
	}
	if c.engine.Rotator == nil {
		c.engine.Rotator = crop.BildRotator{}
	}

	if err := c.state.SetMaxScaleFactor(o.MaxScaleFactor); err != nil {
		c.log.Warn("ignoring max scale factor", zap.Error(err))
	}
	if err := c.state.SetDoubleTapZoomFactor(o.DoubleTapZoomFactor); err != nil {
		c.log.Warn("ignoring double tap zoom factor", zap.Error(err))
	}
	c.state.SetContentMode(o.ContentMode)
	c.state.SetViewportSize(o.ViewportSize)
	return c
}

// fail logs and reports a failure and returns the error to hand back to
// the caller.
func (c *Controller) fail(kind FailureKind, op string, cause error) error {
	err := fmt.Errorf("%s: %w", op, kind.Err())
	if cause != nil {
		err = fmt.Errorf("%s: %w: %w", op, kind.Err(), cause)
	}
	c.log.Warn("operation failed",
		zap.String("op", op),
		zap.Stringer("kind", kind),
		zap.Error(err),
	)
	c.listener.Failed(kind, err)
	return err
}

// stateFailure maps an error from the viewport state to a failure kind.
func stateFailure(err error, noImage FailureKind) FailureKind {
	if errors.Is(err, zoom.ErrDegenerate) {
		return DegenerateState
	}
	if errors.Is(err, viewport.ErrNoImage) {
		return noImage
	}
	return DegenerateState
}

// show lays img out on a copy of the state, after edit has been applied
// to that copy, and commits the copy and img together only when the
// layout succeeds. A viewport that has not been laid out yet is not an
// error: the image size is recorded without a zoom range and the pending
// refresh or the next resize completes it.
func (c *Controller) show(op string, img image.Image, edit func(*viewport.State)) error {
	size := geom.SizeOf(img)
	if size.Empty() {
		return c.fail(DegenerateState, op,
			fmt.Errorf("%w: image size %vx%v", zoom.ErrDegenerate, size.Width, size.Height))
	}

	staged := *c.state
	if edit != nil {
		edit(&staged)
	}
	if staged.ViewportSize().Empty() {
		staged.SetImageSize(size)
		c.log.Debug("viewport not laid out", zap.String("op", op))
	} else if err := staged.ConfigureForSize(size); err != nil {
		return c.fail(DegenerateState, op, err)
	}

	*c.state = staged
	c.current = img
	c.logState(op)
	return nil
}

func (c *Controller) logState(op string) {
	s := c.state.Snapshot()
	c.log.Debug("configured",
		zap.String("op", op),
		zap.Stringer("mode", s.ContentMode),
		zap.Float64("scale", s.ZoomScale),
		zap.Float64("min", s.MinZoomScale),
		zap.Float64("max", s.MaxZoomScale),
		zap.Float64("offset_x", s.ContentOffset.X),
		zap.Float64("offset_y", s.ContentOffset.Y),
	)
}

// Configure shows img with the given next content mode and focus
// policy. The state is configured immediately and a refresh is armed
// for the host to run once its layout is stable; a second Configure
// before that refresh replaces it. A failed Configure changes nothing.
func (c *Controller) Configure(next zoom.ContentMode, focus viewport.FocusOffset, img image.Image, identifier int) error {
	if img == nil {
		return c.fail(ImageRetrievalFailed, "configure", nil)
	}
	err := c.show("configure", img, func(s *viewport.State) {
		s.SetNextContentMode(next)
		s.SetFocusOffset(focus)
		s.SetIdentifier(identifier)
	})
	if err != nil {
		return err
	}
	c.original = img
	c.configured = true
	c.pending = true
	return nil
}

// Refresh runs the refresh armed by Configure, if any, and reports
// whether one was pending.
func (c *Controller) Refresh() bool {
	if !c.pending {
		return false
	}
	c.pending = false
	if c.current != nil {
		_ = c.show("refresh", c.current, nil)
	}
	return true
}

// UpdateImage replaces the displayed image and keeps everything else:
// the zoom scale and offset are clamped into the new image's range.
func (c *Controller) UpdateImage(img image.Image) error {
	if !c.configured {
		return c.fail(NoImageConfigured, "update image", nil)
	}
	if img == nil {
		return c.fail(ImageRetrievalFailed, "update image", nil)
	}
	if !c.state.HasImage() {
		return c.show("update image", img, nil)
	}

	staged := *c.state
	if err := staged.UpdateImageSize(geom.SizeOf(img)); err != nil {
		return c.fail(DegenerateState, "update image", err)
	}
	*c.state = staged
	c.current = img
	return nil
}

// UpdateImageView replaces the displayed image and re-applies the focus
// policy, as if it had just been configured.
func (c *Controller) UpdateImageView(img image.Image) error {
	if !c.configured {
		return c.fail(NoImageConfigured, "update image view", nil)
	}
	if img == nil {
		return c.fail(ImageRetrievalFailed, "update image view", nil)
	}
	return c.show("update image view", img, nil)
}

// ToggleContentMode switches between the next content mode and aspect
// fill.
func (c *Controller) ToggleContentMode() error {
	if !c.configured {
		return c.fail(NoImageConfigured, "toggle content mode", nil)
	}
	if c.current == nil {
		return c.fail(ImageRetrievalFailed, "toggle content mode", nil)
	}
	if err := c.state.ToggleContentMode(); err != nil {
		return c.fail(stateFailure(err, ViewUnavailable), "toggle content mode", err)
	}
	c.log.Debug("toggled content mode", zap.Stringer("mode", c.state.ContentMode()))
	return nil
}

// SetContentOffset sets the zoom scale and then the offset. Animation
// is left to the host; the state changes immediately.
func (c *Controller) SetContentOffset(offset geom.Point, animated bool, zoomScale float64) error {
	if !c.configured {
		return c.fail(NoImageConfigured, "set content offset", nil)
	}
	if err := c.state.SetContentOffset(offset, zoomScale); err != nil {
		return c.fail(stateFailure(err, ViewUnavailable), "set content offset", err)
	}
	c.log.Debug("set content offset",
		zap.Bool("animated", animated),
		zap.Float64("scale", c.state.ZoomScale()),
	)
	c.listener.Scrolled(c.state.ContentOffset(), c.state.ZoomScale())
	return nil
}

// ResizeViewport applies a new viewport size from the host's layout,
// keeping the visible content centered and the zoom level when an image
// is already laid out.
func (c *Controller) ResizeViewport(size geom.Size) error {
	if size == c.state.ViewportSize() {
		return nil
	}
	if !c.state.HasImage() && c.current != nil {
		return c.show("resize", c.current, func(s *viewport.State) { s.SetViewportSize(size) })
	}
	recovered, err := c.state.Resize(size)
	if err != nil {
		return c.fail(DegenerateState, "resize", err)
	}
	c.log.Debug("resized",
		zap.Float64("width", size.Width),
		zap.Float64("height", size.Height),
		zap.Bool("recovered", recovered),
	)
	return nil
}

// ViewportMetricsChanged handles a device orientation change: the new
// size is recorded and the focus policy re-applied from the minimum
// scale.
func (c *Controller) ViewportMetricsChanged(size geom.Size) error {
	if c.current == nil {
		c.state.SetViewportSize(size)
		return nil
	}
	return c.show("viewport metrics changed", c.current, func(s *viewport.State) { s.SetViewportSize(size) })
}

// Pan scrolls by delta viewport points.
func (c *Controller) Pan(delta geom.Point) error {
	if !c.ScrollEnabled {
		return nil
	}
	if err := c.state.Pan(delta); err != nil {
		return c.fail(stateFailure(err, FrameAdjustmentFailed), "pan", err)
	}
	return nil
}

// EndPan reports the settled offset to the listener.
func (c *Controller) EndPan() {
	if c.state.HasImage() {
		c.listener.Scrolled(c.state.ContentOffset(), c.state.ZoomScale())
	}
}

// Pinch zooms by factor around focus, a viewport point.
func (c *Controller) Pinch(factor float64, focus geom.Point) error {
	if !c.PinchAllowed {
		return nil
	}
	if !c.state.HasImage() {
		return c.fail(FrameAdjustmentFailed, "pinch", nil)
	}
	if err := c.state.Pinch(factor, focus); err != nil {
		return c.fail(stateFailure(err, FrameAdjustmentFailed), "pinch", err)
	}
	return nil
}

// EndZoom reports the settled zoom to the listener.
func (c *Controller) EndZoom() {
	if c.state.HasImage() {
		c.listener.Zoomed(c.state.ContentOffset(), c.state.ZoomScale())
	}
}

// DoubleTap zooms in on p, or back out to the minimum scale.
func (c *Controller) DoubleTap(p geom.Point) error {
	if !c.DoubleTapToZoomAllowed {
		return nil
	}
	zoomedIn, err := c.state.DoubleTap(p)
	if err != nil {
		return c.fail(stateFailure(err, FrameAdjustmentFailed), "double tap", err)
	}
	c.log.Debug("double tap",
		zap.Bool("zoomed_in", zoomedIn),
		zap.Float64("scale", c.state.ZoomScale()),
	)
	c.listener.Zoomed(c.state.ContentOffset(), c.state.ZoomScale())
	return nil
}

func (c *Controller) crop() (image.Image, error) {
	if !c.configured {
		return nil, c.fail(NoImageConfigured, "crop", nil)
	}
	if c.current == nil {
		return nil, c.fail(ImageRetrievalFailed, "crop", nil)
	}
	if !c.state.HasImage() {
		return nil, c.fail(ViewUnavailable, "crop", nil)
	}

	size := geom.SizeOf(c.current)
	displayed := geom.DisplayRect(c.state.ImageFrame(), size)
	offset := c.state.ContentOffset()
	c.log.Debug("crop zone",
		zap.Any("zone", crop.Zone(offset, c.state.ViewportSize(), displayed, size)),
	)

	out, err := c.engine.Crop(offset, c.state.ViewportSize(), displayed, c.current)
	if err != nil {
		return nil, c.fail(ImageCroppingFailed, "crop", err)
	}
	return out, nil
}

// PerformCrop crops the visible window and delivers the result to the
// listener's CroppedImage.
func (c *Controller) PerformCrop() {
	if out, err := c.crop(); err == nil {
		c.listener.CroppedImage(out)
	}
}

// CropAndGetImage crops the visible window and returns it. Failures are
// also reported to the listener.
func (c *Controller) CropAndGetImage() (image.Image, error) {
	return c.crop()
}

// Rotate rotates by degrees around the image center, keeping the
// canvas size. With keepChanges the displayed image is rotated;
// otherwise the originally configured one is. The result is displayed
// with the focus policy re-applied.
func (c *Controller) Rotate(degrees float64, keepChanges bool) error {
	var src image.Image
	if keepChanges {
		if !c.configured {
			return c.fail(NoImageConfigured, "rotate", nil)
		}
		if c.current == nil {
			return c.fail(ImageRetrievalFailed, "rotate", nil)
		}
		src = c.current
	} else {
		if c.original == nil {
			return c.fail(NoOriginalImage, "rotate", nil)
		}
		src = c.original
	}

	out, err := c.engine.Rotate(src, degrees)
	if err != nil {
		return c.fail(ImageRetrievalFailed, "rotate", err)
	}
	c.log.Debug("rotated", zap.Float64("degrees", degrees), zap.Bool("keep_changes", keepChanges))
	return c.show("rotate", out, nil)
}

// OriginalImage returns the image passed to Configure.
func (c *Controller) OriginalImage() image.Image { return c.original }

// Image returns the displayed image, which may be a rotated derivative
// of the original.
func (c *Controller) Image() image.Image { return c.current }

// Identifier returns the tag passed to Configure.
func (c *Controller) Identifier() int { return c.state.Identifier() }

// Snapshot returns a copy of the viewport state.
func (c *Controller) Snapshot() viewport.Snapshot { return c.state.Snapshot() }

// ContentToView converts a point in image pixels to viewport
// coordinates.
func (c *Controller) ContentToView(p geom.Point) geom.Point { return c.state.ContentToView(p) }

// ViewToContent converts a viewport point to image pixels.
func (c *Controller) ViewToContent(p geom.Point) geom.Point { return c.state.ViewToContent(p) }

// ContentToViewMatrix maps image pixels to viewport coordinates.
func (c *Controller) ContentToViewMatrix() geom.Matrix { return c.state.ContentToViewMatrix() }
