package gui

import (
	"image"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"imageview/pkg/api"
	"imageview/pkg/geom"
	"imageview/pkg/render"
	"imageview/pkg/viewport"
	"imageview/pkg/zoom"
)

const (
	// scrollZoomStep is the zoom change per scrolled point.
	scrollZoomStep = 0.01
	// buttonZoomFactor is the zoom change of ZoomIn and ZoomOut.
	buttonZoomFactor = 1.25
)

// ImageView is a widget showing one image through an interactive
// viewport. Dragging pans, scrolling zooms about the pointer and a double
// tap zooms in or back out.
type ImageView struct {
	widget.BaseWidget

	ctrl       *api.Controller
	raster     *canvas.Raster
	background color.Color

	// OnChanged is called after every change of the viewport state.
	OnChanged func(viewport.Snapshot)
}

// NewImageView creates an image view driving a controller built from
// opts.
func NewImageView(bg color.Color, opts ...api.Option) *ImageView {
	v := &ImageView{
		ctrl:       api.New(opts...),
		background: bg,
	}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

// Controller returns the controller behind the view.
func (v *ImageView) Controller() *api.Controller {
	return v.ctrl
}

// SetImage shows img. The view is configured for the current size right
// away and again once the next layout pass has settled.
func (v *ImageView) SetImage(img image.Image, next zoom.ContentMode, focus viewport.FocusOffset, identifier int) error {
	err := v.ctrl.Configure(next, focus, img, identifier)
	if size := v.Size(); size.Width > 0 && size.Height > 0 {
		v.layoutViewport(size)
	}
	v.changed()
	return err
}

// layoutViewport hands the laid out size to the controller and runs a
// pending refresh.
func (v *ImageView) layoutViewport(size fyne.Size) {
	_ = v.ctrl.ResizeViewport(geom.Sz(float64(size.Width), float64(size.Height)))
	v.ctrl.Refresh()
}

func (v *ImageView) changed() {
	v.Refresh()
	if v.OnChanged != nil {
		v.OnChanged(v.ctrl.Snapshot())
	}
}

// ToggleContentMode switches between the next content mode and aspect
// fill.
func (v *ImageView) ToggleContentMode() error {
	err := v.ctrl.ToggleContentMode()
	v.changed()
	return err
}

// SetNextContentMode changes the mode ToggleContentMode switches to.
// The displayed image is configured again with the new mode.
func (v *ImageView) SetNextContentMode(next zoom.ContentMode) error {
	s := v.ctrl.Snapshot()
	img := v.ctrl.Image()
	if img == nil {
		return nil
	}
	return v.SetImage(img, next, s.FocusOffset, s.Identifier)
}

// Rotate rotates the displayed image by degrees.
func (v *ImageView) Rotate(degrees float64) error {
	err := v.ctrl.Rotate(degrees, true)
	v.changed()
	return err
}

// Reset discards rotations and shows the original image again.
func (v *ImageView) Reset() error {
	err := v.ctrl.Rotate(0, false)
	v.changed()
	return err
}

// Crop returns what the view currently shows, at image resolution.
func (v *ImageView) Crop() (image.Image, error) {
	return v.ctrl.CropAndGetImage()
}

// ZoomIn zooms in about the center of the view.
func (v *ImageView) ZoomIn() {
	v.zoomBy(buttonZoomFactor, v.center())
}

// ZoomOut zooms out about the center of the view.
func (v *ImageView) ZoomOut() {
	v.zoomBy(1/buttonZoomFactor, v.center())
}

func (v *ImageView) center() geom.Point {
	size := v.Size()
	return geom.Pt(float64(size.Width)/2, float64(size.Height)/2)
}

func (v *ImageView) zoomBy(factor float64, focus geom.Point) {
	if err := v.ctrl.Pinch(factor, focus); err != nil {
		return
	}
	v.ctrl.EndZoom()
	v.changed()
}

// CreateRenderer creates the renderer for this widget.
func (v *ImageView) CreateRenderer() fyne.WidgetRenderer {
	return &imageViewRenderer{view: v}
}

// Dragged handles drag events for panning.
func (v *ImageView) Dragged(event *fyne.DragEvent) {
	if err := v.ctrl.Pan(geom.Pt(float64(event.Dragged.DX), float64(event.Dragged.DY))); err != nil {
		return
	}
	v.changed()
}

// DragEnd handles the end of a drag.
func (v *ImageView) DragEnd() {
	v.ctrl.EndPan()
}

// Scrolled handles scroll events for zooming toward the pointer.
func (v *ImageView) Scrolled(event *fyne.ScrollEvent) {
	factor := math.Max(0.1, 1+float64(event.Scrolled.DY)*scrollZoomStep)
	v.zoomBy(factor, geom.Pt(float64(event.Position.X), float64(event.Position.Y)))
}

// DoubleTapped zooms in on the tapped point or back out to the minimum.
func (v *ImageView) DoubleTapped(event *fyne.PointEvent) {
	if err := v.ctrl.DoubleTap(geom.Pt(float64(event.Position.X), float64(event.Position.Y))); err != nil {
		return
	}
	v.changed()
}

// draw renders the visible window at the raster's pixel size.
func (v *ImageView) draw(w, h int) image.Image {
	out, err := render.SnapshotAt(v.ctrl.Image(), v.ctrl.Snapshot(), v.background, w, h)
	if err != nil {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return out
}

// imageViewRenderer renders the image view.
type imageViewRenderer struct {
	view *ImageView
}

func (r *imageViewRenderer) Layout(size fyne.Size) {
	r.view.layoutViewport(size)
	r.view.raster.Move(fyne.NewPos(0, 0))
	r.view.raster.Resize(size)
}

func (r *imageViewRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *imageViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.raster}
}

func (r *imageViewRenderer) Refresh() {
	r.view.raster.Refresh()
}

func (r *imageViewRenderer) Destroy() {}
