package api

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"imageview/pkg/geom"
	"imageview/pkg/viewport"
	"imageview/pkg/zoom"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

type recorder struct {
	cropped  []image.Image
	scrolled int
	zoomed   int
	failures []FailureKind
}

func (r *recorder) CroppedImage(img image.Image) { r.cropped = append(r.cropped, img) }
func (r *recorder) Scrolled(geom.Point, float64) { r.scrolled++ }
func (r *recorder) Zoomed(geom.Point, float64) { r.zoomed++ }
func (r *recorder) Failed(kind FailureKind, _ error) { r.failures = append(r.failures, kind) }

func solid(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	return img
}

func newController(t *testing.T, size geom.Size, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithListener(rec), WithViewportSize(size)}, opts...)
	return New(opts...), rec
}

func TestConfigure(t *testing.T) {
	c, rec := newController(t, geom.Sz(300, 300), WithContentMode(zoom.AspectFit))
	img := solid(600, 900)

	if err := c.Configure(zoom.AspectFill, viewport.Beginning, img, 7); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	s := c.Snapshot()
	if diff := cmp.Diff(1.0/3*0.999, s.ZoomScale, approx); diff != "" {
		t.Errorf("zoom scale mismatch (-want +got):\n%s", diff)
	}
	if s.NextContentMode != zoom.AspectFill {
		t.Errorf("next content mode = %v, want %v", s.NextContentMode, zoom.AspectFill)
	}
	if c.Identifier() != 7 {
		t.Errorf("Identifier() = %d, want 7", c.Identifier())
	}
	if c.OriginalImage() != image.Image(img) || c.Image() != image.Image(img) {
		t.Errorf("configured image not retained")
	}
	if len(rec.failures) != 0 {
		t.Errorf("unexpected failures %v", rec.failures)
	}
}

func TestRefreshRunsOnce(t *testing.T) {
	c, _ := newController(t, geom.Size{})
	img := solid(100, 50)

	_ = c.Configure(zoom.AspectFit, viewport.Beginning, solid(10, 10), 1)
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, img, 2)
	if c.state.HasImage() {
		t.Fatalf("scales computed before layout")
	}

	c.state.SetViewportSize(geom.Sz(200, 200))
	if !c.Refresh() {
		t.Fatalf("Refresh() = false, want pending refresh")
	}
	if c.Refresh() {
		t.Errorf("second Refresh() = true, want no pending refresh")
	}
	if got, want := c.Snapshot().ImageSize, geom.Sz(100, 50); got != want {
		t.Errorf("image size = %v, want %v", got, want)
	}
	if c.Identifier() != 2 {
		t.Errorf("Identifier() = %d, want 2", c.Identifier())
	}
}

func TestConfigureNilImage(t *testing.T) {
	c, rec := newController(t, geom.Sz(100, 100))
	err := c.Configure(zoom.AspectFit, viewport.Beginning, nil, 0)
	if KindOf(err) != ImageRetrievalFailed {
		t.Errorf("Configure(nil) kind = %v, want %v", KindOf(err), ImageRetrievalFailed)
	}
	if _, err := c.CropAndGetImage(); KindOf(err) != NoImageConfigured {
		t.Errorf("crop kind = %v, want %v", KindOf(err), NoImageConfigured)
	}
	if diff := cmp.Diff([]FailureKind{ImageRetrievalFailed, NoImageConfigured}, rec.failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestOperationsBeforeConfigure(t *testing.T) {
	c, rec := newController(t, geom.Sz(100, 100))

	tests := []struct {
		name string
		run  func() error
		want FailureKind
	}{
		{"toggle", c.ToggleContentMode, NoImageConfigured},
		{"crop", func() error { _, err := c.CropAndGetImage(); return err }, NoImageConfigured},
		{"rotate keeping changes", func() error { return c.Rotate(90, true) }, NoImageConfigured},
		{"rotate from original", func() error { return c.Rotate(90, false) }, NoOriginalImage},
		{"update image", func() error { return c.UpdateImage(solid(4, 4)) }, NoImageConfigured},
		{"pinch", func() error { return c.Pinch(2, geom.Point{}) }, FrameAdjustmentFailed},
		{"double tap", func() error { return c.DoubleTap(geom.Point{}) }, FrameAdjustmentFailed},
		{"pan", func() error { return c.Pan(geom.Pt(1, 1)) }, FrameAdjustmentFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := c.Snapshot()
			err := tt.run()
			if got := KindOf(err); got != tt.want {
				t.Errorf("kind = %v, want %v (err %v)", got, tt.want, err)
			}
			if !errors.Is(err, tt.want.Err()) {
				t.Errorf("error %v does not wrap %v", err, tt.want.Err())
			}
			if diff := cmp.Diff(before, c.Snapshot(), cmp.AllowUnexported(zoom.ContentMode{})); diff != "" {
				t.Errorf("state changed on failure (-before +after):\n%s", diff)
			}
		})
	}
	if len(rec.failures) != len(tests) {
		t.Errorf("listener saw %d failures, want %d", len(rec.failures), len(tests))
	}
}

func TestCropViewUnavailable(t *testing.T) {
	c, rec := newController(t, geom.Size{})
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, solid(10, 10), 0)

	c.PerformCrop()
	if diff := cmp.Diff([]FailureKind{ViewUnavailable}, rec.failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
	if len(rec.cropped) != 0 {
		t.Errorf("cropped image delivered on failure")
	}
}

func TestPerformCrop(t *testing.T) {
	c, rec := newController(t, geom.Sz(100, 100), WithContentMode(zoom.AspectFill))
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, solid(200, 400), 0)

	// At scale 0.5 the content is 100x200 points and a 50 point offset
	// starts at image row 100.
	if err := c.SetContentOffset(geom.Pt(0, 50), false, 0.5); err != nil {
		t.Fatalf("SetContentOffset() error = %v", err)
	}
	c.PerformCrop()
	if len(rec.cropped) != 1 {
		t.Fatalf("got %d cropped images, want 1 (failures %v)", len(rec.cropped), rec.failures)
	}
	out := rec.cropped[0]
	if got, want := out.Bounds().Size(), image.Pt(200, 200); got != want {
		t.Errorf("cropped size = %v, want %v", got, want)
	}
	_, g, _, _ := out.At(out.Bounds().Min.X, out.Bounds().Min.Y).RGBA()
	if g>>8 != 100 {
		t.Errorf("crop starts at row %d, want 100", g>>8)
	}
	if rec.scrolled != 1 {
		t.Errorf("scrolled = %d, want 1", rec.scrolled)
	}
}

func TestCropCenteredImageReturnsWholeImage(t *testing.T) {
	c, _ := newController(t, geom.Sz(300, 100), WithContentMode(zoom.AspectFit))
	img := solid(40, 20)
	_ = c.Configure(zoom.AspectFill, viewport.Beginning, img, 0)

	out, err := c.CropAndGetImage()
	if err != nil {
		t.Fatalf("CropAndGetImage() error = %v", err)
	}
	if got, want := out.Bounds().Size(), img.Bounds().Size(); got != want {
		t.Errorf("cropped size = %v, want %v", got, want)
	}
}

type rejectingCropper struct{}

func (rejectingCropper) Crop(image.Image, image.Rectangle) (image.Image, error) {
	return nil, nil
}

func TestCropPrimitiveRejects(t *testing.T) {
	c, rec := newController(t, geom.Sz(100, 100), WithCropper(rejectingCropper{}))
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, solid(50, 50), 0)

	if _, err := c.CropAndGetImage(); KindOf(err) != ImageCroppingFailed {
		t.Errorf("kind = %v, want %v", KindOf(err), ImageCroppingFailed)
	}
	if diff := cmp.Diff([]FailureKind{ImageCroppingFailed}, rec.failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleContentMode(t *testing.T) {
	c, _ := newController(t, geom.Sz(500, 500))
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, solid(1000, 500), 0)

	want := []zoom.ContentMode{zoom.AspectFit, zoom.AspectFill, zoom.AspectFit, zoom.AspectFill}
	for i, w := range want {
		if err := c.ToggleContentMode(); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if got := c.Snapshot().ContentMode; got != w {
			t.Errorf("toggle %d: mode = %v, want %v", i, got, w)
		}
	}
}

func TestGesturesNotify(t *testing.T) {
	c, rec := newController(t, geom.Sz(100, 100), WithContentMode(zoom.AspectFit))
	_ = c.Configure(zoom.AspectFill, viewport.Beginning, solid(100, 100), 0)
	minScale := c.Snapshot().MinZoomScale

	if err := c.DoubleTap(geom.Pt(50, 50)); err != nil {
		t.Fatalf("DoubleTap() error = %v", err)
	}
	if diff := cmp.Diff(minScale*2, c.Snapshot().ZoomScale, approx); diff != "" {
		t.Errorf("zoom after double tap mismatch (-want +got):\n%s", diff)
	}

	if err := c.Pan(geom.Pt(-10, -20)); err != nil {
		t.Fatalf("Pan() error = %v", err)
	}
	c.EndPan()

	if err := c.Pinch(0.5, geom.Pt(50, 50)); err != nil {
		t.Fatalf("Pinch() error = %v", err)
	}
	c.EndZoom()

	if rec.zoomed != 2 || rec.scrolled != 1 {
		t.Errorf("zoomed = %d, scrolled = %d, want 2 and 1", rec.zoomed, rec.scrolled)
	}
}

func TestGesturesDisabled(t *testing.T) {
	c, rec := newController(t, geom.Sz(100, 100))
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, solid(100, 300), 0)
	c.ScrollEnabled = false
	c.PinchAllowed = false
	c.DoubleTapToZoomAllowed = false

	before := c.Snapshot()
	_ = c.Pan(geom.Pt(0, -50))
	_ = c.Pinch(2, geom.Point{})
	_ = c.DoubleTap(geom.Point{})
	if diff := cmp.Diff(before, c.Snapshot(), cmp.AllowUnexported(zoom.ContentMode{})); diff != "" {
		t.Errorf("disabled gestures changed state (-before +after):\n%s", diff)
	}
	if rec.zoomed != 0 || len(rec.failures) != 0 {
		t.Errorf("disabled gestures notified the listener")
	}
}

func TestRotate(t *testing.T) {
	c, _ := newController(t, geom.Sz(100, 100))
	img := solid(40, 20)
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, img, 0)

	if err := c.Rotate(0, true); err != nil {
		t.Fatalf("Rotate(0) error = %v", err)
	}
	if c.Image() != image.Image(img) {
		t.Errorf("Rotate(0) replaced the image")
	}

	if err := c.Rotate(90, true); err != nil {
		t.Fatalf("Rotate(90) error = %v", err)
	}
	rotated := c.Image()
	if rotated == image.Image(img) {
		t.Fatalf("Rotate(90) kept the original image")
	}
	if got, want := rotated.Bounds().Size(), img.Bounds().Size(); got != want {
		t.Errorf("rotated size = %v, want %v", got, want)
	}
	if c.OriginalImage() != image.Image(img) {
		t.Errorf("Rotate changed the original image")
	}

	if err := c.Rotate(0, false); err != nil {
		t.Fatalf("Rotate(0, false) error = %v", err)
	}
	if c.Image() != image.Image(img) {
		t.Errorf("rotating from the original did not discard changes")
	}
}

func TestUpdateImageKeepsScale(t *testing.T) {
	c, _ := newController(t, geom.Sz(100, 100), WithContentMode(zoom.AspectFit))
	_ = c.Configure(zoom.AspectFill, viewport.Beginning, solid(200, 200), 3)
	_ = c.SetContentOffset(geom.Pt(40, 40), false, 1)

	if err := c.UpdateImage(solid(200, 200)); err != nil {
		t.Fatalf("UpdateImage() error = %v", err)
	}
	s := c.Snapshot()
	if diff := cmp.Diff(1.0, s.ZoomScale, approx); diff != "" {
		t.Errorf("scale mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Pt(40, 40), s.ContentOffset, approx); diff != "" {
		t.Errorf("offset mismatch (-want +got):\n%s", diff)
	}
	if c.Identifier() != 3 {
		t.Errorf("Identifier() = %d, want 3", c.Identifier())
	}

	if err := c.UpdateImageView(solid(200, 200)); err != nil {
		t.Fatalf("UpdateImageView() error = %v", err)
	}
	if got := c.Snapshot().ContentOffset; got != (geom.Point{}) {
		t.Errorf("offset after UpdateImageView = %v, want origin", got)
	}
}

func TestResizeViewport(t *testing.T) {
	c, _ := newController(t, geom.Size{})
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, solid(400, 200), 0)

	if err := c.ResizeViewport(geom.Sz(200, 200)); err != nil {
		t.Fatalf("first resize: %v", err)
	}
	if !c.state.HasImage() {
		t.Fatalf("first layout did not configure the image")
	}
	_ = c.SetContentOffset(geom.Pt(100, 0), false, 0.7)

	if err := c.ResizeViewport(geom.Sz(100, 100)); err != nil {
		t.Fatalf("second resize: %v", err)
	}
	if err := c.ResizeViewport(geom.Sz(200, 200)); err != nil {
		t.Fatalf("third resize: %v", err)
	}
	if diff := cmp.Diff(0.7, c.Snapshot().ZoomScale, approx); diff != "" {
		t.Errorf("scale after round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestViewportMetricsChanged(t *testing.T) {
	c, _ := newController(t, geom.Sz(100, 200), WithContentMode(zoom.AspectFit))
	_ = c.Configure(zoom.AspectFill, viewport.Center, solid(100, 100), 0)
	_ = c.SetContentOffset(geom.Point{}, false, 2)

	if err := c.ViewportMetricsChanged(geom.Sz(200, 100)); err != nil {
		t.Fatalf("ViewportMetricsChanged() error = %v", err)
	}
	s := c.Snapshot()
	if diff := cmp.Diff(s.MinZoomScale, s.ZoomScale, approx); diff != "" {
		t.Errorf("scale not reset to minimum (-want +got):\n%s", diff)
	}
	if got, want := s.ViewportSize, geom.Sz(200, 100); got != want {
		t.Errorf("viewport size = %v, want %v", got, want)
	}
}

func TestDegenerateReported(t *testing.T) {
	c, rec := newController(t, geom.Sz(100, 100), WithContentMode(zoom.CustomOffset(0)))
	err := c.Configure(zoom.AspectFit, viewport.Beginning, solid(10, 10), 0)
	if KindOf(err) != DegenerateState {
		t.Errorf("kind = %v, want %v", KindOf(err), DegenerateState)
	}
	if diff := cmp.Diff([]FailureKind{DegenerateState}, rec.failures); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
}

func TestListenerFuncs(t *testing.T) {
	var got FailureKind
	l := ListenerFuncs{OnFailed: func(k FailureKind, _ error) { got = k }}
	l.CroppedImage(nil)
	l.Scrolled(geom.Point{}, 1)
	l.Zoomed(geom.Point{}, 1)
	l.Failed(ViewUnavailable, ErrViewUnavailable)
	if got != ViewUnavailable {
		t.Errorf("OnFailed got %v, want %v", got, ViewUnavailable)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(errors.New("other")) != 0 {
		t.Errorf("KindOf(unrelated) != 0")
	}
	for k := NoImageConfigured; k <= DegenerateState; k++ {
		if got := KindOf(k.Err()); got != k {
			t.Errorf("KindOf(%v) = %v", k, got)
		}
	}
}

// controllerState is what a failed operation must leave untouched.
type controllerState struct {
	snapshot          viewport.Snapshot
	image, original   image.Image
	configured, armed bool
}

func stateOf(c *Controller) controllerState {
	return controllerState{c.Snapshot(), c.Image(), c.OriginalImage(), c.configured, c.pending}
}

func sameState(t *testing.T, before, after controllerState) {
	t.Helper()
	if diff := cmp.Diff(before.snapshot, after.snapshot, cmp.AllowUnexported(zoom.ContentMode{})); diff != "" {
		t.Errorf("state changed on failure (-before +after):\n%s", diff)
	}
	if after.image != before.image || after.original != before.original {
		t.Errorf("images changed on failure")
	}
	if after.configured != before.configured || after.armed != before.armed {
		t.Errorf("configured/pending changed on failure: %v/%v -> %v/%v",
			before.configured, before.armed, after.configured, after.armed)
	}
}

func TestFailedUpdatesLeaveControllerUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(c *Controller)
		run     func(c *Controller) error
		want    FailureKind
	}{
		{
			name: "configure empty image",
			run: func(c *Controller) error {
				return c.Configure(zoom.HeightFill, viewport.Center, solid(0, 0), 9)
			},
			want: DegenerateState,
		},
		{
			name: "configure nil image",
			run: func(c *Controller) error {
				return c.Configure(zoom.HeightFill, viewport.Center, nil, 9)
			},
			want: ImageRetrievalFailed,
		},
		{
			name:    "update image on empty viewport",
			prepare: func(c *Controller) { _ = c.ResizeViewport(geom.Size{}) },
			run:     func(c *Controller) error { return c.UpdateImage(solid(50, 50)) },
			want:    DegenerateState,
		},
		{
			name: "update image empty",
			run:  func(c *Controller) error { return c.UpdateImage(solid(0, 0)) },
			want: DegenerateState,
		},
		{
			name: "update image view empty",
			run:  func(c *Controller) error { return c.UpdateImageView(solid(0, 0)) },
			want: DegenerateState,
		},
		{
			name:    "metrics changed into a degenerate mode",
			prepare: func(c *Controller) { c.state.SetContentMode(zoom.CustomOffset(0)) },
			run:     func(c *Controller) error { return c.ViewportMetricsChanged(geom.Sz(50, 50)) },
			want:    DegenerateState,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newController(t, geom.Sz(300, 300))
			if err := c.Configure(zoom.AspectFit, viewport.Beginning, solid(600, 900), 7); err != nil {
				t.Fatal(err)
			}
			c.Refresh()
			if tt.prepare != nil {
				tt.prepare(c)
			}

			before := stateOf(c)
			err := tt.run(c)
			if got := KindOf(err); got != tt.want {
				t.Errorf("kind = %v, want %v (err %v)", got, tt.want, err)
			}
			if diff := cmp.Diff([]FailureKind{tt.want}, rec.failures); diff != "" {
				t.Errorf("failures mismatch (-want +got):\n%s", diff)
			}
			sameState(t, before, stateOf(c))
		})
	}
}

func TestConfigureBeforeLayoutDropsOldRange(t *testing.T) {
	c, _ := newController(t, geom.Sz(300, 300))
	_ = c.Configure(zoom.AspectFit, viewport.Beginning, solid(600, 900), 7)
	_ = c.ResizeViewport(geom.Size{})

	img := solid(100, 50)
	if err := c.Configure(zoom.AspectFit, viewport.Beginning, img, 8); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if c.state.HasImage() {
		t.Fatalf("old zoom range survived a configure before layout")
	}

	if err := c.ResizeViewport(geom.Sz(200, 200)); err != nil {
		t.Fatalf("ResizeViewport() error = %v", err)
	}
	s := c.Snapshot()
	if got, want := s.ImageSize, geom.Sz(100, 50); got != want {
		t.Errorf("image size = %v, want %v", got, want)
	}
	// Width fill of 100 pixels into 200 points.
	if diff := cmp.Diff(2*0.999, s.ZoomScale, approx); diff != "" {
		t.Errorf("zoom scale mismatch (-want +got):\n%s", diff)
	}
	if c.Image() != image.Image(img) || s.Identifier != 8 {
		t.Errorf("controller shows id %d, want the new image with id 8", s.Identifier)
	}
}
