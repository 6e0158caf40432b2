package api

import (
	"errors"
	"image"

	"imageview/pkg/geom"
)

// FailureKind classifies a failed controller operation.
type FailureKind int

const (
	// NoImageConfigured means the operation ran before any Configure.
	NoImageConfigured FailureKind = iota + 1
	// ImageCroppingFailed means the crop primitive rejected the zone.
	ImageCroppingFailed
	// FrameAdjustmentFailed means a gesture arrived with no image shown.
	FrameAdjustmentFailed
	// ViewUnavailable means the viewport was never laid out.
	ViewUnavailable
	// ImageRetrievalFailed means the controller holds no usable image.
	ImageRetrievalFailed
	// NoOriginalImage means a rotation from the original was requested
	// but no original was configured.
	NoOriginalImage
	// DegenerateState means scales could not be computed, usually for a
	// zero-sized viewport or image.
	DegenerateState
)

var kindNames = map[FailureKind]string{
	NoImageConfigured:     "no image configured",
	ImageCroppingFailed:   "image cropping failed",
	FrameAdjustmentFailed: "frame adjustment failed",
	ViewUnavailable:       "view unavailable",
	ImageRetrievalFailed:  "image retrieval failed",
	NoOriginalImage:       "no original image",
	DegenerateState:       "degenerate state",
}

func (k FailureKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown failure"
}

// Sentinel errors, one per FailureKind.
var (
	ErrNoImageConfigured     = errors.New(NoImageConfigured.String())
	ErrImageCroppingFailed   = errors.New(ImageCroppingFailed.String())
	ErrFrameAdjustmentFailed = errors.New(FrameAdjustmentFailed.String())
	ErrViewUnavailable       = errors.New(ViewUnavailable.String())
	ErrImageRetrievalFailed  = errors.New(ImageRetrievalFailed.String())
	ErrNoOriginalImage       = errors.New(NoOriginalImage.String())
	ErrDegenerateState       = errors.New(DegenerateState.String())
)

var kindErrors = map[FailureKind]error{
	NoImageConfigured:     ErrNoImageConfigured,
	ImageCroppingFailed:   ErrImageCroppingFailed,
	FrameAdjustmentFailed: ErrFrameAdjustmentFailed,
	ViewUnavailable:       ErrViewUnavailable,
	ImageRetrievalFailed:  ErrImageRetrievalFailed,
	NoOriginalImage:       ErrNoOriginalImage,
	DegenerateState:       ErrDegenerateState,
}

// Err returns the sentinel error for k.
func (k FailureKind) Err() error {
	return kindErrors[k]
}

// KindOf returns the kind of a controller error, or 0 if err does not
// wrap one of the sentinels.
func KindOf(err error) FailureKind {
	for k, sentinel := range kindErrors {
		if errors.Is(err, sentinel) {
			return k
		}
	}
	return 0
}

// Listener receives the outcome of controller operations. Methods are
// called synchronously from the goroutine driving the controller.
type Listener interface {
	CroppedImage(img image.Image)
	Scrolled(offset geom.Point, scale float64)
	Zoomed(offset geom.Point, scale float64)
	Failed(kind FailureKind, err error)
}

// ListenerFuncs adapts optional callbacks to a Listener. Nil fields are
// skipped.
type ListenerFuncs struct {
	OnCroppedImage func(img image.Image)
	OnScrolled     func(offset geom.Point, scale float64)
	OnZoomed       func(offset geom.Point, scale float64)
	OnFailed       func(kind FailureKind, err error)
}

func (f ListenerFuncs) CroppedImage(img image.Image) {
	if f.OnCroppedImage != nil {
		f.OnCroppedImage(img)
	}
}

func (f ListenerFuncs) Scrolled(offset geom.Point, scale float64) {
	if f.OnScrolled != nil {
		f.OnScrolled(offset, scale)
	}
}

func (f ListenerFuncs) Zoomed(offset geom.Point, scale float64) {
	if f.OnZoomed != nil {
		f.OnZoomed(offset, scale)
	}
}

func (f ListenerFuncs) Failed(kind FailureKind, err error) {
	if f.OnFailed != nil {
		f.OnFailed(kind, err)
	}
}

type nopListener struct{}

func (nopListener) CroppedImage(image.Image) {}
func (nopListener) Scrolled(geom.Point, float64) {}
func (nopListener) Zoomed(geom.Point, float64) {}
func (nopListener) Failed(FailureKind, error) {}
