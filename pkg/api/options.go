package api

import (
	"go.uber.org/zap"

	"imageview/pkg/crop"
	"imageview/pkg/geom"
	"imageview/pkg/viewport"
	"imageview/pkg/zoom"
)

// Options configures a Controller.
type Options struct {
	// Listener receives crop results, scroll and zoom notifications and
	// failures.
	// Default: none
	Listener Listener

	// Logger receives debug traces of state transitions.
	// Default: zap.NewNop()
	Logger *zap.Logger

	// Cropper cuts the crop zone out of the image.
	// Default: crop.ImagingCropper
	Cropper crop.Cropper

	// Rotator rotates images for Rotate.
	// Default: crop.BildRotator
	Rotator crop.Rotator

	// MaxScaleFactor is the maximum zoom relative to the fitted scale.
	// Default: 3
	MaxScaleFactor float64

	// DoubleTapZoomFactor is the zoom a double tap reaches, relative to
	// the minimum scale.
	// Default: 2
	DoubleTapZoomFactor float64

	// ContentMode is the initial content mode.
	// Default: zoom.WidthFill
	ContentMode zoom.ContentMode

	// ViewportSize is the initial viewport size, for hosts that know it
	// before the first layout.
	// Default: zero
	ViewportSize geom.Size
}

// DefaultOptions returns controller options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Logger:              zap.NewNop(),
		Cropper:             crop.ImagingCropper{},
		Rotator:             crop.BildRotator{},
		MaxScaleFactor:      zoom.DefaultMaxScaleFactor,
		DoubleTapZoomFactor: viewport.DefaultDoubleTapZoomFactor,
		ContentMode:         zoom.WidthFill,
	}
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// WithListener sets the listener.
func WithListener(l Listener) Option {
	return func(o *Options) {
		o.Listener = l
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithCropper replaces the crop primitive.
func WithCropper(c crop.Cropper) Option {
	return func(o *Options) {
		o.Cropper = c
	}
}

// WithRotator replaces the rotate primitive.
func WithRotator(r crop.Rotator) Option {
	return func(o *Options) {
		o.Rotator = r
	}
}

// WithMaxScaleFactor sets the maximum zoom relative to the fitted scale.
func WithMaxScaleFactor(f float64) Option {
	return func(o *Options) {
		o.MaxScaleFactor = f
	}
}

// WithDoubleTapZoomFactor sets the double tap zoom factor.
func WithDoubleTapZoomFactor(f float64) Option {
	return func(o *Options) {
		o.DoubleTapZoomFactor = f
	}
}

// WithContentMode sets the initial content mode.
func WithContentMode(m zoom.ContentMode) Option {
	return func(o *Options) {
		o.ContentMode = m
	}
}

// WithViewportSize sets the initial viewport size.
func WithViewportSize(s geom.Size) Option {
	return func(o *Options) {
		o.ViewportSize = s
	}
}

// NewOptions creates options from functional options.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	o.Apply(opts...)
	return o
}

// Apply applies functional options to existing options.
func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}
