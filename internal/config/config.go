// Package config loads viewer presets from YAML files.
//
// A preset holds the settings a host would otherwise pass as flags:
//
//	viewport:
//	  width: 390
//	  height: 844
//	content_mode: widthFill
//	next_content_mode: aspectFit
//	focus_offset: beginning
//	max_scale_factor: 3
//	double_tap_zoom_factor: 2
//	background: "#000000"
//	log_level: info
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"imageview/pkg/api"
	"imageview/pkg/geom"
	"imageview/pkg/render"
	"imageview/pkg/viewport"
	"imageview/pkg/zoom"
)

// Viewport is the viewport size in points.
type Viewport struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Preset is a named set of viewer settings.
type Preset struct {
	Viewport            Viewport `yaml:"viewport"`
	ContentMode         string   `yaml:"content_mode"`
	NextContentMode     string   `yaml:"next_content_mode"`
	FocusOffset         string   `yaml:"focus_offset"`
	MaxScaleFactor      float64  `yaml:"max_scale_factor"`
	DoubleTapZoomFactor float64  `yaml:"double_tap_zoom_factor"`
	Background          string   `yaml:"background"`
	LogLevel            string   `yaml:"log_level"`
}

// Default returns the preset matching the controller defaults.
func Default() Preset {
	return Preset{
		Viewport:            Viewport{Width: 800, Height: 600},
		ContentMode:         zoom.WidthFill.String(),
		NextContentMode:     zoom.AspectFit.String(),
		FocusOffset:         viewport.Beginning.String(),
		MaxScaleFactor:      zoom.DefaultMaxScaleFactor,
		DoubleTapZoomFactor: viewport.DefaultDoubleTapZoomFactor,
		Background:          "#000000",
		LogLevel:            "info",
	}
}

// Load reads a preset from path. Fields missing from the file keep
// their defaults.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to read preset: %w", err)
	}
	return Parse(data)
}

// Parse decodes a preset from YAML and validates it.
func Parse(data []byte) (Preset, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("failed to parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Marshal encodes the preset as YAML.
func (p Preset) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Validate checks every field parses and every number is in range.
func (p Preset) Validate() error {
	var errs []error
	if p.Viewport.Width < 0 || p.Viewport.Height < 0 {
		errs = append(errs, fmt.Errorf("viewport size %vx%v is negative", p.Viewport.Width, p.Viewport.Height))
	}
	if _, err := zoom.ParseContentMode(p.ContentMode); err != nil {
		errs = append(errs, fmt.Errorf("content_mode: %w", err))
	}
	if _, err := zoom.ParseContentMode(p.NextContentMode); err != nil {
		errs = append(errs, fmt.Errorf("next_content_mode: %w", err))
	}
	if _, err := viewport.ParseFocusOffset(p.FocusOffset); err != nil {
		errs = append(errs, fmt.Errorf("focus_offset: %w", err))
	}
	if !(p.MaxScaleFactor > 0) {
		errs = append(errs, fmt.Errorf("max_scale_factor %v must be positive", p.MaxScaleFactor))
	}
	if !(p.DoubleTapZoomFactor > 0) {
		errs = append(errs, fmt.Errorf("double_tap_zoom_factor %v must be positive", p.DoubleTapZoomFactor))
	}
	if _, err := render.ParseHexColor(p.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if _, err := zapcore.ParseLevel(p.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid preset: %w", errors.Join(errs...))
	}
	return nil
}

// ViewportSize returns the viewport as a geom.Size.
func (p Preset) ViewportSize() geom.Size {
	return geom.Sz(p.Viewport.Width, p.Viewport.Height)
}

// Modes returns the parsed content mode, next content mode and focus
// offset. The preset must be valid.
func (p Preset) Modes() (mode, next zoom.ContentMode, focus viewport.FocusOffset, err error) {
	if mode, err = zoom.ParseContentMode(p.ContentMode); err != nil {
		return
	}
	if next, err = zoom.ParseContentMode(p.NextContentMode); err != nil {
		return
	}
	focus, err = viewport.ParseFocusOffset(p.FocusOffset)
	return
}

// BackgroundColor returns the parsed background color, black if it does
// not parse.
func (p Preset) BackgroundColor() color.Color {
	c, err := render.ParseHexColor(p.Background)
	if err != nil {
		return color.Black
	}
	return c
}

// Level returns the parsed log level, info if it does not parse.
func (p Preset) Level() zapcore.Level {
	l, err := zapcore.ParseLevel(p.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// ControllerOptions converts the preset into controller options.
func (p Preset) ControllerOptions() ([]api.Option, error) {
	mode, _, _, err := p.Modes()
	if err != nil {
		return nil, err
	}
	return []api.Option{
		api.WithContentMode(mode),
		api.WithMaxScaleFactor(p.MaxScaleFactor),
		api.WithDoubleTapZoomFactor(p.DoubleTapZoomFactor),
		api.WithViewportSize(p.ViewportSize()),
	}, nil
}
