package gui

import (
	"fmt"
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"imageview/pkg/viewport"
	"imageview/pkg/zoom"
)

// nextModes are the content modes offered as toggle targets.
var nextModes = []zoom.ContentMode{
	zoom.AspectFit,
	zoom.AspectFill,
	zoom.WidthFill,
	zoom.HeightFill,
	zoom.CustomOffset(2.0 / 3),
}

// Toolbar provides file, view and edit controls.
type Toolbar struct {
	container *fyne.Container

	// Callbacks
	OnOpen        func()
	OnToggle      func()
	OnNextMode    func(zoom.ContentMode)
	OnZoomIn      func()
	OnZoomOut     func()
	OnRotateLeft  func()
	OnRotateRight func()
	OnCrop        func()
	OnReset       func()

	// Components
	modeSelect *widget.Select
	editBtns   []*widget.Button
}

// NewToolbar creates a new toolbar.
func NewToolbar() *Toolbar {
	t := &Toolbar{}
	t.build()
	return t
}

func run(f func()) {
	if f != nil {
		f()
	}
}

func (t *Toolbar) build() {
	openBtn := widget.NewButtonWithIcon("Open", theme.FolderOpenIcon(), func() { run(t.OnOpen) })

	names := make([]string, len(nextModes))
	for i, m := range nextModes {
		names[i] = m.String()
	}
	t.modeSelect = widget.NewSelect(names, func(s string) {
		m, err := zoom.ParseContentMode(s)
		if err == nil && t.OnNextMode != nil {
			t.OnNextMode(m)
		}
	})
	t.modeSelect.PlaceHolder = "Next mode"

	toggleBtn := widget.NewButtonWithIcon("Toggle", theme.ViewFullScreenIcon(), func() { run(t.OnToggle) })
	zoomOutBtn := widget.NewButtonWithIcon("", theme.ZoomOutIcon(), func() { run(t.OnZoomOut) })
	zoomInBtn := widget.NewButtonWithIcon("", theme.ZoomInIcon(), func() { run(t.OnZoomIn) })
	rotateLeftBtn := widget.NewButtonWithIcon("", theme.MediaReplayIcon(), func() { run(t.OnRotateLeft) })
	rotateRightBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() { run(t.OnRotateRight) })
	cropBtn := widget.NewButtonWithIcon("Crop", theme.ContentCutIcon(), func() { run(t.OnCrop) })
	resetBtn := widget.NewButtonWithIcon("Reset", theme.ViewRestoreIcon(), func() { run(t.OnReset) })

	t.editBtns = []*widget.Button{toggleBtn, zoomOutBtn, zoomInBtn, rotateLeftBtn, rotateRightBtn, cropBtn, resetBtn}

	t.container = container.NewHBox(
		openBtn,
		widget.NewSeparator(),
		t.modeSelect,
		toggleBtn,
		widget.NewSeparator(),
		zoomOutBtn,
		zoomInBtn,
		widget.NewSeparator(),
		rotateLeftBtn,
		rotateRightBtn,
		cropBtn,
		resetBtn,
	)
	t.Disable()
}

// Container returns the toolbar container.
func (t *Toolbar) Container() *fyne.Container {
	return t.container
}

// SetNextMode shows m as the selected toggle target without firing
// OnNextMode.
func (t *Toolbar) SetNextMode(m zoom.ContentMode) {
	cb := t.modeSelect.OnChanged
	t.modeSelect.OnChanged = nil
	t.modeSelect.SetSelected(m.String())
	t.modeSelect.OnChanged = cb
}

// Enable enables the controls that need an image.
func (t *Toolbar) Enable() {
	for _, b := range t.editBtns {
		b.Enable()
	}
	t.modeSelect.Enable()
}

// Disable disables the controls that need an image.
func (t *Toolbar) Disable() {
	for _, b := range t.editBtns {
		b.Disable()
	}
	t.modeSelect.Disable()
}

// StatusBar provides status information.
type StatusBar struct {
	container *fyne.Container
	label     *widget.Label
	modeLabel *widget.Label
	zoomLabel *widget.Label
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	s := &StatusBar{
		label:     widget.NewLabel("Ready"),
		modeLabel: widget.NewLabel(""),
		zoomLabel: widget.NewLabel("100%"),
	}

	s.container = container.NewHBox(
		s.label,
		widget.NewSeparator(),
		s.modeLabel,
		widget.NewSeparator(),
		s.zoomLabel,
	)

	return s
}

// Container returns the status bar container.
func (s *StatusBar) Container() *fyne.Container {
	return s.container
}

// SetStatus sets the status message.
func (s *StatusBar) SetStatus(msg string) {
	s.label.SetText(msg)
}

// SetZoom sets the zoom percentage display.
func (s *StatusBar) SetZoom(percent int) {
	s.zoomLabel.SetText(strconv.Itoa(percent) + "%")
}

// Show updates the mode and zoom display from a viewport snapshot.
func (s *StatusBar) Show(snap viewport.Snapshot) {
	s.modeLabel.SetText(fmt.Sprintf("%s → %s", snap.ContentMode, snap.NextContentMode))
	s.SetZoom(int(math.Round(snap.ZoomScale * 100)))
}
