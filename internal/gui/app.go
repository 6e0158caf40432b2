// Package gui provides a native desktop image viewer using Fyne.
package gui

import (
	"fmt"
	"image"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"imageview/internal/config"
	"imageview/pkg/api"
	"imageview/pkg/imageio"
	"imageview/pkg/viewport"
	"imageview/pkg/zoom"
)

// App represents the image viewer application.
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	log        *zap.Logger

	next  zoom.ContentMode
	focus viewport.FocusOffset
	// loaded counts opened files and tags each configuration.
	loaded int

	// UI components
	view      *ImageView
	toolbar   *Toolbar
	statusBar *StatusBar
}

// NewApp creates a new image viewer application from a preset.
func NewApp(preset config.Preset, log *zap.Logger) (*App, error) {
	_, next, focus, err := preset.Modes()
	if err != nil {
		return nil, err
	}
	opts, err := preset.ControllerOptions()
	if err != nil {
		return nil, err
	}

	a := &App{
		fyneApp: app.New(),
		log:     log,
		next:    next,
		focus:   focus,
	}

	a.fyneApp.Settings().SetTheme(theme.DarkTheme())
	a.mainWindow = a.fyneApp.NewWindow("ImageView")
	a.mainWindow.Resize(fyne.NewSize(float32(preset.Viewport.Width), float32(preset.Viewport.Height)))

	opts = append(opts,
		api.WithLogger(log),
		api.WithListener(api.ListenerFuncs{OnFailed: a.failed}),
	)
	a.view = NewImageView(preset.BackgroundColor(), opts...)
	return a, nil
}

// Run starts the application.
func (a *App) Run() {
	a.buildUI()
	a.mainWindow.ShowAndRun()
}

// RunWithFile starts the application with a file already loaded. The
// view is configured before the window is laid out and settles on the
// first layout pass.
func (a *App) RunWithFile(path string) {
	a.buildUI()
	if err := a.loadFile(path); err != nil {
		dialog.ShowError(err, a.mainWindow)
	}
	a.mainWindow.ShowAndRun()
}

// buildUI constructs the user interface.
func (a *App) buildUI() {
	a.toolbar = NewToolbar()
	a.toolbar.OnOpen = a.openFile
	a.toolbar.OnToggle = func() { a.report(a.view.ToggleContentMode()) }
	a.toolbar.OnNextMode = a.setNextMode
	a.toolbar.OnZoomIn = a.view.ZoomIn
	a.toolbar.OnZoomOut = a.view.ZoomOut
	a.toolbar.OnRotateLeft = func() { a.report(a.view.Rotate(-90)) }
	a.toolbar.OnRotateRight = func() { a.report(a.view.Rotate(90)) }
	a.toolbar.OnCrop = a.crop
	a.toolbar.OnReset = func() { a.report(a.view.Reset()) }
	a.toolbar.SetNextMode(a.next)

	a.statusBar = NewStatusBar()
	a.view.OnChanged = a.statusBar.Show

	content := container.NewBorder(
		container.NewPadded(a.toolbar.Container()),  // Top
		a.statusBar.Container(),                     // Bottom
		nil,                                         // Left
		nil,                                         // Right
		a.view,                                      // Center
	)

	a.mainWindow.SetContent(content)
	a.mainWindow.Canvas().SetOnTypedKey(a.handleKey)
}

// handleKey handles keyboard shortcuts.
func (a *App) handleKey(key *fyne.KeyEvent) {
	if a.view.Controller().Image() == nil {
		return
	}
	switch key.Name {
	case fyne.KeyPlus, fyne.KeyEqual:
		a.view.ZoomIn()
	case fyne.KeyMinus:
		a.view.ZoomOut()
	case fyne.KeyT:
		a.report(a.view.ToggleContentMode())
	case fyne.KeyLeft:
		a.report(a.view.Rotate(-90))
	case fyne.KeyRight, fyne.KeyR:
		a.report(a.view.Rotate(90))
	case fyne.KeyC:
		a.crop()
	case fyne.KeyEscape:
		a.report(a.view.Reset())
	}
}

// report shows an error in the status bar. The listener has already
// logged it.
func (a *App) report(err error) {
	if err != nil {
		a.statusBar.SetStatus(err.Error())
	}
}

// failed receives controller failures.
func (a *App) failed(kind api.FailureKind, err error) {
	a.log.Warn("viewer operation failed", zap.Stringer("kind", kind), zap.Error(err))
}

// openFile shows a file dialog and loads the selected image.
func (a *App) openFile() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if reader == nil {
			return // Cancelled
		}
		defer reader.Close()

		if err := a.loadFile(reader.URI().Path()); err != nil {
			dialog.ShowError(err, a.mainWindow)
		}
	}, a.mainWindow)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}))
	d.Show()
}

// loadFile loads an image file into the view.
func (a *App) loadFile(path string) error {
	img, err := imageio.Load(path)
	if err != nil {
		return err
	}

	a.loaded++
	if err := a.view.SetImage(img, a.next, a.focus, a.loaded); err != nil {
		return fmt.Errorf("failed to show image: %w", err)
	}
	a.log.Info("opened image",
		zap.String("path", path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)

	a.mainWindow.SetTitle(fmt.Sprintf("ImageView - %s", filepath.Base(path)))
	a.statusBar.SetStatus(fmt.Sprintf("%d × %d", img.Bounds().Dx(), img.Bounds().Dy()))
	a.toolbar.Enable()
	return nil
}

// setNextMode changes the toggle target and reconfigures the view.
func (a *App) setNextMode(m zoom.ContentMode) {
	a.next = m
	a.report(a.view.SetNextContentMode(m))
}

// crop shows what the view currently shows in a preview window.
func (a *App) crop() {
	img, err := a.view.Crop()
	if err != nil {
		a.report(err)
		return
	}
	a.showCropped(img)
}

// showCropped opens a window with the cropped image and a save action.
func (a *App) showCropped(img image.Image) {
	w := a.fyneApp.NewWindow(fmt.Sprintf("Cropped %d × %d", img.Bounds().Dx(), img.Bounds().Dy()))

	preview := canvas.NewImageFromImage(img)
	preview.FillMode = canvas.ImageFillContain
	preview.ScaleMode = canvas.ImageScaleSmooth

	save := func() {
		dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if writer == nil {
				return // Cancelled
			}
			path := writer.URI().Path()
			writer.Close()
			if err := imageio.Save(img, path, imageio.DefaultOptions()); err != nil {
				dialog.ShowError(err, w)
			}
		}, w)
	}

	bar := container.NewHBox(widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), save))
	w.SetContent(container.NewBorder(nil, container.NewPadded(bar), nil, nil, preview))
	w.Resize(fyne.NewSize(480, 480))
	w.Show()
}
