package cli

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"imageview/internal/config"
	"imageview/pkg/api"
	"imageview/pkg/geom"
	"imageview/pkg/imageio"
	"imageview/pkg/render"
	"imageview/pkg/zoom"
)

// session is a controller configured from command line options, with
// the layout settled.
type session struct {
	ctrl *api.Controller
	img  image.Image
	log  *zap.Logger
}

func (r *Runner) open(o *options) (*session, error) {
	log := r.logger(o)

	img, err := imageio.Load(o.path)
	if err != nil {
		return nil, err
	}

	opts, err := o.preset.ControllerOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		api.WithLogger(log),
		api.WithListener(api.ListenerFuncs{
			OnFailed: func(kind api.FailureKind, err error) {
				log.Error("controller failure", zap.Stringer("kind", kind), zap.Error(err))
			},
		}),
	)
	ctrl := api.New(opts...)

	_, next, focus := o.modes()
	if err := ctrl.Configure(next, focus, img, 0); err != nil {
		return nil, err
	}
	ctrl.Refresh()

	return &session{ctrl: ctrl, img: img, log: log}, nil
}

// position applies -toggle, -scale/-x/-y and -tapx/-tapy in that order.
func (s *session) position(o *options) error {
	for i := 0; i < o.toggles; i++ {
		if err := s.ctrl.ToggleContentMode(); err != nil {
			return err
		}
	}
	if o.hasScale || o.hasX || o.hasY {
		snap := s.ctrl.Snapshot()
		scale := snap.ZoomScale
		if o.hasScale {
			scale = o.scale
		}
		offset := snap.ContentOffset
		if o.hasX {
			offset.X = o.offset.X
		}
		if o.hasY {
			offset.Y = o.offset.Y
		}
		if err := s.ctrl.SetContentOffset(offset, false, scale); err != nil {
			return err
		}
	}
	if o.hasTap {
		if err := s.ctrl.DoubleTap(o.tap); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) cmdInfo(args []string) error {
	o, err := parseOptions(args, "info <image> [-config preset.yaml] [-w W] [-h H]", "")
	if err != nil {
		return err
	}
	img, err := imageio.Load(o.path)
	if err != nil {
		return err
	}
	size := geom.SizeOf(img)
	vp := o.preset.ViewportSize()

	fmt.Fprintf(r.Stdout, "File: %s\n", o.path)
	fmt.Fprintln(r.Stdout, "────────────────────────────────────────")
	fmt.Fprintf(r.Stdout, "Size: %.0f × %.0f pixels\n", size.Width, size.Height)
	fmt.Fprintf(r.Stdout, "Viewport: %.0f × %.0f points\n", vp.Width, vp.Height)
	fmt.Fprintf(r.Stdout, "\n%-14s %10s %10s\n", "Mode", "Min", "Max")

	mode, _, _ := o.modes()
	modes := []zoom.ContentMode{zoom.AspectFill, zoom.AspectFit, zoom.WidthFill, zoom.HeightFill}
	if mode.IsCustomOffset() {
		modes = append(modes, mode)
	}
	for _, m := range modes {
		scales, err := zoom.Compute(vp, size, m, o.preset.MaxScaleFactor)
		if err != nil {
			fmt.Fprintf(r.Stdout, "%-14s %s\n", m, err)
			continue
		}
		marker := ""
		if m == mode {
			marker = "  *"
		}
		fmt.Fprintf(r.Stdout, "%-14s %10.4f %10.4f%s\n", m, scales.Min, scales.Max, marker)
	}
	return nil
}

func (r *Runner) cmdCrop(args []string) error {
	o, err := parseOptions(args, "crop <image> [options] [-o cropped.png]", "cropped.png")
	if err != nil {
		return err
	}
	s, err := r.open(o)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	if err := s.position(o); err != nil {
		return err
	}
	out, err := s.ctrl.CropAndGetImage()
	if err != nil {
		return err
	}
	return r.save(out, o.output)
}

func (r *Runner) cmdRotate(args []string) error {
	o, err := parseOptions(args, "rotate <image> -deg D [-o rotated.png]", "rotated.png")
	if err != nil {
		return err
	}
	s, err := r.open(o)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	if err := s.ctrl.Rotate(o.degrees, true); err != nil {
		return err
	}
	return r.save(s.ctrl.Image(), o.output)
}

func (r *Runner) cmdSnapshot(args []string) error {
	o, err := parseOptions(args, "snapshot <image> [options] [-overview px] [-o snapshot.png]", "snapshot.png")
	if err != nil {
		return err
	}
	s, err := r.open(o)
	if err != nil {
		return err
	}
	defer s.log.Sync()

	if err := s.position(o); err != nil {
		return err
	}
	snap := s.ctrl.Snapshot()
	out, err := render.Snapshot(s.ctrl.Image(), snap, o.preset.BackgroundColor())
	if err != nil {
		return err
	}
	fmt.Fprintf(r.Stdout, "Scale %.4f (range %.4f to %.4f), offset (%.1f, %.1f)\n",
		snap.ZoomScale, snap.MinZoomScale, snap.MaxZoomScale, snap.ContentOffset.X, snap.ContentOffset.Y)
	if err := r.save(out, o.output); err != nil {
		return err
	}

	if o.overview > 0 {
		thumb, err := render.Overview(s.ctrl.Image(), snap, o.overview, color.NRGBA{R: 255, G: 204, A: 255})
		if err != nil {
			return err
		}
		ext := filepath.Ext(o.output)
		return r.save(thumb, strings.TrimSuffix(o.output, ext)+"-overview"+ext)
	}
	return nil
}

func (r *Runner) cmdPreset(args []string) error {
	output := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			if i+1 < len(args) {
				output = args[i+1]
				i++
			}
		default:
			return usageError("preset [-o preset.yaml]")
		}
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	if output == "" {
		_, err = r.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preset: %w", err)
	}
	fmt.Fprintf(r.Stdout, "✓ Saved %s\n", output)
	return nil
}

func (r *Runner) save(img image.Image, output string) error {
	dir := filepath.Dir(output)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imageio.Save(img, output, imageio.DefaultOptions()); err != nil {
		return err
	}
	fmt.Fprintf(r.Stdout, "✓ Saved %s (%dx%d pixels)\n", output, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}
