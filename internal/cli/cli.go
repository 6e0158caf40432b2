// Package cli implements the commands shared by the imageview binaries.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"imageview/internal/config"
	"imageview/pkg/geom"
	"imageview/pkg/viewport"
	"imageview/pkg/zoom"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError asks Run to print a command's usage line.
type usageError string

func (e usageError) Error() string { return string(e) }

// Runner runs commands, writing results to Stdout and logs to Stderr.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	// Name is the binary name shown in usage text.
	Name string
}

// Commands lists the commands Run understands.
var Commands = []string{"info", "crop", "rotate", "snapshot", "preset", "help"}

// IsCommand reports whether name is one of Commands.
func IsCommand(name string) bool {
	for _, c := range Commands {
		if c == name {
			return true
		}
	}
	return name == "-h" || name == "--help"
}

// Run executes args (without the binary name) and returns the exit code.
func (r *Runner) Run(args []string) int {
	if len(args) < 1 {
		r.PrintUsage()
		return ExitUsage
	}

	var err error
	switch args[0] {
	case "info":
		err = r.cmdInfo(args[1:])
	case "crop":
		err = r.cmdCrop(args[1:])
	case "rotate":
		err = r.cmdRotate(args[1:])
	case "snapshot":
		err = r.cmdSnapshot(args[1:])
	case "preset":
		err = r.cmdPreset(args[1:])
	case "help", "-h", "--help":
		r.PrintUsage()
		return ExitOK
	default:
		fmt.Fprintf(r.Stdout, "Unknown command: %s\n", args[0])
		r.PrintUsage()
		return ExitUsage
	}

	var usage usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(r.Stdout, "Usage: %s %s\n", r.Name, string(usage))
		return ExitUsage
	}
	if err != nil {
		fmt.Fprintf(r.Stdout, "Error: %v\n", err)
		return ExitError
	}
	return ExitOK
}

// PrintUsage prints the command summary.
func (r *Runner) PrintUsage() {
	fmt.Fprintf(r.Stdout, `
  %[1]s: an interactive image viewport

Usage:
  %[1]s <command> [arguments]

Commands:
  info <image> [options]              Show image size and zoom range per content mode
  crop <image> [options] [-o out]     Position the viewport and crop what it shows
  rotate <image> -deg D [-o out]      Rotate in place, keeping the canvas size
  snapshot <image> [options] [-o out] Render what the viewport shows
  preset [-o preset.yaml]             Print or write the default preset

Options:
  -config <preset.yaml>   Load settings from a preset
  -w <points> -h <points> Viewport size (default: 800 x 600)
  -mode <mode>            Content mode: aspectFill, aspectFit, widthFill,
                          heightFill or customOffset:<factor>
  -next <mode>            Mode to toggle to
  -focus <offset>         beginning or center
  -toggle                 Toggle the content mode (repeatable)
  -scale <s>              Zoom scale, clamped into range
  -x <points> -y <points> Content offset
  -tapx <x> -tapy <y>     Double tap at a viewport point
  -overview <px>          Also write an overview thumbnail (snapshot)
  -v                      Debug logging

Examples:
  %[1]s info photo.jpg -w 390 -h 844
  %[1]s crop photo.jpg -mode aspectFill -focus center -o center.png
  %[1]s snapshot photo.jpg -tapx 100 -tapy 200 -o zoomed.png
`, r.Name)
}

// options holds parsed command line arguments.
type options struct {
	path   string
	output string
	preset config.Preset

	scale    float64
	hasScale bool
	offset   geom.Point
	hasX     bool
	hasY     bool
	tap      geom.Point
	hasTap   bool
	toggles  int
	degrees  float64
	overview int
	verbose  bool
}

// parseOptions parses "<image> [flags]". The preset named by -config is
// loaded first so that the other flags override it.
func parseOptions(args []string, usage, defaultOutput string) (*options, error) {
	if len(args) < 1 || len(args[0]) == 0 || args[0][0] == '-' {
		return nil, usageError(usage)
	}
	o := &options{
		path:   args[0],
		output: defaultOutput,
		preset: config.Default(),
	}

	for i := 1; i < len(args); i++ {
		if args[i] == "-config" && i+1 < len(args) {
			p, err := config.Load(args[i+1])
			if err != nil {
				return nil, err
			}
			o.preset = p
			break
		}
	}

	for i := 1; i < len(args); i++ {
		flag := args[i]
		switch flag {
		case "-toggle":
			o.toggles++
			continue
		case "-v":
			o.verbose = true
			continue
		}

		if i+1 >= len(args) {
			return nil, fmt.Errorf("flag %s needs a value", flag)
		}
		value := args[i+1]
		i++

		var err error
		switch flag {
		case "-config":
		case "-o":
			o.output = value
		case "-w":
			o.preset.Viewport.Width, err = strconv.ParseFloat(value, 64)
		case "-h":
			o.preset.Viewport.Height, err = strconv.ParseFloat(value, 64)
		case "-mode":
			o.preset.ContentMode = value
		case "-next":
			o.preset.NextContentMode = value
		case "-focus":
			o.preset.FocusOffset = value
		case "-scale":
			o.scale, err = strconv.ParseFloat(value, 64)
			o.hasScale = true
		case "-x":
			o.offset.X, err = strconv.ParseFloat(value, 64)
			o.hasX = true
		case "-y":
			o.offset.Y, err = strconv.ParseFloat(value, 64)
			o.hasY = true
		case "-tapx":
			o.tap.X, err = strconv.ParseFloat(value, 64)
			o.hasTap = true
		case "-tapy":
			o.tap.Y, err = strconv.ParseFloat(value, 64)
			o.hasTap = true
		case "-deg":
			o.degrees, err = strconv.ParseFloat(value, 64)
		case "-overview":
			o.overview, err = strconv.Atoi(value)
		default:
			return nil, fmt.Errorf("unknown flag %s", flag)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid value %q for %s: %w", value, flag, err)
		}
	}

	if err := o.preset.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// modes returns the parsed content modes and focus offset.
func (o *options) modes() (mode, next zoom.ContentMode, focus viewport.FocusOffset) {
	// Validated by parseOptions.
	mode, next, focus, _ = o.preset.Modes()
	return mode, next, focus
}

// logger builds a console logger at the preset's level, or debug with -v.
func (r *Runner) logger(o *options) *zap.Logger {
	level := o.preset.Level()
	if o.verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(r.Stderr), level)
	return zap.New(core)
}
