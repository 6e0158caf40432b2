package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"imageview/internal/cli"
	"imageview/internal/config"
	"imageview/internal/gui"
)

// imageExts are the extensions that open the GUI without a command.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

func main() {
	runner := &cli.Runner{Stdout: os.Stdout, Stderr: os.Stderr, Name: "imageview"}

	if len(os.Args) < 2 {
		printBanner()
		runner.PrintUsage()
		os.Exit(cli.ExitUsage)
	}

	command := os.Args[1]

	switch {
	case command == "gui":
		cmdGUI(os.Args[2:])

	case cli.IsCommand(command):
		if command == "help" || command == "-h" || command == "--help" {
			printBanner()
		}
		os.Exit(runner.Run(os.Args[1:]))

	case imageExts[strings.ToLower(filepath.Ext(command))]:
		// Opening an image file directly is a shortcut for gui.
		cmdGUI(os.Args[1:])

	default:
		os.Exit(runner.Run(os.Args[1:]))
	}
}

func printBanner() {
	fmt.Println(`
  ██╗███╗   ███╗ █████╗  ██████╗ ███████╗██╗   ██╗██╗███████╗██╗    ██╗
  ██║████╗ ████║██╔══██╗██╔════╝ ██╔════╝██║   ██║██║██╔════╝██║    ██║
  ██║██╔████╔██║███████║██║  ███╗█████╗  ██║   ██║██║█████╗  ██║ █╗ ██║
  ██║██║╚██╔╝██║██╔══██║██║   ██║██╔══╝  ╚██╗ ██╔╝██║██╔══╝  ██║███╗██║
  ██║██║ ╚═╝ ██║██║  ██║╚██████╔╝███████╗ ╚████╔╝ ██║███████╗╚███╔███╔╝
  ╚═╝╚═╝     ╚═╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝  ╚═══╝  ╚═╝╚══════╝ ╚══╝╚══╝

  gui [image] [-config preset.yaml]   Open the GUI viewer
  <image>                             Open an image in the GUI (shortcut)

Built with:
  - fyne.io for native GUI
  - disintegration/imaging and anthonynsimon/bild for pixels
  - golang.org/x/image for rendering`)
}

// cmdGUI opens the viewer, optionally with an image and a preset.
func cmdGUI(args []string) {
	var path, presetPath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-config":
			if i+1 < len(args) {
				presetPath = args[i+1]
				i++
			}
		default:
			if path == "" {
				path = args[i]
			}
		}
	}

	preset := config.Default()
	if presetPath != "" {
		var err error
		preset, err = config.Load(presetPath)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(cli.ExitError)
		}
	}

	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(preset.Level())
	log, err := logCfg.Build()
	if err != nil {
		fmt.Printf("Error creating logger: %v\n", err)
		os.Exit(cli.ExitError)
	}
	defer log.Sync()

	app, err := gui.NewApp(preset, log)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(cli.ExitError)
	}
	if path != "" {
		app.RunWithFile(path)
	} else {
		app.Run()
	}
}
