// CLI-only version (no GUI dependencies)
package main

import (
	"os"

	"imageview/internal/cli"
)

func main() {
	runner := &cli.Runner{Stdout: os.Stdout, Stderr: os.Stderr, Name: "imageview-cli"}
	os.Exit(runner.Run(os.Args[1:]))
}
