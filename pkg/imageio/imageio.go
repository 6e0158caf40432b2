// Package imageio loads and saves the images shown in a viewport.
//
// JPEG EXIF orientation is applied on load so the pixels match what the
// user expects to see. WebP is decode-only.
package imageio

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Options configures encoding.
type Options struct {
	// Format overrides the format derived from the file extension.
	// Default: derived from the extension, PNG for unknown extensions
	Format string

	// Quality for JPEG (1-100).
	// Default: 90
	Quality int

	// Compression for PNG: "default", "none", "speed" or "best".
	// Default: "default"
	Compression string
}

// DefaultOptions returns the default encoding options.
func DefaultOptions() Options {
	return Options{
		Quality:     90,
		Compression: "default",
	}
}

// Load opens and decodes an image file.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return img, nil
}

// Decode decodes an image from r.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Save encodes img to path. The format comes from opts.Format or the
// file extension.
func Save(img image.Image, path string, opts Options) error {
	format, err := formatFor(path, opts.Format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := imaging.Encode(f, img, format, encodeOptions(format, opts)...); err != nil {
		f.Close()
		return fmt.Errorf("failed to save image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// Encode writes img to w in the given format ("png", "jpeg", "gif",
// "tiff" or "bmp").
func Encode(w io.Writer, img image.Image, opts Options) error {
	name := opts.Format
	if name == "" {
		name = "png"
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return fmt.Errorf("unsupported format %q: %w", name, err)
	}
	if err := imaging.Encode(w, img, format, encodeOptions(format, opts)...); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

func formatFor(path, override string) (imaging.Format, error) {
	if override != "" {
		f, err := imaging.FormatFromExtension(override)
		if err != nil {
			return 0, fmt.Errorf("unsupported format %q: %w", override, err)
		}
		return f, nil
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return imaging.PNG, nil
	}
	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return 0, fmt.Errorf("unsupported output extension %q: %w", ext, err)
	}
	return f, nil
}

func encodeOptions(format imaging.Format, opts Options) []imaging.EncodeOption {
	switch format {
	case imaging.JPEG:
		q := opts.Quality
		if q < 1 {
			q = 1
		}
		if q > 100 {
			q = 100
		}
		return []imaging.EncodeOption{imaging.JPEGQuality(q)}
	case imaging.PNG:
		return []imaging.EncodeOption{imaging.PNGCompressionLevel(pngLevel(opts.Compression))}
	}
	return nil
}

func pngLevel(name string) png.CompressionLevel {
	switch strings.ToLower(name) {
	case "none":
		return png.NoCompression
	case "speed":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	}
	return png.DefaultCompression
}
