package crop

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// ImagingCropper crops with imaging.Crop, which clips the rectangle to
// the image bounds.
type ImagingCropper struct{}

// Crop implements Cropper.
func (ImagingCropper) Crop(src image.Image, r image.Rectangle) (image.Image, error) {
	out := imaging.Crop(src, r)
	if out.Bounds().Empty() {
		return nil, ErrCroppingFailed
	}
	return out, nil
}

// BildRotator rotates in place with bild: the canvas keeps its size and
// corners that leave it are clipped.
type BildRotator struct{}

// Rotate implements Rotator.
func (BildRotator) Rotate(src image.Image, degrees float64) (image.Image, error) {
	return transform.Rotate(src, degrees, &transform.RotationOptions{ResizeBounds: false}), nil
}
