package ocr

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// UpscaleFactor is applied to both axes before recognition.
const UpscaleFactor = 2

// Preprocess loads the image at path and prepares it for recognition:
// grayscale, then a 2x cubic upscale. Any decode failure is reported as
// ErrUnreadableImage.
func Preprocess(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return prepare(img), nil
}

// PreprocessReader is Preprocess for an already opened image stream.
func PreprocessReader(r io.Reader) (*image.NRGBA, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return prepare(img), nil
}

func prepare(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	// CatmullRom is the cubic convolution filter.
	return imaging.Resize(gray, b.Dx()*UpscaleFactor, b.Dy()*UpscaleFactor, imaging.CatmullRom)
}
