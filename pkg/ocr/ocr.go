package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Recognizer turns a preprocessed image into raw text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Tesseract recognizes text with a local Tesseract install through gosseract.
// Page segmentation is tuned for scattered text blocks (PSM 11), which suits
// ID cards where fields are not laid out as paragraphs. The engine mode is
// left at Tesseract's default, which picks the best available engine.
type Tesseract struct {
	Language      string
	clientFactory func() *gosseract.Client
}

// NewTesseract returns a Tesseract recognizer for lang ("eng" when empty).
func NewTesseract(lang string) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{Language: lang, clientFactory: gosseract.NewClient}
}

// Recognize runs OCR over img. Engine errors are wrapped with ErrEngine.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	client := t.clientFactory()
	defer client.Close()
	if err := client.SetLanguage(t.Language); err != nil {
		return "", fmt.Errorf("%w: set language %q: %v", ErrEngine, t.Language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return "", fmt.Errorf("%w: set page seg mode: %v", ErrEngine, err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: set image: %v", ErrEngine, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngine, err)
	}
	return text, nil
}

// EngineVersion reports the installed Tesseract version.
func EngineVersion() string {
	return gosseract.Version()
}

// Upper normalizes OCR output for case-insensitive matching. Full Unicode
// case mapping is used, so e.g. "ß" becomes "SS".
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// RecognizePath preprocesses the image at path and returns its upper-cased text.
func RecognizePath(ctx context.Context, r Recognizer, path string) (string, error) {
	img, err := Preprocess(path)
	if err != nil {
		return "", err
	}
	raw, err := r.Recognize(ctx, img)
	if err != nil {
		return "", err
	}
	text := Upper(raw)
	log.Printf("OCR %s chars=%d size=%dx%d", path, len(text), img.Bounds().Dx(), img.Bounds().Dy())
	return text, nil
}
