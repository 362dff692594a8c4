package ocr

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessGrayscaleUpscale(t *testing.T) {
	img := imaging.New(40, 30, color.NRGBA{R: 10, G: 200, B: 90, A: 255})
	path := filepath.Join(t.TempDir(), "card.jpg")
	require.NoError(t, imaging.Save(img, path))

	out, err := Preprocess(path)
	require.NoError(t, err)
	assert.Equal(t, 80, out.Bounds().Dx())
	assert.Equal(t, 60, out.Bounds().Dy())
	c := out.NRGBAAt(10, 10)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)
}

func TestPreprocessReader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(5, 7, color.Black), imaging.PNG))
	out, err := PreprocessReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, 14, out.Bounds().Dy())
}

func TestPreprocessUnreadable(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o600))

	for _, p := range []string{bad, filepath.Join(dir, "missing.png")} {
		_, err := Preprocess(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnreadableImage), "%s: %v", p, err)
	}
	_, err := PreprocessReader(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrUnreadableImage))
}

func TestRecognizeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTesseract("").Recognize(ctx, imaging.New(4, 4, color.White))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecognizePathUnreadable(t *testing.T) {
	_, err := RecognizePath(context.Background(), NewTesseract("eng"), filepath.Join(t.TempDir(), "nope.png"))
	assert.ErrorIs(t, err, ErrUnreadableImage)
}
