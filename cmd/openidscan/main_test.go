package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notAvailable404/openID/pkg/idscan"
	"github.com/notAvailable404/openID/pkg/ocr"
)

type textRecognizer string

func (r textRecognizer) Recognize(context.Context, image.Image) (string, error) {
	return string(r), nil
}

type failingRecognizer struct{}

func (failingRecognizer) Recognize(context.Context, image.Image) (string, error) {
	return "", ocr.ErrEngine
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func saveImage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, imaging.Save(imaging.New(12, 12, color.White), path))
}

func TestStripDebugArgs(t *testing.T) {
	rest, debug := stripDebugArgs([]string{"card.png", "--debug"})
	assert.True(t, debug)
	assert.Equal(t, []string{"card.png"}, rest)

	rest, debug = stripDebugArgs([]string{"DEBUG=True", "a.png", "b.png"})
	assert.True(t, debug)
	assert.Equal(t, []string{"a.png", "b.png"}, rest)

	rest, debug = stripDebugArgs([]string{"-workers", "2", "a.png"})
	assert.False(t, debug)
	assert.Equal(t, []string{"-workers", "2", "a.png"}, rest)
}

func TestScanFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	saveImage(t, good)
	missing := filepath.Join(dir, "missing.png")

	s := idscan.NewScanner(textRecognizer("FRA DOB 15/03/1990"))
	reports, err := scanFiles(context.Background(), s, []string{good, missing, good}, false, 2)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, good, reports[0].File)
	assert.Equal(t, "FRA", *reports[0].Result.Nation)
	assert.Equal(t, missing, reports[1].File)
	assert.Equal(t, []string{idscan.UnreadableMessage}, reports[1].Result.Errors)
	assert.Equal(t, "15/03/1990", *reports[2].Result.Birth)

	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, reports[0].Result))
	assert.Contains(t, buf.String(), "\n  \"nation\": \"FRA\",")
}

func TestScanFilesEngineFailure(t *testing.T) {
	good := filepath.Join(t.TempDir(), "good.png")
	saveImage(t, good)

	_, err := scanFiles(context.Background(), idscan.NewScanner(failingRecognizer{}), []string{good}, false, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ocr.ErrEngine))
}

func TestIsSupportedExt(t *testing.T) {
	assert.True(t, isSupportedExt("/in/card.JPG"))
	assert.True(t, isSupportedExt("scan.tiff"))
	assert.False(t, isSupportedExt("notes.txt"))
	assert.False(t, isSupportedExt("noext"))
}

func TestWatchDirectory(t *testing.T) {
	dir := t.TempDir()
	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchDirectory(ctx, idscan.NewScanner(textRecognizer("DOB 15/03/1990")), dir, false, true, 1, out)
	}()

	// Give the watcher time to register before creating files.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600))
	saveImage(t, filepath.Join(dir, "card.png"))

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "card.png") }, 5*time.Second, 50*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	var line fileReport
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(out.String(), "\n", 2)[0]), &line))
	assert.Equal(t, "card.png", line.File)
	assert.Equal(t, "15/03/1990", *line.Result.Birth)
	assert.NotContains(t, out.String(), "ignored.txt")

	_, err := os.Stat(filepath.Join(dir, "card.png"))
	assert.True(t, os.IsNotExist(err), "-remove deletes scanned files")
}
