package idscan

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"time"

	"github.com/notAvailable404/openID/pkg/ocr"
)

// Scanner runs the full pipeline: load, preprocess, OCR, detect, assemble.
// It holds no mutable state and is safe for concurrent use.
type Scanner struct {
	rec ocr.Recognizer
	now func() time.Time
}

// NewScanner returns a Scanner using rec for text recognition.
func NewScanner(rec ocr.Recognizer) *Scanner {
	return &Scanner{rec: rec, now: time.Now}
}

// Scan extracts nation and birth date from the image at path. An image that
// cannot be decoded yields an error Report, not an error; the returned error
// is reserved for OCR engine failures.
func (s *Scanner) Scan(ctx context.Context, path string, debug bool) (Report, error) {
	img, err := ocr.Preprocess(path)
	return s.scanImage(ctx, img, err, debug)
}

// ScanReader is Scan for an image stream.
func (s *Scanner) ScanReader(ctx context.Context, r io.Reader, debug bool) (Report, error) {
	img, err := ocr.PreprocessReader(r)
	return s.scanImage(ctx, img, err, debug)
}

func (s *Scanner) scanImage(ctx context.Context, img image.Image, loadErr error, debug bool) (Report, error) {
	if loadErr != nil {
		log.Printf("scan: unreadable image: %v", loadErr)
		return ErrorReport(UnreadableMessage), nil
	}
	raw, err := s.rec.Recognize(ctx, img)
	if err != nil {
		return Report{}, fmt.Errorf("recognize: %w", err)
	}
	text := ocr.Upper(raw)
	res := extractAt(text, debug, s.now())
	log.Printf("scan: chars=%d nation_conf=%.2f birth_conf=%.2f review=%v sample=%q",
		len(text), res.NationConfidence, res.BirthConfidence, res.NeedsHumanReview, ocr.Snippet(text, 80))
	return Report{ScanResult: &res}, nil
}
