package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/notAvailable404/openID/pkg/idscan"
	"github.com/notAvailable404/openID/pkg/ocr"
)

// ocrdump shows what the extractor sees for one image. Digits in the OCR
// text are redacted; date candidates are printed as matched.
func main() {
	img := flag.String("file", "", "image file to OCR")
	lang := flag.String("lang", "eng", "tesseract language")
	flag.Parse()
	if *img == "" {
		log.Fatal("-file is required")
	}
	p, _ := filepath.Abs(*img)

	text, err := ocr.RecognizePath(context.Background(), ocr.NewTesseract(*lang), p)
	if err != nil {
		log.Fatalf("ocr error: %v", err)
	}
	nation, nationConf := idscan.DetectNation(text)
	fmt.Printf("tesseract=%s file=%s chars=%d\n", ocr.EngineVersion(), p, len(text))
	fmt.Printf("text=%q\n", idscan.SanitizeSample(text))
	fmt.Printf("nation=%q conf=%.2f\n", nation, nationConf)
	fmt.Printf("date_context=%v candidates=%q\n", idscan.HasDateContext(text), idscan.FindDateCandidates(text))
}
