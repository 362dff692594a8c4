package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/notAvailable404/openID/pkg/idscan"
	"github.com/notAvailable404/openID/pkg/metrics"
	"github.com/notAvailable404/openID/pkg/ocr"
)

func main() {
	loadDotEnv(".env")
	cfg := loadConfig()

	// Refuse to start without a working engine rather than failing per request.
	version := ocr.EngineVersion()
	if version == "" {
		log.Fatal("tesseract not available; install it or set TESSDATA_PREFIX")
	}
	log.Printf("tesseract %s lang=%s tmp=%s", version, cfg.OCRLang, cfg.TmpDir)

	if err := os.MkdirAll(cfg.TmpDir, 0o700); err != nil {
		log.Fatalf("create tmp dir %s: %v", cfg.TmpDir, err)
	}

	srv := &server{
		cfg:     cfg,
		scanner: idscan.NewScanner(ocr.NewTesseract(cfg.OCRLang)),
		metrics: metrics.New(),
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", srv.metrics.Handler())
			log.Printf("metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Printf("metrics listener stopped: %v", err)
			}
		}()
	}

	r := gin.Default()
	srv.setupRoutes(r)

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
