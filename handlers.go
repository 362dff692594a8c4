package main

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/notAvailable404/openID/pkg/idscan"
	"github.com/notAvailable404/openID/pkg/metrics"
)

var errStoreUpload = errors.New("store upload")

type server struct {
	cfg     Config
	scanner *idscan.Scanner
	metrics *metrics.Metrics
}

func (s *server) setupRoutes(r *gin.Engine) {
	r.POST("/scan", s.scanHandler)
}

// scanHandler accepts a multipart "file" upload and returns the scan report.
// The upload only exists on disk for the duration of the scan.
func (s *server) scanHandler(c *gin.Context) {
	reqID := uuid.NewString()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	file, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, idscan.ErrorReport("file too large"))
			return
		}
		c.JSON(http.StatusBadRequest, idscan.ErrorReport("file missing"))
		return
	}
	if file.Size > s.cfg.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, idscan.ErrorReport("file too large"))
		return
	}
	debug, _ := strconv.ParseBool(c.Query("debug"))
	debug = debug && s.cfg.AllowDebug

	start := time.Now()
	report, err := s.scanUpload(c, reqID, file, debug)
	outcome := scanOutcome(report, err)
	s.metrics.ObserveScan(outcome, time.Since(start))
	log.Printf("scan %s outcome=%s debug=%v size=%d dur=%s", reqID, outcome, debug, file.Size, time.Since(start).Round(time.Millisecond))

	if err != nil {
		log.Printf("scan %s failed: %v", reqID, err)
		msg := "ocr engine failure"
		if errors.Is(err, errStoreUpload) {
			msg = "upload could not be stored"
		}
		c.JSON(http.StatusInternalServerError, idscan.ErrorReport(msg))
		return
	}
	c.JSON(http.StatusOK, report)
}

// scanUpload stores the upload under a random name, scans it and removes it
// before returning, whatever the outcome.
func (s *server) scanUpload(c *gin.Context, reqID string, file *multipart.FileHeader, debug bool) (idscan.Report, error) {
	tmpPath := filepath.Join(s.cfg.TmpDir, "scan-"+reqID+".upload")
	defer removeTransient(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		return idscan.Report{}, fmt.Errorf("%w: %v", errStoreUpload, err)
	}
	// Skip the engine entirely for uploads that are not images.
	if mt, err := mimetype.DetectFile(tmpPath); err != nil || !strings.HasPrefix(mt.String(), "image/") {
		return idscan.ErrorReport(idscan.UnreadableMessage), nil
	}
	return s.scanner.Scan(c.Request.Context(), tmpPath, debug)
}

func removeTransient(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to remove transient upload %s: %v", path, err)
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func scanOutcome(report idscan.Report, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeEngineError
	case report.Failed():
		return metrics.OutcomeUnreadable
	case report.NeedsHumanReview:
		return metrics.OutcomeReview
	default:
		return metrics.OutcomeComplete
	}
}
