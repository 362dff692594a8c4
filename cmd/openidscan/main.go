package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/notAvailable404/openID/pkg/idscan"
	"github.com/notAvailable404/openID/pkg/ocr"
)

type fileReport struct {
	File   string        `json:"file"`
	Result idscan.Report `json:"result"`
}

func main() {
	args, debugArg := stripDebugArgs(os.Args[1:])

	fs := flag.NewFlagSet("openidscan", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: openidscan [-debug] FILE...\n       openidscan -watch DIR [-remove]\n")
		fs.PrintDefaults()
	}
	debug := fs.Bool("debug", false, "include raw matches and a redacted OCR sample")
	watch := fs.String("watch", "", "directory to watch for new images")
	remove := fs.Bool("remove", false, "with -watch: delete each image after scanning")
	workers := fs.Int("workers", 0, "concurrent scans (default NumCPU)")
	lang := fs.String("lang", "eng", "tesseract language")
	_ = fs.Parse(args)
	*debug = *debug || debugArg
	if *workers <= 0 {
		*workers = runtime.NumCPU()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	scanner := idscan.NewScanner(ocr.NewTesseract(*lang))

	if *watch != "" {
		if err := watchDirectory(ctx, scanner, *watch, *debug, *remove, *workers, os.Stdout); err != nil {
			log.Fatalf("watch: %v", err)
		}
		return
	}

	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		os.Exit(2)
	}
	reports, err := scanFiles(ctx, scanner, files, *debug, *workers)
	if err != nil {
		log.Fatalf("scan: %v", err)
	}
	var out any = reports
	if len(reports) == 1 {
		out = reports[0].Result
	}
	if err := printJSON(os.Stdout, out); err != nil {
		log.Fatalf("write: %v", err)
	}
}

// stripDebugArgs pulls debug switches out of args wherever they appear,
// including the "debug=true" form.
func stripDebugArgs(args []string) ([]string, bool) {
	debug := false
	rest := make([]string, 0, len(args))
	for _, a := range args {
		switch strings.ToLower(a) {
		case "--debug", "-debug", "debug=true":
			debug = true
		default:
			rest = append(rest, a)
		}
	}
	return rest, debug
}

// scanFiles scans files with at most workers running at once. Reports keep
// the order of files. Only engine failures abort the run.
func scanFiles(ctx context.Context, s *idscan.Scanner, files []string, debug bool, workers int) ([]fileReport, error) {
	reports := make([]fileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			rep, err := s.Scan(ctx, f, debug)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			reports[i] = fileReport{File: f, Result: rep}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
