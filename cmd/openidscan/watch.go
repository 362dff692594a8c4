package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/notAvailable404/openID/pkg/idscan"
)

// A file is considered complete once no event touched it for this long.
const settleDelay = 300 * time.Millisecond

// watchDirectory scans every supported image created in dir until ctx is
// done, writing one JSON line per file to out.
func watchDirectory(ctx context.Context, s *idscan.Scanner, dir string, debug, remove bool, workers int, out io.Writer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(fileCh)
		return debounceEvents(ctx, w.Events, w.Errors, fileCh)
	})

	var mu sync.Mutex
	enc := json.NewEncoder(out)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for path := range fileCh {
				rep, err := s.Scan(ctx, path, debug)
				if remove {
					removeScanned(path)
				}
				if err != nil {
					return err
				}
				mu.Lock()
				err = enc.Encode(fileReport{File: filepath.Base(path), Result: rep})
				mu.Unlock()
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// debounceEvents forwards created or written image paths once they settle.
func debounceEvents(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, fileCh chan<- string) error {
	pending := map[string]time.Time{}
	ticker := time.NewTicker(settleDelay / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				if isSupportedExt(ev.Name) {
					pending[ev.Name] = time.Now()
				}
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) < settleDelay {
					continue
				}
				delete(pending, name)
				select {
				case fileCh <- name:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}

func removeScanned(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("remove %s: %v", path, err)
	}
}

func isSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
