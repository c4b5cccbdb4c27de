// Package watcher monitors a directory for newly recorded audio files and
// hands each one to an upload handler. It backs the `meetsum watch`
// command.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Rahulrocknov18/meetingsummarizer/pkg/logging"
)

// Default watcher settings.
const (
	// DefaultSettleDelay is how long to wait after a create event before
	// uploading, so the recorder can finish writing the file.
	DefaultSettleDelay = 500 * time.Millisecond

	DefaultMaxConcurrent = 2
)

// audioExtensions lists the file extensions treated as meeting audio.
var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".mp4":  {},
	".aac":  {},
	".webm": {},
	".ogg":  {},
	".flac": {},
}

// Handler processes one detected audio file.
type Handler func(ctx context.Context, path string) error

// Config holds the watcher settings.
type Config struct {
	Dir           string
	SettleDelay   time.Duration
	MaxConcurrent int
}

// Watcher monitors one directory and dispatches audio files to the handler
// with bounded concurrency.
type Watcher struct {
	cfg       Config
	handler   Handler
	logger    logging.Logger
	fsw       *fsnotify.Watcher
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// New creates a watcher on cfg.Dir. The directory must exist.
func New(cfg Config, handler Handler, logger logging.Logger) (*Watcher, error) {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", cfg.Dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		cfg:       cfg,
		handler:   handler,
		logger:    logger,
		fsw:       fsw,
		semaphore: make(chan struct{}, cfg.MaxConcurrent),
	}, nil
}

// Run monitors the directory until ctx is cancelled, then waits for
// in-flight handlers to finish.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watching for new audio files",
		logging.F("dir", w.cfg.Dir),
		logging.F("max_concurrent", w.cfg.MaxConcurrent))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("waiting for in-flight uploads to finish")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !IsAudioFile(event.Name) {
				w.logger.Debug("ignoring non-audio file", logging.F("path", event.Name))
				continue
			}

			w.logger.Info("new audio file detected", logging.F("path", event.Name))

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go w.process(ctx, event.Name)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", logging.Err(err))
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) process(ctx context.Context, path string) {
	defer w.wg.Done()
	defer func() { <-w.semaphore }()

	// Give the writer time to finish the file.
	select {
	case <-time.After(w.cfg.SettleDelay):
	case <-ctx.Done():
		return
	}

	if err := w.handler(ctx, path); err != nil {
		w.logger.Error("failed to process audio file",
			logging.Err(err),
			logging.F("path", path))
	}
}

// IsAudioFile reports whether the path has a supported audio extension.
func IsAudioFile(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
