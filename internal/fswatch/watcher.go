// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fswatch watches single files for changes with debouncing.
//
// The parent directory is watched rather than the file itself, so editors
// and atomic writers that replace the file (write temp + rename) are seen.
package fswatch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long a file must be quiet before a change fires.
const DefaultDebounce = 250 * time.Millisecond

// =============================================================================
// FILE WATCHER
// =============================================================================

// FileWatcher calls a handler after a watched file changes and has been quiet
// for the debounce period.
type FileWatcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   zerolog.Logger

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	pending time.Time // zero when nothing is pending
}

// Option configures a FileWatcher.
type Option func(*FileWatcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(fw *FileWatcher) {
		if d > 0 {
			fw.debounce = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(fw *FileWatcher) {
		fw.logger = logger
	}
}

// New creates a watcher for path. onChange runs on the watcher's goroutine.
func New(path string, onChange func(), opts ...Option) (*FileWatcher, error) {
	if path == "" {
		return nil, errors.New("fswatch: empty path")
	}
	if onChange == nil {
		return nil, errors.New("fswatch: nil handler")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: onChange,
		logger:   zerolog.Nop(),
		watcher:  w,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw, nil
}

// Path returns the watched file's absolute path.
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Start begins watching.
func (fw *FileWatcher) Start() error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	fw.wg.Add(2)
	go fw.processEvents()
	go fw.processPending()
	return nil
}

// processEvents records changes to the watched file.
func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.mu.Lock()
			fw.pending = time.Now()
			fw.mu.Unlock()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn().Err(err).Str("path", fw.path).Msg("watch error")
		}
	}
}

// processPending fires the handler once changes have settled.
func (fw *FileWatcher) processPending() {
	defer fw.wg.Done()

	tick := fw.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case now := <-ticker.C:
			fw.mu.Lock()
			fire := !fw.pending.IsZero() && now.Sub(fw.pending) >= fw.debounce
			if fire {
				fw.pending = time.Time{}
			}
			fw.mu.Unlock()

			if fire {
				fw.fire()
			}
		}
	}
}

func (fw *FileWatcher) fire() {
	defer func() {
		if r := recover(); r != nil {
			fw.logger.Error().Interface("panic", r).Str("path", fw.path).Msg("watch handler panicked")
		}
	}()
	fw.logger.Debug().Str("path", fw.path).Msg("file changed")
	fw.onChange()
}

// Close stops watching and waits for the goroutines to exit.
func (fw *FileWatcher) Close() error {
	fw.cancel()
	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}
