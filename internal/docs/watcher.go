// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"errors"
	"time"

	"github.com/jeranaias/docchat/internal/fswatch"
)

// Watcher rebuilds an index when its source file changes.
type Watcher struct {
	fw *fswatch.FileWatcher
}

// Watch rebuilds idx from source after every (debounced) change to the file.
// onRebuild, if set, receives the outcome of each rebuild.
func (idx *Index) Watch(source string, debounce time.Duration, onRebuild func(chunks int, err error)) (*Watcher, error) {
	rebuild := func() {
		n, err := idx.Rebuild(context.Background(), source)
		switch {
		case errors.Is(err, ErrBuilding):
			idx.logger.Debug().Str("source", source).Msg("rebuild already running, change skipped")
			return
		case err != nil:
			idx.logger.Error().Err(err).Str("source", source).Msg("docs rebuild failed")
		}
		if onRebuild != nil {
			onRebuild(n, err)
		}
	}

	fw, err := fswatch.New(source, rebuild,
		fswatch.WithDebounce(debounce),
		fswatch.WithLogger(idx.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := fw.Start(); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{fw: fw}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
