// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"github.com/rs/zerolog"

	"github.com/jeranaias/docchat/internal/fswatch"
)

// Watcher reloads the configuration file whenever it changes.
type Watcher struct {
	fw *fswatch.FileWatcher
}

// Watch starts watching path (the default config path when empty). onReload
// receives each successfully loaded config; onError receives load failures,
// in which case the previous config stays in effect. Either may be nil.
func Watch(path string, onReload func(*Config), onError func(error), logger zerolog.Logger) (*Watcher, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("config reload failed")
			if onError != nil {
				onError(err)
			}
			return
		}
		logger.Info().Str("path", path).Msg("config reloaded")
		SetGlobal(cfg)
		if onReload != nil {
			onReload(cfg)
		}
	}

	fw, err := fswatch.New(path, reload, fswatch.WithLogger(logger))
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
