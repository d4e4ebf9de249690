// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// ReloadFunc receives the freshly loaded configuration after the
// config file changes on disk. A file edit that fails to parse or
// validate is ignored; the previous configuration stays in effect.
type ReloadFunc func(*Config)

// Watcher hot-reloads the configuration when the config file changes.
// Editors typically write config files with several events in quick
// succession (truncate, write, rename), so changes are debounced.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onReload ReloadFunc
	debounce time.Duration

	mu      sync.Mutex
	pending bool
	lastHit time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a watcher over the config directory.
func NewWatcher(onReload ReloadFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		watcher:  fsw,
		onReload: onReload,
		debounce: 250 * time.Millisecond,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching. The config directory is created first if
// needed; watching the directory rather than the file survives
// rename-based saves.
func (w *Watcher) Watch() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// processEvents marks config-file events as pending for the debouncer.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isConfigFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = true
			w.lastHit = time.Now()
			w.mu.Unlock()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next poll tick retries.
		}
	}
}

// processPending fires the reload once events have settled.
func (w *Watcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			ready := w.pending && time.Since(w.lastHit) >= w.debounce
			if ready {
				w.pending = false
			}
			w.mu.Unlock()

			if !ready {
				continue
			}

			cfg, err := Load()
			if err != nil {
				continue
			}
			if w.onReload != nil {
				w.onReload(cfg)
			}
		}
	}
}

// isConfigFile reports whether the event path is one of the config
// file names.
func isConfigFile(path string) bool {
	base := filepath.Base(path)
	return base == "config.toml" || base == "config.json"
}
