// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// DefaultWatchDebounce coalesces the burst of events editors emit on save.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watch reloads path whenever it changes and hands the result to onChange.
// Reload failures go to onError and the previous config stays in effect.
// Watch blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// atomic rename-over-writes (including SaveTOML's) are seen.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Config), onError func(error)) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if onError == nil {
		onError = func(error) {}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onError(err)

		case <-timer.C:
			cfg, err := LoadFromPath(abs)
			if err != nil {
				onError(err)
				continue
			}
			onChange(cfg)
		}
	}
}
