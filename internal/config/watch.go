// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"
)

// WatchDebounce is how long the file must stay quiet before a reload.
const WatchDebounce = 200 * time.Millisecond

// Watch reloads path whenever it changes and hands every valid result to
// onChange. Invalid edits are logged and skipped; the previous config stays
// in effect. Watch blocks until ctx is done.
//
// The parent directory is watched rather than the file so that editors that
// replace the file on save are still observed.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	log := pslog.Ctx(ctx).With("config", path)
	target := filepath.Clean(path)

	timer := time.NewTimer(WatchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(WatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watch error", "err", err)

		case <-timer.C:
			cfg, err := LoadFromPath(path)
			if err != nil {
				log.Warn("config reload rejected", "err", err)
				continue
			}
			log.Info("config reloaded")
			onChange(cfg)
		}
	}
}
