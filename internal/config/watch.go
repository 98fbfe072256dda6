// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/pkg/debounce"
)

const profilesReloadDelay = 250 * time.Millisecond

// Reloader is implemented by models.ProfileStore.
type Reloader interface {
	Reload() error
}

// WatchProfiles reloads store whenever the file at path changes, until ctx is
// done. Bursts of events are coalesced. The parent directory is watched
// because editors and the store itself replace the file by rename.
// onReload, when set, runs after each reload attempt with its error.
func WatchProfiles(ctx context.Context, path string, store Reloader, onReload func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create profiles watcher")
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "failed to watch %s", dir)
	}

	debouncer := debounce.New(profilesReloadDelay)
	name := filepath.Clean(path)

	reload := func() {
		err := store.Reload()
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to reload profiles, keeping previous set")
		} else {
			log.Info().Str("path", path).Msg("Profiles reloaded")
		}
		if onReload != nil {
			onReload(err)
		}
	}

	go func() {
		defer watcher.Close()
		defer debouncer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				log.Trace().Str("event", event.String()).Msg("profiles file changed")
				debouncer.Do(reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("Profiles watcher error")
			}
		}
	}()

	return nil
}
