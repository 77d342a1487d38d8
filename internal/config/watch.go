package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gitlab.com/tozd/go/errors"
)

// Watch reloads the config file at path whenever it is written, created or
// replaced, and hands the result to fn. The parent directory is watched so
// editors that save through a rename are seen too. Watch blocks until ctx is
// done.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return errors.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			cfg, _, _, err := Load(path)
			fn(cfg, err)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, errors.Errorf("watcher: %w", err))
		}
	}
}
