package settings

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever its file is modified externally, for
// example by an operator editing it while the gateway runs. It watches the
// containing directory rather than the file itself so that editors which
// replace the file on save (rename over the original) are still caught.
//
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, store *Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(store.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch settings directory %s: %w", dir, err)
	}

	base := filepath.Base(store.Path())
	slog.Debug("watching settings file", "path", store.Path())

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := store.Reload(); err != nil {
				slog.Warn("failed to reload settings after file change",
					"path", store.Path(),
					"error", err,
				)
				continue
			}
			slog.Info("settings reloaded after file change", "path", store.Path())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("settings watcher error", "error", err)
		}
	}
}
