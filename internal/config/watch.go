package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"pagebuilder/internal/logging"
)

// Watch reloads the config file whenever it changes and hands the result to
// onChange. It watches the parent directory so editors that replace the file
// on save are picked up. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	logger := logging.FromContext(ctx).WithPrefix("config")
	if path == "" {
		path = DefaultPath()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}
	logger.Debug("watching", "path", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, warnings, err := Load(abs)
			if err != nil {
				logger.Warn("reload failed", "err", err)
				continue
			}
			for _, msg := range warnings {
				logger.Warn(msg)
			}
			logger.Info("reloaded", "path", abs)
			onChange(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
