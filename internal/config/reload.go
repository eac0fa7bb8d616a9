package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce waits for the editor to finish writing before reloading.
const reloadDebounce = 500 * time.Millisecond

// Reloader watches the config file and delivers validated reloads. Only
// threshold and alert changes take effect at runtime; directory and
// transport settings need a restart.
type Reloader struct {
	watcher *fsnotify.Watcher
	path    string
	apply   func(cfg *Config, hash string)
}

// NewReloader creates a watcher on the config file. The apply callback
// runs on every successful reload.
func NewReloader(path string, apply func(cfg *Config, hash string)) (*Reloader, error) {
	if path == "" {
		return nil, fmt.Errorf("config: reloader needs an explicit path")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watch %q: %w", path, err)
	}

	return &Reloader{watcher: watcher, path: path, apply: apply}, nil
}

// Run blocks until ctx is cancelled, reloading on file changes. Invalid
// configs are logged and skipped; the previous config stays in force.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				cfg, hash, err := LoadWithHash(r.path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "config hot-reload failed: %v\n", err)
					return
				}
				r.apply(cfg, hash)
				fmt.Fprintf(os.Stderr, "config hot-reload: thresholds applied (%s)\n", hash)
			})

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "config watcher error: %v\n", err)
		}
	}
}
