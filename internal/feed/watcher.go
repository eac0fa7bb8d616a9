package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault batches bursts of inbox writes into one flush.
const debounceDefault = 200 * time.Millisecond

// pollDefault is the fallback polling interval when fsnotify is
// unavailable (NFS-mounted state directories on topside workstations).
const pollDefault = 2 * time.Second

// Watcher delivers inbox message files to a handler. Messages are handled
// sequentially in filename order: telemetry updates are not commutative
// (a phase change followed by an override must apply in that order), so
// there is no worker pool here.
type Watcher struct {
	inbox    string
	handler  func(path string)
	debounce time.Duration
	poll     time.Duration
	usePoll  bool
}

// NewWatcher creates an fsnotify-based inbox watcher.
func NewWatcher(inbox string, handler func(path string)) *Watcher {
	return &Watcher{
		inbox:    inbox,
		handler:  handler,
		debounce: debounceDefault,
		poll:     pollDefault,
	}
}

// NewPollWatcher creates a polling inbox watcher.
func NewPollWatcher(inbox string, handler func(path string), interval time.Duration) *Watcher {
	if interval == 0 {
		interval = pollDefault
	}
	return &Watcher{
		inbox:   inbox,
		handler: handler,
		poll:    interval,
		usePoll: true,
	}
}

// Run blocks until ctx is cancelled, delivering each new .json file in the
// inbox to the handler exactly once. The handler owns file cleanup.
func (w *Watcher) Run(ctx context.Context) error {
	if w.usePoll {
		return w.runPoll(ctx)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.inbox); err != nil {
		return err
	}

	// Paths accumulated since the last flush. A single timer resets on
	// each event; when it fires the batch is handled in filename order.
	pending := make(map[string]bool)

	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	flush := func() {
		batch := make([]string, 0, len(pending))
		for p := range pending {
			batch = append(batch, p)
		}
		pending = make(map[string]bool)
		sort.Strings(batch)
		for _, p := range batch {
			w.handler(p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return nil

		case <-debounceTimer.C:
			flush()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isMessageFile(event.Name) {
				continue
			}

			pending[event.Name] = true

			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logWatchError(err)
		}
	}
}

// logWatchError reports a watcher error without stopping the loop.
func logWatchError(err error) {
	fmt.Fprintf(os.Stderr, "inbox watcher error: %v\n", err)
}

func (w *Watcher) runPoll(ctx context.Context) error {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	seen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			entries, err := os.ReadDir(w.inbox)
			if err != nil {
				continue
			}
			var batch []string
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				path := filepath.Join(w.inbox, e.Name())
				if !isMessageFile(path) || seen[path] {
					continue
				}
				seen[path] = true
				batch = append(batch, path)
			}
			sort.Strings(batch)
			for _, p := range batch {
				w.handler(p)
			}
		}
	}
}

// ScanExisting handles any message files already present in the inbox, in
// filename order. Called at startup for messages that arrived while the
// daemon was down.
func ScanExisting(inbox string, handler func(path string)) error {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var batch []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(inbox, e.Name())
		if isMessageFile(path) {
			batch = append(batch, path)
		}
	}
	sort.Strings(batch)
	for _, p := range batch {
		handler(p)
	}
	return nil
}

// isMessageFile reports whether the file is a .json message (not a .tmp
// partial write).
func isMessageFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".tmp")
}
