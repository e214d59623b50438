// Package watch notifies the coordinator when a file catalog is rewritten.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before a change is reported.
// Build tools write catalogs in several chunks.
const DefaultDebounce = 500 * time.Millisecond

// FileWatcher observes one file and reports coalesced changes on Changes
type FileWatcher struct {
	path     string
	debounce time.Duration
	changes  chan struct{}

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// Option configures a FileWatcher
type Option func(*FileWatcher)

// WithDebounce overrides DefaultDebounce
func WithDebounce(d time.Duration) Option {
	return func(w *FileWatcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewFileWatcher creates a watcher for path. Watching starts with Watch.
func NewFileWatcher(path string, opts ...Option) *FileWatcher {
	w := &FileWatcher{
		path:     path,
		debounce: DefaultDebounce,
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Changes receives one value per burst of writes. Pending changes are
// coalesced, so a slow reader never blocks the watcher.
func (w *FileWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Watch observes the file until ctx is cancelled
func (w *FileWatcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.watcher != nil {
		w.mu.Unlock()
		return fmt.Errorf("file watcher is already running")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.watcher = watcher
	w.mu.Unlock()

	defer func() {
		if err := w.close(); err != nil {
			slog.Error("Failed to close file watcher", "error", err)
		}
	}()

	if err := watcher.Add(w.path); err != nil {
		return fmt.Errorf("failed to watch file %s: %w", w.path, err)
	}
	slog.Info("Watching catalog file", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping catalog file watcher", "path", w.path)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(w.debounce)
			}

			// atomic replacement removes the watched inode
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				slog.Debug("Catalog file replaced, re-watching", "path", w.path)
				if err := watcher.Add(w.path); err != nil {
					slog.Warn("Failed to re-watch catalog file", "path", w.path, "error", err)
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			slog.Error("File watcher error", "path", w.path, "error", err)

		case <-timer.C:
			slog.Debug("Catalog file changed", "path", w.path)
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

func (w *FileWatcher) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	if err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	return nil
}
