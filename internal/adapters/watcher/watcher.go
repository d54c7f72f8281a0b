// Package watcher reports debounced batches of changed workspace files.
package watcher

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/affected/internal/adapters/fs"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const (
	eventChannelBuffer = 16
	// DefaultDebounceWindow is the default time window for debouncing file events.
	DefaultDebounceWindow = 50 * time.Millisecond
)

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	walker    *fs.Walker
	logger    ports.Logger
	debouncer *Debouncer
	root      string

	events   chan ports.WatchEvent
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
	closed   bool
}

// NewWatcher creates a file system watcher with the given debounce window.
// No file descriptors are held until Start.
func NewWatcher(walker *fs.Walker, logger ports.Logger, window time.Duration) *Watcher {
	w := &Watcher{
		walker: walker,
		logger: logger,
		events: make(chan ports.WatchEvent, eventChannelBuffer),
		stopCh: make(chan struct{}),
	}
	w.debouncer = NewDebouncer(window, w.emit)
	return w
}

// Start adds root and its subdirectories to the watch list and begins
// processing events in the background.
func (w *Watcher) Start(ctx context.Context, root string) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, domain.ErrWatcherStartFailed.Error())
	}
	w.fsWatcher = fsWatcher
	w.root = root

	for dir := range w.walker.WalkDirs(root) {
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherStartFailed.Error()), "dir", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	if w.fsWatcher == nil {
		return nil
	}
	return w.fsWatcher.Close()
}

// Events returns an iterator over debounced change batches.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: " + err.Error())
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	rel, ok := w.relative(event.Name)
	if !ok {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			for dir := range w.walker.WalkDirs(event.Name) {
				_ = w.fsWatcher.Add(dir)
			}
		}
	}

	w.debouncer.Add(rel)
}

// relative converts an absolute event path into a slash separated path
// relative to the root. Paths inside skipped directories are rejected.
func (w *Watcher) relative(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return "", false
	}
	rel = domain.NormalizePath(filepath.ToSlash(rel))
	if rel == "" || strings.HasPrefix(rel, "../") {
		return "", false
	}
	for segment := range strings.SplitSeq(rel, "/") {
		if w.walker.ShouldSkip(segment) {
			return "", false
		}
	}
	return rel, true
}

func (w *Watcher) emit(paths []string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ports.WatchEvent{Paths: paths}:
	case <-w.stopCh:
	}
}

func (w *Watcher) shutdown() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		w.closed = true
		close(w.events)
		w.mu.Unlock()
	})
}
