package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps fsnotify to watch files and emit debounced change
// notifications. It watches the parent directory of each path so that
// editors which replace files (write to temp, rename over) are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	paths    []string
	events   chan struct{}
	errors   chan error
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	watching bool
}

// NewWatcher creates a file watcher for the specified paths.
func NewWatcher(ctx context.Context, paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	watcherCtx, cancel := context.WithCancel(ctx)
	return &Watcher{
		watcher: fsw,
		paths:   paths,
		events:  make(chan struct{}, 1),
		errors:  make(chan error, 1),
		ctx:     watcherCtx,
		cancel:  cancel,
	}, nil
}

// Start begins watching the configured paths with debouncing.
func (w *Watcher) Start(debounce time.Duration) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return fmt.Errorf("watcher already started")
	}
	w.watching = true
	w.mu.Unlock()

	for _, path := range w.paths {
		dir := filepath.Dir(path)
		if err := w.watcher.Add(dir); err != nil {
			w.mu.Lock()
			w.watching = false
			w.mu.Unlock()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	go w.processEvents(debounce)
	return nil
}

func (w *Watcher) processEvents(debounce time.Duration) {
	defer close(w.events)
	defer close(w.errors)

	var timer *time.Timer
	for {
		select {
		case <-w.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.isWatchedFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case w.events <- struct{}{}:
				default:
					// event already pending
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.ctx.Done():
				return
			}
		}
	}
}

func (w *Watcher) isWatchedFile(path string) bool {
	for _, watched := range w.paths {
		if filepath.Base(path) == filepath.Base(watched) {
			return true
		}
	}
	return false
}

// Events returns the channel of debounced change notifications.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = false
	w.mu.Unlock()

	w.cancel()
	return w.watcher.Close()
}
