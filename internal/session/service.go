// Package session owns the live model: the task store, the view manager
// and the snapshot path, guarded by a single mutex. The TUI processes one
// event at a time, but the file watcher reloads from another goroutine, so
// every access to the shared model goes through this boundary.
package session

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"chors/internal/calendar"
	"chors/internal/config"
	"chors/internal/filter"
	"chors/internal/snapshot"
	"chors/internal/store"
	"chors/internal/view"
)

// Service owns the store and views for one model file.
type Service struct {
	mu      sync.RWMutex
	path    string
	store   *store.Store
	views   *view.Manager
	history *history

	watcher     *config.Watcher
	reloadChan  chan struct{}
	lastModTime time.Time
}

// NewService creates a service for the given model file path. Call Load
// before anything else.
func NewService(path string, undoDepth int) *Service {
	return &Service{
		path:       path,
		store:      store.New(),
		views:      view.NewManager(),
		history:    newHistory(undoDepth),
		reloadChan: make(chan struct{}, 1),
	}
}

// Path returns the model file path.
func (s *Service) Path() string {
	return s.path
}

// Load reads the snapshot from disk and replaces the in-memory model. A
// missing file yields an empty store with the default view set.
func (s *Service) Load() error {
	snap, err := snapshot.Load(s.path)
	if err != nil {
		return err
	}
	st, views, err := snap.Restore()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = st
	s.views = views
	if info, err := os.Stat(s.path); err == nil {
		s.lastModTime = info.ModTime()
	}
	return nil
}

// Save writes the complete current model to disk as one snapshot.
func (s *Service) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Service) saveLocked() error {
	snap := snapshot.Capture(s.store, s.views)
	if err := snapshot.Save(s.path, snap); err != nil {
		return err
	}
	if info, err := os.Stat(s.path); err == nil {
		s.lastModTime = info.ModTime()
	}
	return nil
}

// Mutate runs fn against the store and views under the write lock. On
// success the previous state is pushed onto the undo history and the
// snapshot is saved; on error the model is untouched and nothing is
// recorded.
func (s *Service) Mutate(fn func(st *store.Store, views *view.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := snapshot.Capture(s.store, s.views)
	if err := fn(s.store, s.views); err != nil {
		return err
	}
	s.history.push(before)
	if err := s.saveLocked(); err != nil {
		return err
	}
	return nil
}

// Undo restores the model state from before the most recent mutation.
func (s *Service) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.history.undo(snapshot.Capture(s.store, s.views))
	if !ok {
		return fmt.Errorf("%w: nothing to undo", store.ErrInvalidState)
	}
	return s.restoreLocked(prev)
}

// Redo reapplies the most recently undone mutation.
func (s *Service) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.history.redo(snapshot.Capture(s.store, s.views))
	if !ok {
		return fmt.Errorf("%w: nothing to redo", store.ErrInvalidState)
	}
	return s.restoreLocked(next)
}

func (s *Service) restoreLocked(snap snapshot.Snapshot) error {
	st, views, err := snap.Restore()
	if err != nil {
		return err
	}
	s.store = st
	s.views = views
	return s.saveLocked()
}

// Project computes the view list for the active view.
func (s *Service) Project() []filter.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Project(s.store, s.views.Active())
}

// Calendar computes the grid for one month.
func (s *Service) Calendar(year int, month time.Month) calendar.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return calendar.Project(s.store, year, month)
}

// Task returns a copy of one task.
func (s *Service) Task(id store.ID) (store.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Get(id)
}

// ChildrenOf returns the ordered children of id, or the roots for None.
func (s *Service) ChildrenOf(id store.ID) []store.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.ChildrenOf(id)
}

// SubtreeSize returns how many tasks a cascade delete of id would remove.
func (s *Service) SubtreeSize(id store.ID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.SubtreeSize(id)
}

// TaskCount returns the number of tasks in the store.
func (s *Service) TaskCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Len()
}

// ActiveView returns the active view configuration.
func (s *Service) ActiveView() filter.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.Active()
}

// ViewNames returns the saved view names in order.
func (s *Service) ViewNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views.Names()
}

// ActivateView makes the named view current and saves. View activation is
// navigation, not an edit, so it is not recorded in the undo history.
func (s *Service) ActivateView(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.views.Activate(name); err != nil {
		return err
	}
	return s.saveLocked()
}

// ActivateNextView cycles to the next saved view and returns its name.
func (s *Service) ActivateNextView() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := s.views.ActivateNext()
	return name, s.saveLocked()
}

// StartWatcher begins watching the model file so edits made outside the
// running program reload the store. Saves made by this process are
// recognized by modification time and skipped.
func (s *Service) StartWatcher(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return fmt.Errorf("watcher already started")
	}
	w, err := config.NewWatcher(ctx, s.path)
	if err != nil {
		return err
	}
	if err := w.Start(300 * time.Millisecond); err != nil {
		return err
	}
	s.watcher = w
	go s.handleFileChanges(ctx)
	return nil
}

func (s *Service) handleFileChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-s.watcher.Events():
			if !ok {
				return
			}
			if s.isOwnWrite() {
				continue
			}
			if err := s.Load(); err != nil {
				fmt.Fprintf(os.Stderr, "Error reloading model: %v\n", err)
				continue
			}
			select {
			case s.reloadChan <- struct{}{}:
			default:
				// reload notification already pending
			}
		case err, ok := <-s.watcher.Errors():
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Model watcher error: %v\n", err)
		}
	}
}

func (s *Service) isOwnWrite() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}
	return info.ModTime().Equal(s.lastModTime)
}

// StopWatcher stops the model file watcher if it is running.
func (s *Service) StopWatcher() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Stop()
	s.watcher = nil
	return err
}

// ReloadEvents signals whenever the model has been reloaded from disk.
func (s *Service) ReloadEvents() <-chan struct{} {
	return s.reloadChan
}
