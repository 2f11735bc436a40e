// Package snapshot is the persistence collaborator: it serializes the
// complete store and view set to a single JSON document and restores it.
// There are no partial or incremental writes; every save is one whole
// snapshot.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chors/internal/filter"
	"chors/internal/store"
	"chors/internal/view"
)

// TaskRecord is one serialized task. Children order is authoritative for
// sibling display order.
type TaskRecord struct {
	ID          store.ID       `json:"id"`
	ParentID    store.ID       `json:"parentId,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      store.Status   `json:"status"`
	Priority    store.Priority `json:"priority,omitempty"`
	Due         *time.Time     `json:"due,omitempty"`
	Scheduled   *time.Time     `json:"scheduled,omitempty"`
	Children    []store.ID     `json:"childrenOrder"`
}

// ViewRecord is one serialized view configuration.
type ViewRecord struct {
	Name          string         `json:"name"`
	Expression    string         `json:"expression"`
	SortKey       filter.SortKey `json:"sortKey"`
	ShowCompleted bool           `json:"showCompleted"`
}

// Snapshot is the complete on-disk model: every task in pre-order, every
// saved view, the active view name and the next free task ID.
type Snapshot struct {
	Version    int          `json:"version"`
	Tasks      []TaskRecord `json:"tasks"`
	Views      []ViewRecord `json:"views"`
	ActiveView string       `json:"activeView"`
	NextID     store.ID     `json:"nextId"`
}

const currentVersion = 1

// Capture snapshots the store and view manager.
func Capture(s *store.Store, views *view.Manager) Snapshot {
	snap := Snapshot{
		Version:    currentVersion,
		ActiveView: views.ActiveName(),
		NextID:     s.NextID(),
	}
	for _, t := range s.All() {
		snap.Tasks = append(snap.Tasks, TaskRecord{
			ID:          t.ID,
			ParentID:    t.Parent,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			Due:         t.Due,
			Scheduled:   t.Scheduled,
			Children:    t.Children,
		})
	}
	for _, name := range views.Names() {
		v, _ := views.Get(name)
		snap.Views = append(snap.Views, ViewRecord{
			Name:          v.Name,
			Expression:    v.Expression,
			SortKey:       v.SortKey,
			ShowCompleted: v.ShowCompleted,
		})
	}
	return snap
}

// Restore rebuilds the store and view manager from a snapshot. Structural
// problems (dangling parents, cycles, bad expressions) surface as
// store.ErrValidationFailed; nothing partial is returned.
func (snap Snapshot) Restore() (*store.Store, *view.Manager, error) {
	tasks := make([]store.Task, len(snap.Tasks))
	for i, rec := range snap.Tasks {
		tasks[i] = store.Task{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Status:      rec.Status,
			Priority:    rec.Priority,
			Due:         rec.Due,
			Scheduled:   rec.Scheduled,
			Parent:      rec.ParentID,
			Children:    rec.Children,
		}
		if tasks[i].Status == "" {
			tasks[i].Status = store.StatusOpen
		}
	}
	s, err := store.Rebuild(tasks, snap.NextID)
	if err != nil {
		return nil, nil, err
	}

	views := view.NewManager()
	for _, rec := range snap.Views {
		v, err := filter.NewView(rec.Name, rec.Expression, rec.SortKey, rec.ShowCompleted)
		if err != nil {
			return nil, nil, fmt.Errorf("view %q: %w", rec.Name, err)
		}
		if err := views.Save(v); err != nil {
			return nil, nil, err
		}
	}
	if snap.ActiveView != "" {
		if err := views.Activate(snap.ActiveView); err != nil {
			return nil, nil, fmt.Errorf("%w: active view %q not in snapshot", store.ErrValidationFailed, snap.ActiveView)
		}
	}
	return s, views, nil
}

// Save writes the snapshot to path, creating parent directories as needed.
func Save(path string, snap Snapshot) error {
	if path == "" {
		return fmt.Errorf("snapshot path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot from path. A missing file is not an error: it
// yields an empty snapshot, which restores to an empty store with the
// default view.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Snapshot{Version: currentVersion}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: failed to parse snapshot: %v", store.ErrValidationFailed, err)
	}
	return snap, nil
}
