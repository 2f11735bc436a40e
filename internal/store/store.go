package store

import (
	"fmt"
	"strings"
	"time"
)

// Store owns the task forest. Tasks live in an ID-indexed table; sibling
// order is the order of the parent's Children list (root order for roots).
// All mutating operations either commit fully or leave the store untouched.
type Store struct {
	tasks  map[ID]*Task
	roots  []ID
	nextID ID
}

// New returns an empty store. The first allocated ID is 1 so that the zero
// ID always means "no task".
func New() *Store {
	return &Store{
		tasks:  make(map[ID]*Task),
		nextID: 1,
	}
}

// Len returns the number of tasks in the store.
func (s *Store) Len() int {
	return len(s.tasks)
}

// NextID returns the next ID the store would allocate. Persisted with the
// snapshot so IDs stay unique across restarts.
func (s *Store) NextID() ID {
	return s.nextID
}

// Get returns a copy of the task. Callers never receive a reference into
// the store; edits go through the mutation operations.
func (s *Store) Get(id ID) (Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return copyTask(t), true
}

// Roots returns the ordered root task IDs.
func (s *Store) Roots() []ID {
	return append([]ID(nil), s.roots...)
}

// ChildrenOf returns the ordered child IDs of a task. Passing None returns
// the roots.
func (s *Store) ChildrenOf(id ID) []ID {
	if id == None {
		return s.Roots()
	}
	t, ok := s.tasks[id]
	if !ok {
		return nil
	}
	return append([]ID(nil), t.Children...)
}

// All returns copies of every task in pre-order.
func (s *Store) All() []Task {
	out := make([]Task, 0, len(s.tasks))
	var walk func(ids []ID)
	walk = func(ids []ID) {
		for _, id := range ids {
			t := s.tasks[id]
			out = append(out, copyTask(t))
			walk(t.Children)
		}
	}
	walk(s.roots)
	return out
}

// Create adds a task with the given title under parent, appended to the
// parent's child list. A None parent appends a new root.
func (s *Store) Create(parent ID, title string) (ID, error) {
	if strings.TrimSpace(title) == "" {
		return None, fmt.Errorf("%w: title must not be empty", ErrValidationFailed)
	}
	if parent != None {
		if _, ok := s.tasks[parent]; !ok {
			return None, fmt.Errorf("%w: parent task %d", ErrNotFound, parent)
		}
	}

	id := s.nextID
	s.nextID++

	tags, contexts := extractMeta(title)
	t := &Task{
		ID:       id,
		Title:    title,
		Status:   StatusOpen,
		Tags:     tags,
		Contexts: contexts,
		Parent:   parent,
	}
	s.tasks[id] = t
	if parent == None {
		s.roots = append(s.roots, id)
	} else {
		p := s.tasks[parent]
		p.Children = append(p.Children, id)
	}
	return id, nil
}

// Patch describes a partial update to a task. Nil fields are left alone;
// the Clear flags remove the corresponding date.
type Patch struct {
	Title          *string
	Description    *string
	Status         *Status
	Priority       *Priority
	Due            *time.Time
	ClearDue       bool
	Scheduled      *time.Time
	ClearScheduled bool
}

// Update applies a patch atomically: it is validated in full before any
// field is written.
func (s *Store) Update(id ID, p Patch) error {
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidationFailed)
	}
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidationFailed, *p.Status)
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidationFailed, *p.Priority)
	}

	if p.Title != nil {
		t.Title = *p.Title
		t.Tags, t.Contexts = extractMeta(t.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDue {
		t.Due = nil
	} else if p.Due != nil {
		due := *p.Due
		t.Due = &due
	}
	if p.ClearScheduled {
		t.Scheduled = nil
	} else if p.Scheduled != nil {
		sched := *p.Scheduled
		t.Scheduled = &sched
	}
	return nil
}

// SetStatus changes a single task's status.
func (s *Store) SetStatus(id ID, status Status) error {
	return s.Update(id, Patch{Status: &status})
}

// SetDue sets or clears (nil) the due date.
func (s *Store) SetDue(id ID, due *time.Time) error {
	if due == nil {
		return s.Update(id, Patch{ClearDue: true})
	}
	return s.Update(id, Patch{Due: due})
}

// SetSchedule sets or clears (nil) the scheduled date. This is the one
// store mutation the calendar view performs.
func (s *Store) SetSchedule(id ID, scheduled *time.Time) error {
	if scheduled == nil {
		return s.Update(id, Patch{ClearScheduled: true})
	}
	return s.Update(id, Patch{Scheduled: scheduled})
}

// Move reparents a subtree to newParent at the given sibling index. The
// index is clamped into the target sibling list. Moving a task under
// itself or any of its descendants fails with ErrCycleDetected before
// anything is modified.
func (s *Store) Move(id, newParent ID, index int) error {
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if newParent != None {
		if _, ok := s.tasks[newParent]; !ok {
			return fmt.Errorf("%w: parent task %d", ErrNotFound, newParent)
		}
		if newParent == id || s.isDescendant(id, newParent) {
			return fmt.Errorf("%w: task %d cannot move under %d", ErrCycleDetected, id, newParent)
		}
	}

	// Detach from the old sibling list first, then insert; the index is
	// interpreted against the list after removal.
	s.detach(t)
	siblings := s.siblingList(newParent)
	if index < 0 {
		index = 0
	}
	if index > len(siblings) {
		index = len(siblings)
	}
	siblings = append(siblings, None)
	copy(siblings[index+1:], siblings[index:])
	siblings[index] = id
	s.setSiblingList(newParent, siblings)
	t.Parent = newParent
	return nil
}

// Delete removes the task and its whole subtree, returning how many tasks
// were removed.
func (s *Store) Delete(id ID) (int, error) {
	t, ok := s.tasks[id]
	if !ok {
		return 0, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	s.detach(t)
	count := 0
	var remove func(id ID)
	remove = func(id ID) {
		t := s.tasks[id]
		for _, child := range t.Children {
			remove(child)
		}
		delete(s.tasks, id)
		count++
	}
	remove(id)
	return count, nil
}

// SubtreeSize returns the number of tasks that Delete(id) would remove.
func (s *Store) SubtreeSize(id ID) (int, error) {
	t, ok := s.tasks[id]
	if !ok {
		return 0, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	count := 1
	var walk func(t *Task)
	walk = func(t *Task) {
		for _, child := range t.Children {
			count++
			walk(s.tasks[child])
		}
	}
	walk(t)
	return count, nil
}

// isDescendant reports whether candidate lives in the subtree rooted at
// ancestor.
func (s *Store) isDescendant(ancestor, candidate ID) bool {
	t := s.tasks[ancestor]
	for _, child := range t.Children {
		if child == candidate || s.isDescendant(child, candidate) {
			return true
		}
	}
	return false
}

func (s *Store) detach(t *Task) {
	siblings := s.siblingList(t.Parent)
	for i, id := range siblings {
		if id == t.ID {
			siblings = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	s.setSiblingList(t.Parent, siblings)
}

func (s *Store) siblingList(parent ID) []ID {
	if parent == None {
		return s.roots
	}
	return s.tasks[parent].Children
}

func (s *Store) setSiblingList(parent ID, ids []ID) {
	if parent == None {
		s.roots = ids
		return
	}
	s.tasks[parent].Children = ids
}

func copyTask(t *Task) Task {
	out := *t
	out.Tags = append([]string(nil), t.Tags...)
	out.Contexts = append([]string(nil), t.Contexts...)
	out.Children = append([]ID(nil), t.Children...)
	if t.Due != nil {
		due := *t.Due
		out.Due = &due
	}
	if t.Scheduled != nil {
		sched := *t.Scheduled
		out.Scheduled = &sched
	}
	return out
}
