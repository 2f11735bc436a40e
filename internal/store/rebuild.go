package store

import "fmt"

// Rebuild reconstructs a store from flat task records, typically decoded
// from a snapshot. Records must arrive with Parent and Children set; root
// order is the record order of parentless tasks. The forest invariants are
// checked before the store is returned, so a malformed snapshot yields
// ErrValidationFailed and no store.
func Rebuild(tasks []Task, nextID ID) (*Store, error) {
	s := New()
	for i := range tasks {
		t := tasks[i]
		if t.ID == None {
			return nil, fmt.Errorf("%w: task with zero id", ErrValidationFailed)
		}
		if _, dup := s.tasks[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate task id %d", ErrValidationFailed, t.ID)
		}
		c := copyTask(&t)
		c.Tags, c.Contexts = extractMeta(c.Title)
		s.tasks[t.ID] = &c
		if t.Parent == None {
			s.roots = append(s.roots, t.ID)
		}
	}

	// Parent/children must agree and every task must be reachable from a
	// root exactly once; anything else is a cycle or a dangling link.
	for _, t := range s.tasks {
		if t.Parent != None {
			p, ok := s.tasks[t.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: task %d references missing parent %d", ErrValidationFailed, t.ID, t.Parent)
			}
			if !containsID(p.Children, t.ID) {
				return nil, fmt.Errorf("%w: task %d missing from children of %d", ErrValidationFailed, t.ID, t.Parent)
			}
		}
		for _, child := range t.Children {
			c, ok := s.tasks[child]
			if !ok {
				return nil, fmt.Errorf("%w: task %d lists missing child %d", ErrValidationFailed, t.ID, child)
			}
			if c.Parent != t.ID {
				return nil, fmt.Errorf("%w: task %d claims child %d owned by %d", ErrValidationFailed, t.ID, child, c.Parent)
			}
		}
	}
	seen := make(map[ID]bool, len(s.tasks))
	var walk func(ids []ID) error
	walk = func(ids []ID) error {
		for _, id := range ids {
			if seen[id] {
				return fmt.Errorf("%w: task %d reachable twice", ErrValidationFailed, id)
			}
			seen[id] = true
			if err := walk(s.tasks[id].Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(s.roots); err != nil {
		return nil, err
	}
	if len(seen) != len(s.tasks) {
		return nil, fmt.Errorf("%w: %d tasks unreachable from any root", ErrValidationFailed, len(s.tasks)-len(seen))
	}

	maxID := None
	for id := range s.tasks {
		if id > maxID {
			maxID = id
		}
	}
	s.nextID = nextID
	if s.nextID <= maxID {
		s.nextID = maxID + 1
	}
	return s, nil
}

// Clone deep-copies the store. Used by the undo history.
func (s *Store) Clone() *Store {
	out := New()
	out.nextID = s.nextID
	out.roots = append([]ID(nil), s.roots...)
	for id, t := range s.tasks {
		c := copyTask(t)
		out.tasks[id] = &c
	}
	return out
}

func containsID(ids []ID, id ID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
