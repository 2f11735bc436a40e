package session

import "chors/internal/snapshot"

// history is a bounded undo/redo stack of whole-model snapshots. Snapshots
// are cheap at personal-task-list sizes and restoring one can never leave
// the model half-mutated. History lives in memory only; it does not
// survive a restart.
type history struct {
	undoStack []snapshot.Snapshot
	redoStack []snapshot.Snapshot
	max       int
}

func newHistory(max int) *history {
	if max <= 0 {
		max = 100
	}
	return &history{max: max}
}

// push records the state from before a mutation and clears the redo stack.
func (h *history) push(snap snapshot.Snapshot) {
	if len(h.undoStack) == h.max {
		h.undoStack = h.undoStack[1:]
	}
	h.undoStack = append(h.undoStack, snap)
	h.redoStack = nil
}

// undo trades the current state for the previous one.
func (h *history) undo(current snapshot.Snapshot) (snapshot.Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return snapshot.Snapshot{}, false
	}
	prev := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return prev, true
}

// redo trades the current state for the most recently undone one.
func (h *history) redo(current snapshot.Snapshot) (snapshot.Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return snapshot.Snapshot{}, false
	}
	next := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return next, true
}
