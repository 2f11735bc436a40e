package store

import "errors"

// Error kinds surfaced to the interaction layer. Every store and view
// operation that can fail wraps one of these so callers can classify
// failures with errors.Is and render them as a status message.
var (
	// ErrNotFound means an operation referenced a missing task or view.
	ErrNotFound = errors.New("not found")

	// ErrCycleDetected means a reparent would have made a task its own
	// ancestor.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrInvalidState means the operation is legal in general but not in
	// the current state, e.g. deleting the last remaining view.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidationFailed means the input itself is malformed: an empty
	// title, an unparseable filter expression, or a snapshot that breaks
	// the tree invariants.
	ErrValidationFailed = errors.New("validation failed")
)
