package store

import (
	"strings"
	"time"
)

// ID identifies a task for its whole lifetime. IDs are allocated from a
// monotonic counter and never reused, so a stale ID can only ever miss,
// never resolve to a different task.
type ID uint64

// None is the zero ID. It stands for "no parent" on root tasks.
const None ID = 0

// Task status values.
type Status string

const (
	StatusOpen      Status = "open"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// Task priority values. The empty priority sorts last.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns the ordering weight of a priority; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// IsValid checks if the priority is one of the defined constants.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a single unit of work. Parent/child links are stored as IDs,
// never as pointers, so projections and cursors survive any mutation.
type Task struct {
	ID          ID
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Due         *time.Time
	Scheduled   *time.Time
	Tags        []string
	Contexts    []string
	Parent      ID
	Children    []ID
}

// IsComplete returns true if the task is marked done.
func (t Task) IsComplete() bool {
	return t.Status == StatusDone
}

// extractMeta pulls #tag and @context words out of a title. Order of first
// appearance is preserved and duplicates collapse.
func extractMeta(title string) (tags, contexts []string) {
	seenTag := map[string]bool{}
	seenCtx := map[string]bool{}
	for _, word := range strings.Fields(title) {
		if name, ok := strings.CutPrefix(word, "#"); ok && name != "" {
			if !seenTag[name] {
				seenTag[name] = true
				tags = append(tags, name)
			}
		} else if name, ok := strings.CutPrefix(word, "@"); ok && name != "" {
			if !seenCtx[name] {
				seenCtx[name] = true
				contexts = append(contexts, name)
			}
		}
	}
	return tags, contexts
}

// HasTag reports whether the task's title carried the given #tag.
func (t Task) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

// HasContext reports whether the task's title carried the given @context.
func (t Task) HasContext(name string) bool {
	for _, ctx := range t.Contexts {
		if ctx == name {
			return true
		}
	}
	return false
}
