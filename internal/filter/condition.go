package filter

import (
	"strings"
	"time"

	"chors/internal/store"
)

// Condition is a predicate over a single task. Conditions are built by
// Parse and never mutate the task.
type Condition interface {
	Match(t store.Task) bool
}

type tagCond struct{ name string }

func (c tagCond) Match(t store.Task) bool { return t.HasTag(c.name) }

type contextCond struct{ name string }

func (c contextCond) Match(t store.Task) bool { return t.HasContext(c.name) }

type statusCond struct{ status store.Status }

func (c statusCond) Match(t store.Task) bool { return t.Status == c.status }

type textCond struct{ text string }

func (c textCond) Match(t store.Task) bool {
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(c.text)) ||
		strings.Contains(strings.ToLower(t.Description), strings.ToLower(c.text))
}

// dateField selects which task date a date condition inspects.
type dateField int

const (
	fieldDue dateField = iota
	fieldScheduled
)

type dateCond struct {
	field dateField
	op    byte // '<', '>' or '='
	date  time.Time
}

func (c dateCond) Match(t store.Task) bool {
	var value *time.Time
	if c.field == fieldDue {
		value = t.Due
	} else {
		value = t.Scheduled
	}
	if value == nil {
		return false
	}
	day := value.Truncate(24 * time.Hour)
	switch c.op {
	case '<':
		return day.Before(c.date)
	case '>':
		return day.After(c.date)
	default:
		return day.Equal(c.date)
	}
}

type notCond struct{ inner Condition }

func (c notCond) Match(t store.Task) bool { return !c.inner.Match(t) }

type andCond struct{ left, right Condition }

func (c andCond) Match(t store.Task) bool { return c.left.Match(t) && c.right.Match(t) }

type orCond struct{ left, right Condition }

func (c orCond) Match(t store.Task) bool { return c.left.Match(t) || c.right.Match(t) }

type alwaysTrue struct{}

func (alwaysTrue) Match(store.Task) bool { return true }
