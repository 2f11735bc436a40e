package filter

import "chors/internal/store"

// SortKey picks the ordering applied to siblings within a projection.
// Manual order is the store's own child order.
type SortKey string

const (
	SortManual   SortKey = "manual"
	SortPriority SortKey = "priority"
	SortDue      SortKey = "due"
	SortTitle    SortKey = "title"
)

// IsValid checks if the sort key is one of the defined constants.
func (k SortKey) IsValid() bool {
	switch k {
	case SortManual, SortPriority, SortDue, SortTitle:
		return true
	default:
		return false
	}
}

// View is a named filter configuration: an expression, a sort key and a
// completed-task toggle. A view owns no task references, only the recipe
// for producing a projection.
type View struct {
	Name          string
	Expression    string
	SortKey       SortKey
	ShowCompleted bool

	cond Condition
}

// NewView compiles a view. The expression is parsed once here; an invalid
// expression never becomes a View.
func NewView(name, expression string, key SortKey, showCompleted bool) (View, error) {
	cond, err := Parse(expression)
	if err != nil {
		return View{}, err
	}
	if key == "" {
		key = SortManual
	}
	return View{
		Name:          name,
		Expression:    expression,
		SortKey:       key,
		ShowCompleted: showCompleted,
		cond:          cond,
	}, nil
}

// Matches evaluates the view's predicate against one task, including the
// completed-task toggle.
func (v View) Matches(t store.Task) bool {
	if !v.ShowCompleted && t.Status == store.StatusDone {
		return false
	}
	if v.cond == nil {
		return true
	}
	return v.cond.Match(t)
}
