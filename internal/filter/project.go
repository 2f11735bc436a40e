package filter

import (
	"sort"
	"strings"

	"chors/internal/store"
)

// Entry is one visible row of a projection. Depth counts filtered
// ancestors, which equals raw ancestors because inclusion is closed under
// the ancestor rule.
type Entry struct {
	ID                 store.ID
	Depth              int
	HasVisibleChildren bool
}

// Project flattens the store through a view into an ordered view list.
// A task is included when it matches the view's predicate or when any of
// its descendants does, so a match deep in the tree always keeps its
// ancestors visible as context. Siblings are reordered by the view's sort
// key; the sort is stable, so ties keep manual order. The store is never
// mutated.
func Project(s *store.Store, v View) []Entry {
	var visit func(id store.ID, depth int) []Entry
	visit = func(id store.ID, depth int) []Entry {
		t, ok := s.Get(id)
		if !ok {
			return nil
		}
		var children []Entry
		for _, child := range sortSiblings(s, t.Children, v.SortKey) {
			children = append(children, visit(child, depth+1)...)
		}
		if !v.Matches(t) && len(children) == 0 {
			return nil
		}
		out := make([]Entry, 0, len(children)+1)
		out = append(out, Entry{ID: id, Depth: depth, HasVisibleChildren: len(children) > 0})
		return append(out, children...)
	}

	var list []Entry
	for _, root := range sortSiblings(s, s.Roots(), v.SortKey) {
		list = append(list, visit(root, 0)...)
	}
	return list
}

// IndexOf locates a task in a view list, or -1.
func IndexOf(list []Entry, id store.ID) int {
	for i, entry := range list {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

func sortSiblings(s *store.Store, ids []store.ID, key SortKey) []store.ID {
	if key == SortManual || key == "" || len(ids) < 2 {
		return ids
	}
	sorted := append([]store.ID(nil), ids...)
	tasks := make(map[store.ID]store.Task, len(sorted))
	for _, id := range sorted {
		if t, ok := s.Get(id); ok {
			tasks[id] = t
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := tasks[sorted[i]], tasks[sorted[j]]
		switch key {
		case SortPriority:
			return a.Priority.Rank() > b.Priority.Rank()
		case SortDue:
			switch {
			case a.Due == nil && b.Due == nil:
				return false
			case a.Due == nil:
				return false
			case b.Due == nil:
				return true
			default:
				return a.Due.Before(*b.Due)
			}
		case SortTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		default:
			return false
		}
	})
	return sorted
}
