package view

import (
	"fmt"

	"chors/internal/filter"
	"chors/internal/store"
)

// DefaultName is the built-in view present in every manager. It matches
// every task and can never be deleted while it is the last view.
const DefaultName = "all"

// Manager owns the named filter configurations and the active one. Views
// are pure configuration; switching views only changes which recipe the
// next projection uses.
type Manager struct {
	views  map[string]filter.View
	order  []string
	active string
}

// NewManager returns a manager seeded with the built-in "all" view, which
// starts active.
func NewManager() *Manager {
	all, _ := filter.NewView(DefaultName, "", filter.SortManual, true)
	return &Manager{
		views:  map[string]filter.View{DefaultName: all},
		order:  []string{DefaultName},
		active: DefaultName,
	}
}

// Save stores a view under its name, overwriting any existing view with
// that name.
func (m *Manager) Save(v filter.View) error {
	if v.Name == "" {
		return fmt.Errorf("%w: view name must not be empty", store.ErrValidationFailed)
	}
	if _, exists := m.views[v.Name]; !exists {
		m.order = append(m.order, v.Name)
	}
	m.views[v.Name] = v
	return nil
}

// Activate makes the named view current.
func (m *Manager) Activate(name string) error {
	if _, ok := m.views[name]; !ok {
		return fmt.Errorf("%w: view %q", store.ErrNotFound, name)
	}
	m.active = name
	return nil
}

// ActivateNext cycles to the next saved view in order and returns its name.
func (m *Manager) ActivateNext() string {
	for i, name := range m.order {
		if name == m.active {
			m.active = m.order[(i+1)%len(m.order)]
			return m.active
		}
	}
	m.active = m.order[0]
	return m.active
}

// Delete removes a saved view. The active view and the last remaining view
// are protected; there is always a view to fall back to.
func (m *Manager) Delete(name string) error {
	if _, ok := m.views[name]; !ok {
		return fmt.Errorf("%w: view %q", store.ErrNotFound, name)
	}
	if name == m.active {
		return fmt.Errorf("%w: view %q is active", store.ErrInvalidState, name)
	}
	if len(m.order) == 1 {
		return fmt.Errorf("%w: cannot delete the last view", store.ErrInvalidState)
	}
	delete(m.views, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a saved view by name.
func (m *Manager) Get(name string) (filter.View, bool) {
	v, ok := m.views[name]
	return v, ok
}

// Active returns the current view.
func (m *Manager) Active() filter.View {
	return m.views[m.active]
}

// ActiveName returns the current view's name.
func (m *Manager) ActiveName() string {
	return m.active
}

// Names returns the saved view names in save order.
func (m *Manager) Names() []string {
	return append([]string(nil), m.order...)
}

// Clone deep-copies the manager. Used by the undo history.
func (m *Manager) Clone() *Manager {
	out := &Manager{
		views:  make(map[string]filter.View, len(m.views)),
		order:  append([]string(nil), m.order...),
		active: m.active,
	}
	for name, v := range m.views {
		out.views[name] = v
	}
	return out
}
