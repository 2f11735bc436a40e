package ui

import (
	"chors/internal/config"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings for the TUI.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Task operations
	AddSibling  key.Binding
	AddChild    key.Binding
	EditTitle   key.Binding
	EditDesc    key.Binding
	EditDue     key.Binding
	EditSched   key.Binding
	ToggleDone  key.Binding
	ToggleCancl key.Binding
	CyclePrio   key.Binding
	Delete      key.Binding

	// Structure
	MoveUp   key.Binding
	MoveDown key.Binding
	Indent   key.Binding
	Outdent  key.Binding

	// Views and filters
	FilterEdit     key.Binding
	NextView       key.Binding
	SaveView       key.Binding
	DeleteView     key.Binding
	CycleSort      key.Binding
	ToggleHideDone key.Binding

	// Calendar
	Calendar  key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Today     key.Binding
	NextInDay key.Binding
	SetDate   key.Binding

	// History
	Undo key.Binding
	Redo key.Binding

	// Modal
	Commit key.Binding
	Cancel key.Binding

	// Help and quit
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),

		AddSibling: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add task"),
		),
		AddChild: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "add subtask"),
		),
		EditTitle: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit title"),
		),
		EditDesc: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "edit description"),
		),
		EditDue: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "edit due date"),
		),
		EditSched: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "edit scheduled date"),
		),
		ToggleDone: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		ToggleCancl: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "toggle cancelled"),
		),
		CyclePrio: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle priority"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete subtree"),
		),

		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move down"),
		),
		Indent: key.NewBinding(
			key.WithKeys(">"),
			key.WithHelp(">", "indent"),
		),
		Outdent: key.NewBinding(
			key.WithKeys("<"),
			key.WithHelp("<", "outdent"),
		),

		FilterEdit: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "edit filter"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		SaveView: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "save view as"),
		),
		DeleteView: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "delete view"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle sort"),
		),
		ToggleHideDone: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "show/hide done"),
		),

		Calendar: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "calendar"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		NextInDay: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next task in day"),
		),
		SetDate: key.NewBinding(
			key.WithKeys("enter", "S"),
			key.WithHelp("enter", "reschedule task"),
		),

		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "redo"),
		),

		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "commit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// NewKeyMap creates a KeyMap from configuration, falling back to defaults
// for missing keys.
func NewKeyMap(cfg *config.Config) KeyMap {
	km := DefaultKeyMap()
	if cfg == nil || len(cfg.KeyBindings) == 0 {
		return km
	}

	override := func(binding *key.Binding, name, help string) {
		if k, ok := cfg.KeyBindings[name]; ok && k != "" {
			*binding = key.NewBinding(key.WithKeys(k), key.WithHelp(k, help))
		}
	}

	override(&km.AddSibling, "addTask", "add task")
	override(&km.AddChild, "addSubtask", "add subtask")
	override(&km.ToggleDone, "done", "toggle done")
	override(&km.ToggleCancl, "cancelled", "toggle cancelled")
	override(&km.Delete, "delete", "delete subtree")
	override(&km.Calendar, "calendar", "calendar")
	override(&km.Undo, "undo", "undo")
	override(&km.Quit, "quit", "quit")
	override(&km.Help, "help", "toggle help")
	return km
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.AddSibling, k.EditTitle, k.ToggleDone, k.FilterEdit, k.Calendar, k.Help, k.Quit}
}

// FullHelp returns the full help layout.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.MoveUp, k.MoveDown, k.Indent, k.Outdent},
		{k.AddSibling, k.AddChild, k.EditTitle, k.EditDesc, k.Delete},
		{k.ToggleDone, k.ToggleCancl, k.CyclePrio, k.EditDue, k.EditSched},
		{k.FilterEdit, k.NextView, k.SaveView, k.DeleteView, k.CycleSort, k.ToggleHideDone},
		{k.Calendar, k.PrevMonth, k.NextMonth, k.Today, k.SetDate},
		{k.Undo, k.Redo, k.Help, k.Quit},
	}
}
