package ui

import (
	"fmt"
	"strings"
	"time"

	"chors/internal/config"
	"chors/internal/filter"
	"chors/internal/session"
	"chors/internal/store"
	"chors/internal/view"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// mode is the interaction state. Every key event is interpreted against
// the current mode only, so commands that are illegal in a mode simply do
// not exist there.
type mode int

const (
	modeNormal mode = iota
	modeEditing
	modeFilterEdit
	modeCalendar
	modeCalendarEdit
	modeConfirmDelete
)

// editTarget says what the edit buffer commits to.
type editTarget int

const (
	editNewTask editTarget = iota
	editNewChild
	editTitle
	editDescription
	editDue
	editScheduled
	editViewName
	editViewDelete
)

const dateLayout = "2006-01-02"

// Model is the Bubble Tea model for the whole TUI. The edit buffer is a
// staging area: the store is only touched when a commit succeeds.
type Model struct {
	svc        *session.Service
	cfgManager *config.Manager
	keys       KeyMap
	styles     *Styles

	mode       mode
	projection []filter.Entry
	cursor     int
	selected   store.ID

	input      textinput.Model
	editTarget editTarget
	editTask   store.ID
	editParent store.ID

	pendingDelete store.ID
	pendingCount  int

	calCursor  time.Time
	calGrid    calGridState
	calTaskIdx int

	statusMsg string
	statusErr bool
	statusSeq int

	width    int
	height   int
	showHelp bool
}

// calGridState caches the projected month so the render pass does not
// recompute it per frame. It is rebuilt on every mutation and reload.
type calGridState struct {
	days map[int][]store.ID
}

// NewModel creates the TUI model. The service must already be loaded.
func NewModel(cfg *config.Config, cfgManager *config.Manager, svc *session.Service) Model {
	m := Model{
		svc:        svc,
		cfgManager: cfgManager,
		keys:       NewKeyMap(cfg),
		styles:     NewStyles(cfg),
		cursor:     -1,
		selected:   store.None,
		calCursor:  today(),
	}
	m.reproject(false)
	return m
}

// Init starts the background listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{WaitForModelReload(m.svc)}
	if m.cfgManager != nil {
		cmds = append(cmds, WaitForConfigReload(m.cfgManager))
	}
	return tea.Batch(cmds...)
}

// Update is the single event loop: one message in, at most one store
// mutation plus one re-projection out.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ModelReloadedMsg:
		m.reproject(false)
		m.refreshCalendar()
		return m, tea.Batch(m.setStatus("Reloaded model from disk.", false), WaitForModelReload(m.svc))

	case ConfigReloadedMsg:
		cfg := m.cfgManager.Get()
		m.keys = NewKeyMap(cfg)
		m.styles = NewStyles(cfg)
		return m, tea.Batch(m.setStatus("Reloaded config.", false), WaitForConfigReload(m.cfgManager))

	case ErrorMsg:
		return m, m.setStatus(msg.Err.Error(), true)

	case statusExpiredMsg:
		if msg.seq == m.statusSeq {
			m.statusMsg = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeNormal:
			return m.updateNormal(msg)
		case modeEditing, modeFilterEdit, modeCalendarEdit:
			return m.updateInput(msg)
		case modeCalendar:
			return m.updateCalendar(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, keys.AddSibling):
		parent := store.None
		if t, ok := m.selectedTask(); ok {
			parent = t.Parent
		}
		return m, m.startEdit(modeEditing, editNewTask, parent, "", "New task")

	case key.Matches(msg, keys.AddChild):
		t, ok := m.selectedTask()
		if !ok {
			return m, m.setStatus("Can't add a subtask with no task selected.", true)
		}
		return m, m.startEdit(modeEditing, editNewChild, t.ID, "", "New subtask of "+t.Title)

	case key.Matches(msg, keys.EditTitle):
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m, m.startEditFor(editTitle, t.ID, t.Title, "Edit title")

	case key.Matches(msg, keys.EditDesc):
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m, m.startEditFor(editDescription, t.ID, t.Description, "Edit description")

	case key.Matches(msg, keys.EditDue):
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m, m.startEditFor(editDue, t.ID, formatDate(t.Due), "Due date (YYYY-MM-DD, blank clears)")

	case key.Matches(msg, keys.EditSched):
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m, m.startEditFor(editScheduled, t.ID, formatDate(t.Scheduled), "Scheduled date (YYYY-MM-DD, blank clears)")

	case key.Matches(msg, keys.ToggleDone):
		return m, m.toggleStatus(store.StatusDone)

	case key.Matches(msg, keys.ToggleCancl):
		return m, m.toggleStatus(store.StatusCancelled)

	case key.Matches(msg, keys.CyclePrio):
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		next := nextPriority(t.Priority)
		return m, m.applyMutation(fmt.Sprintf("Priority set to %s.", priorityLabel(next)),
			func(st *store.Store, _ *view.Manager) error {
				return st.Update(t.ID, store.Patch{Priority: &next})
			})

	case key.Matches(msg, keys.Delete):
		t, ok := m.selectedTask()
		if !ok {
			return m, m.setStatus("No task selected.", true)
		}
		count, err := m.svc.SubtreeSize(t.ID)
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.pendingDelete = t.ID
		m.pendingCount = count
		m.mode = modeConfirmDelete
		return m, nil

	case key.Matches(msg, keys.MoveUp):
		return m, m.moveSelected(-1)

	case key.Matches(msg, keys.MoveDown):
		return m, m.moveSelected(1)

	case key.Matches(msg, keys.Indent):
		return m, m.indentSelected()

	case key.Matches(msg, keys.Outdent):
		return m, m.outdentSelected()

	case key.Matches(msg, keys.FilterEdit):
		active := m.svc.ActiveView()
		return m, m.startEdit(modeFilterEdit, editTitle, store.None, active.Expression,
			fmt.Sprintf("Filter for view %q (e.g. #work and not [x])", active.Name))

	case key.Matches(msg, keys.NextView):
		name, err := m.svc.ActivateNextView()
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.reproject(true)
		return m, m.setStatus(fmt.Sprintf("View %q.", name), false)

	case key.Matches(msg, keys.SaveView):
		return m, m.startEdit(modeEditing, editViewName, store.None, "", "Save current view as")

	case key.Matches(msg, keys.DeleteView):
		return m, m.startEdit(modeEditing, editViewDelete, store.None, "", "Delete view named")

	case key.Matches(msg, keys.CycleSort):
		active := m.svc.ActiveView()
		next := nextSortKey(active.SortKey)
		return m, m.saveActiveView(active.Expression, next, active.ShowCompleted,
			fmt.Sprintf("Sorting by %s.", next))

	case key.Matches(msg, keys.ToggleHideDone):
		active := m.svc.ActiveView()
		label := "Hiding completed tasks."
		if !active.ShowCompleted {
			label = "Showing completed tasks."
		}
		return m, m.saveActiveView(active.Expression, active.SortKey, !active.ShowCompleted, label)

	case key.Matches(msg, keys.Calendar):
		m.mode = modeCalendar
		if m.calCursor.IsZero() {
			m.calCursor = today()
		}
		m.refreshCalendar()
		return m, nil

	case key.Matches(msg, keys.Undo):
		if err := m.svc.Undo(); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.reproject(false)
		m.refreshCalendar()
		return m, m.setStatus("Undid last action.", false)

	case key.Matches(msg, keys.Redo):
		if err := m.svc.Redo(); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.reproject(false)
		m.refreshCalendar()
		return m, m.setStatus("Redid last action.", false)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		// Discard the buffer; the store was never touched.
		m.mode = m.cancelTargetMode()
		return m, nil
	case key.Matches(msg, m.keys.Commit):
		return m.commitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Calendar):
		// The projection cursor was never touched, so Normal resumes
		// exactly where it left off.
		m.mode = modeNormal
		return m, nil

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case msg.String() == "left" || msg.String() == "h":
		m.shiftCalCursor(0, -1)
		return m, nil
	case msg.String() == "right" || msg.String() == "l":
		m.shiftCalCursor(0, 1)
		return m, nil
	case msg.String() == "up" || msg.String() == "k":
		m.shiftCalCursor(0, -7)
		return m, nil
	case msg.String() == "down" || msg.String() == "j":
		m.shiftCalCursor(0, 7)
		return m, nil

	case key.Matches(msg, keys.PrevMonth):
		m.shiftCalCursor(-1, 0)
		return m, nil
	case key.Matches(msg, keys.NextMonth):
		m.shiftCalCursor(1, 0)
		return m, nil

	case key.Matches(msg, keys.Today):
		m.calCursor = today()
		m.calTaskIdx = 0
		m.refreshCalendar()
		return m, nil

	case key.Matches(msg, keys.NextInDay):
		ids := m.calGrid.days[m.calCursor.Day()]
		if len(ids) > 0 {
			m.calTaskIdx = (m.calTaskIdx + 1) % len(ids)
		}
		return m, nil

	case key.Matches(msg, keys.SetDate):
		ids := m.calGrid.days[m.calCursor.Day()]
		if len(ids) == 0 {
			return m, m.setStatus("No task on this date.", true)
		}
		id := ids[m.calTaskIdx]
		t, ok := m.svc.Task(id)
		if !ok {
			return m, m.setStatus("Task no longer exists.", true)
		}
		prefill := formatDate(t.Scheduled)
		if prefill == "" {
			prefill = m.calCursor.Format(dateLayout)
		}
		return m, m.startEditFor(editScheduled, id, prefill, "Reschedule to (YYYY-MM-DD, blank clears)")
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := m.pendingDelete
		m.pendingDelete = store.None
		m.mode = modeNormal
		var count int
		err := m.svc.Mutate(func(st *store.Store, _ *view.Manager) error {
			var err error
			count, err = st.Delete(id)
			return err
		})
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.reproject(false)
		m.refreshCalendar()
		return m, m.setStatus(fmt.Sprintf("Deleted %d task(s).", count), false)
	case "n", "esc":
		m.pendingDelete = store.None
		m.mode = modeNormal
		return m, m.setStatus("Delete cancelled.", false)
	}
	return m, nil
}

// commitInput applies the edit buffer. On a validation error the mode does
// not change: the buffer stays live for the user to fix.
func (m Model) commitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()

	if m.mode == modeFilterEdit {
		active := m.svc.ActiveView()
		v, err := filter.NewView(active.Name, strings.TrimSpace(value), active.SortKey, active.ShowCompleted)
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		if err := m.svc.Mutate(func(_ *store.Store, views *view.Manager) error {
			return views.Save(v)
		}); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.mode = modeNormal
		m.reproject(true)
		return m, m.setStatus("Filter applied.", false)
	}

	switch m.editTarget {
	case editNewTask, editNewChild:
		title := strings.TrimSpace(value)
		var newID store.ID
		err := m.svc.Mutate(func(st *store.Store, _ *view.Manager) error {
			id, err := st.Create(m.editParent, title)
			newID = id
			return err
		})
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.mode = modeNormal
		m.selected = newID
		m.reproject(false)
		m.refreshCalendar()
		if m.editTarget == editNewChild {
			return m, m.setStatus("Added subtask.", false)
		}
		return m, m.setStatus("Added task.", false)

	case editTitle:
		title := strings.TrimSpace(value)
		return m.commitTaskPatch(store.Patch{Title: &title}, "Title updated.")

	case editDescription:
		return m.commitTaskPatch(store.Patch{Description: &value}, "Description updated.")

	case editDue:
		patch, err := datePatch(value, false)
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		return m.commitTaskPatch(patch, "Due date updated.")

	case editScheduled:
		patch, err := datePatch(value, true)
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		return m.commitTaskPatch(patch, "Scheduled date updated.")

	case editViewName:
		name := strings.TrimSpace(value)
		active := m.svc.ActiveView()
		v, err := filter.NewView(name, active.Expression, active.SortKey, active.ShowCompleted)
		if err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		if err := m.svc.Mutate(func(_ *store.Store, views *view.Manager) error {
			if err := views.Save(v); err != nil {
				return err
			}
			return views.Activate(name)
		}); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.mode = modeNormal
		m.reproject(true)
		return m, m.setStatus(fmt.Sprintf("Saved view %q.", name), false)

	case editViewDelete:
		name := strings.TrimSpace(value)
		if err := m.svc.Mutate(func(_ *store.Store, views *view.Manager) error {
			return views.Delete(name)
		}); err != nil {
			return m, m.setStatus(err.Error(), true)
		}
		m.mode = modeNormal
		return m, m.setStatus(fmt.Sprintf("Deleted view %q.", name), false)
	}
	return m, nil
}

func (m Model) commitTaskPatch(patch store.Patch, successMsg string) (tea.Model, tea.Cmd) {
	id := m.editTask
	err := m.svc.Mutate(func(st *store.Store, _ *view.Manager) error {
		return st.Update(id, patch)
	})
	if err != nil {
		return m, m.setStatus(err.Error(), true)
	}
	m.mode = m.cancelTargetMode()
	m.reproject(false)
	m.refreshCalendar()
	return m, m.setStatus(successMsg, false)
}

// cancelTargetMode is where leaving the current edit buffer lands:
// calendar edits return to the calendar, everything else to Normal.
func (m Model) cancelTargetMode() mode {
	if m.mode == modeCalendarEdit {
		return modeCalendar
	}
	return modeNormal
}

func (m *Model) startEdit(target mode, et editTarget, parent store.ID, prefill, prompt string) tea.Cmd {
	m.mode = target
	m.editTarget = et
	m.editParent = parent
	m.input = newInput(prompt, prefill)
	return textinput.Blink
}

func (m *Model) startEditFor(et editTarget, id store.ID, prefill, prompt string) tea.Cmd {
	next := modeEditing
	if m.mode == modeCalendar {
		next = modeCalendarEdit
	}
	m.mode = next
	m.editTarget = et
	m.editTask = id
	m.input = newInput(prompt, prefill)
	return textinput.Blink
}

func newInput(prompt, prefill string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt + ": "
	in.SetValue(prefill)
	in.CursorEnd()
	in.Focus()
	return in
}

func (m *Model) toggleStatus(target store.Status) tea.Cmd {
	t, ok := m.selectedTask()
	if !ok {
		return m.setStatus("No task selected.", true)
	}
	next := target
	if t.Status == target {
		next = store.StatusOpen
	}
	return m.applyMutation(fmt.Sprintf("Marked %s.", next),
		func(st *store.Store, _ *view.Manager) error {
			return st.SetStatus(t.ID, next)
		})
}

func (m *Model) moveSelected(delta int) tea.Cmd {
	t, ok := m.selectedTask()
	if !ok {
		return m.setStatus("No task selected.", true)
	}
	siblings := m.svc.ChildrenOf(t.Parent)
	idx := indexOfID(siblings, t.ID)
	target := idx + delta
	if target < 0 || target >= len(siblings) {
		return m.setStatus("Already at the edge.", false)
	}
	return m.applyMutation("Moved task.", func(st *store.Store, _ *view.Manager) error {
		return st.Move(t.ID, t.Parent, target)
	})
}

func (m *Model) indentSelected() tea.Cmd {
	t, ok := m.selectedTask()
	if !ok {
		return m.setStatus("No task selected.", true)
	}
	siblings := m.svc.ChildrenOf(t.Parent)
	idx := indexOfID(siblings, t.ID)
	if idx <= 0 {
		return m.setStatus("No previous sibling to indent under.", true)
	}
	newParent := siblings[idx-1]
	p, _ := m.svc.Task(newParent)
	return m.applyMutation("Indented task.", func(st *store.Store, _ *view.Manager) error {
		return st.Move(t.ID, newParent, len(p.Children))
	})
}

func (m *Model) outdentSelected() tea.Cmd {
	t, ok := m.selectedTask()
	if !ok {
		return m.setStatus("No task selected.", true)
	}
	if t.Parent == store.None {
		return m.setStatus("Already a top-level task.", true)
	}
	parent, _ := m.svc.Task(t.Parent)
	grandSiblings := m.svc.ChildrenOf(parent.Parent)
	idx := indexOfID(grandSiblings, parent.ID)
	return m.applyMutation("Outdented task.", func(st *store.Store, _ *view.Manager) error {
		return st.Move(t.ID, parent.Parent, idx+1)
	})
}

func (m *Model) saveActiveView(expression string, sortKey filter.SortKey, showCompleted bool, successMsg string) tea.Cmd {
	active := m.svc.ActiveView()
	v, err := filter.NewView(active.Name, expression, sortKey, showCompleted)
	if err != nil {
		return m.setStatus(err.Error(), true)
	}
	return m.applyMutation(successMsg, func(_ *store.Store, views *view.Manager) error {
		return views.Save(v)
	})
}

// applyMutation runs one store mutation and forces a re-projection, the
// only way the view list ever changes.
func (m *Model) applyMutation(successMsg string, fn func(st *store.Store, views *view.Manager) error) tea.Cmd {
	if err := m.svc.Mutate(fn); err != nil {
		return m.setStatus(err.Error(), true)
	}
	m.reproject(false)
	m.refreshCalendar()
	return m.setStatus(successMsg, false)
}

// reproject recomputes the view list and repairs the cursor: the
// previously selected task is re-located when still visible; otherwise the
// index is clamped (or, after a view switch, reset to the top).
func (m *Model) reproject(resetOnMiss bool) {
	prev := m.selected
	m.projection = m.svc.Project()
	if len(m.projection) == 0 {
		m.cursor = -1
		m.selected = store.None
		return
	}
	if idx := filter.IndexOf(m.projection, prev); idx >= 0 {
		m.cursor = idx
	} else if resetOnMiss {
		m.cursor = 0
	} else {
		if m.cursor < 0 {
			m.cursor = 0
		}
		if m.cursor >= len(m.projection) {
			m.cursor = len(m.projection) - 1
		}
	}
	m.selected = m.projection[m.cursor].ID
}

func (m *Model) moveCursor(delta int) {
	n := len(m.projection)
	if n == 0 {
		return
	}
	if m.cursor < 0 {
		m.cursor = 0
	} else {
		// Wrap around at both ends.
		m.cursor = ((m.cursor+delta)%n + n) % n
	}
	m.selected = m.projection[m.cursor].ID
}

func (m *Model) shiftCalCursor(months, days int) {
	if months != 0 {
		first := time.Date(m.calCursor.Year(), m.calCursor.Month(), 1, 0, 0, 0, 0, time.UTC)
		first = first.AddDate(0, months, 0)
		day := m.calCursor.Day()
		if last := daysIn(first.Year(), first.Month()); day > last {
			day = last
		}
		m.calCursor = time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
	} else {
		m.calCursor = m.calCursor.AddDate(0, 0, days)
	}
	m.calTaskIdx = 0
	m.refreshCalendar()
}

func (m *Model) refreshCalendar() {
	if m.calCursor.IsZero() {
		return
	}
	grid := m.svc.Calendar(m.calCursor.Year(), m.calCursor.Month())
	m.calGrid = calGridState{days: grid.Days}
	if ids := m.calGrid.days[m.calCursor.Day()]; m.calTaskIdx >= len(ids) {
		m.calTaskIdx = 0
	}
}

func (m *Model) selectedTask() (store.Task, bool) {
	if m.selected == store.None {
		return store.Task{}, false
	}
	return m.svc.Task(m.selected)
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusSeq++
	return expireStatus(m.statusSeq)
}

func datePatch(value string, scheduled bool) (store.Patch, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if scheduled {
			return store.Patch{ClearScheduled: true}, nil
		}
		return store.Patch{ClearDue: true}, nil
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return store.Patch{}, fmt.Errorf("%w: expected a YYYY-MM-DD date", store.ErrValidationFailed)
	}
	if scheduled {
		return store.Patch{Scheduled: &date}, nil
	}
	return store.Patch{Due: &date}, nil
}

func nextPriority(p store.Priority) store.Priority {
	switch p {
	case store.PriorityNone:
		return store.PriorityLow
	case store.PriorityLow:
		return store.PriorityMedium
	case store.PriorityMedium:
		return store.PriorityHigh
	default:
		return store.PriorityNone
	}
}

func priorityLabel(p store.Priority) string {
	if p == store.PriorityNone {
		return "none"
	}
	return string(p)
}

func nextSortKey(key filter.SortKey) filter.SortKey {
	switch key {
	case filter.SortManual:
		return filter.SortPriority
	case filter.SortPriority:
		return filter.SortDue
	case filter.SortDue:
		return filter.SortTitle
	default:
		return filter.SortManual
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func indexOfID(ids []store.ID, id store.ID) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}
