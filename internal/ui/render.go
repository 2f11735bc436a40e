package ui

import (
	"fmt"
	"strings"
	"time"

	"chors/internal/store"

	"github.com/charmbracelet/lipgloss"
)

// View renders the whole screen for the current mode.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.mode {
	case modeCalendar, modeCalendarEdit:
		b.WriteString(m.renderCalendar())
	default:
		b.WriteString(m.renderList())
	}

	switch m.mode {
	case modeEditing, modeFilterEdit, modeCalendarEdit:
		b.WriteString("\n")
		b.WriteString(m.styles.Prompt.Render(m.input.View()))
		b.WriteString("\n")
	case modeConfirmDelete:
		b.WriteString("\n")
		prompt := fmt.Sprintf("Delete %d task(s)? (y/n)", m.pendingCount)
		b.WriteString(m.styles.Error.Render(prompt))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	active := m.svc.ActiveView()
	title := fmt.Sprintf("chors · %s", active.Name)
	details := fmt.Sprintf("sort: %s", active.SortKey)
	if !active.ShowCompleted {
		details += " · done hidden"
	}
	if active.Expression != "" {
		details += fmt.Sprintf(" · filter: %s", active.Expression)
	}
	if m.mode == modeCalendar || m.mode == modeCalendarEdit {
		details = m.calCursor.Format("January 2006")
	}
	return m.styles.Header.Render(title) + " " + m.styles.Subtle.Render(details)
}

func (m Model) renderList() string {
	if len(m.projection) == 0 {
		return m.styles.Subtle.Render("  No tasks match. Press 'a' to add one.") + "\n"
	}

	top, bottom := m.listWindow()
	var b strings.Builder
	for i := top; i < bottom; i++ {
		entry := m.projection[i]
		t, ok := m.svc.Task(entry.ID)
		if !ok {
			continue
		}
		b.WriteString(m.renderTaskLine(t, entry.Depth, i == m.cursor))
		b.WriteString("\n")
	}
	if bottom < len(m.projection) {
		b.WriteString(m.styles.Subtle.Render(fmt.Sprintf("  … %d more", len(m.projection)-bottom)))
		b.WriteString("\n")
	}
	return b.String()
}

// listWindow keeps the cursor visible in a terminal shorter than the list.
func (m Model) listWindow() (int, int) {
	visible := m.height - 5
	if visible < 3 || m.height == 0 {
		visible = len(m.projection)
	}
	if visible >= len(m.projection) {
		return 0, len(m.projection)
	}
	top := m.cursor - visible/2
	if top < 0 {
		top = 0
	}
	if top+visible > len(m.projection) {
		top = len(m.projection) - visible
	}
	return top, top + visible
}

func (m Model) renderTaskLine(t store.Task, depth int, selected bool) string {
	indent := strings.Repeat("  ", depth)

	cursor := "  "
	if selected {
		cursor = "> "
	}

	icon := m.styles.StatusStyle(t.Status).Render(StatusIcon(t.Status))
	title := PriorityMarker(t.Priority) + t.Title
	if selected {
		title = m.styles.Selected.Render(title)
	} else if t.Status == store.StatusOpen {
		title = m.styles.Unselected.Render(title)
	} else {
		title = m.styles.StatusStyle(t.Status).Render(title)
	}

	line := cursor + indent + icon + " " + title
	if note := taskAnnotations(t); note != "" {
		line += " " + m.styles.Meta.Render(note)
	}
	return line
}

func taskAnnotations(t store.Task) string {
	var parts []string
	if t.Due != nil {
		parts = append(parts, "due "+t.Due.Format(dateLayout))
	}
	if t.Scheduled != nil {
		parts = append(parts, "sched "+t.Scheduled.Format(dateLayout))
	}
	if len(t.Children) > 0 {
		parts = append(parts, fmt.Sprintf("(%d)", len(t.Children)))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderCalendar() string {
	var b strings.Builder

	b.WriteString(m.styles.Subtle.Render("  Su Mo Tu We Th Fr Sa"))
	b.WriteString("\n")

	year, month := m.calCursor.Year(), m.calCursor.Month()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday())
	last := daysIn(year, month)

	cells := make([]string, 0, 7)
	for i := 0; i < lead; i++ {
		cells = append(cells, "  ")
	}
	for day := 1; day <= last; day++ {
		label := fmt.Sprintf("%2d", day)
		switch {
		case day == m.calCursor.Day():
			label = m.styles.DayCursor.Render(label)
		case len(m.calGrid.days[day]) > 0:
			label = m.styles.DayBusy.Render(label)
		default:
			label = m.styles.DayEmpty.Render(label)
		}
		cells = append(cells, label)
		if len(cells) == 7 {
			b.WriteString("  " + strings.Join(cells, " ") + "\n")
			cells = cells[:0]
		}
	}
	if len(cells) > 0 {
		b.WriteString("  " + strings.Join(cells, " ") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Title.Render("  " + m.calCursor.Format("Mon Jan 2")))
	b.WriteString("\n")

	ids := m.calGrid.days[m.calCursor.Day()]
	if len(ids) == 0 {
		b.WriteString(m.styles.Subtle.Render("  nothing planned"))
		b.WriteString("\n")
		return b.String()
	}
	for i, id := range ids {
		t, ok := m.svc.Task(id)
		if !ok {
			continue
		}
		marker := "  "
		if i == m.calTaskIdx {
			marker = "> "
		}
		icon := m.styles.StatusStyle(t.Status).Render(StatusIcon(t.Status))
		title := PriorityMarker(t.Priority) + t.Title
		if i == m.calTaskIdx {
			title = m.styles.Selected.Render(title)
		}
		b.WriteString("  " + marker + icon + " " + title + "\n")
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	if m.statusMsg != "" {
		style := m.styles.Success
		if m.statusErr {
			style = m.styles.Error
		}
		return m.styles.StatusBar.Render(style.Render(m.statusMsg))
	}

	var parts []string
	for _, binding := range m.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, fmt.Sprintf("%s %s", help.Key, help.Desc))
	}
	bar := strings.Join(parts, " · ")
	count := m.styles.Subtle.Render(fmt.Sprintf("%d tasks", m.svc.TaskCount()))
	return m.styles.StatusBar.Render(bar) + " " + count
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Keybindings"))
	b.WriteString("\n\n")
	for _, row := range m.keys.FullHelp() {
		for _, binding := range row {
			help := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", help.Key, help.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Subtle.Render("Press ? to close help."))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
