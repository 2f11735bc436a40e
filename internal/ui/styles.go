package ui

import (
	"chors/internal/config"
	"chors/internal/store"

	"github.com/charmbracelet/lipgloss"
)

// Default colors, overridable through the theme config.
const (
	ColorOpen      = "#FFD700" // Gold
	ColorDone      = "#32CD32" // Lime Green
	ColorCancelled = "#808080" // Gray

	ColorBorder    = "#555555"
	ColorText      = "#FFFFFF"
	ColorSubtle    = "#666666"
	ColorHighlight = "#00FFFF"
	ColorError     = "#DC143C"
	ColorSuccess   = "#04B575"
)

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// Status colors
	Open      lipgloss.Style
	Done      lipgloss.Style
	Cancelled lipgloss.Style

	// Layout
	Header    lipgloss.Style
	StatusBar lipgloss.Style

	// Task list
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Meta       lipgloss.Style
	Tag        lipgloss.Style

	// Calendar
	DayCursor lipgloss.Style
	DayBusy   lipgloss.Style
	DayEmpty  lipgloss.Style

	// Text
	Title   lipgloss.Style
	Subtle  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Prompt  lipgloss.Style
}

// NewStyles builds the style set, applying any theme overrides.
func NewStyles(cfg *config.Config) *Styles {
	accent := ColorHighlight
	open := ColorOpen
	done := ColorDone
	errColor := ColorError
	success := ColorSuccess
	if cfg != nil {
		if cfg.Theme.AccentColor != "" {
			accent = cfg.Theme.AccentColor
		}
		if cfg.Theme.OpenColor != "" {
			open = cfg.Theme.OpenColor
		}
		if cfg.Theme.DoneColor != "" {
			done = cfg.Theme.DoneColor
		}
		if cfg.Theme.ErrorColor != "" {
			errColor = cfg.Theme.ErrorColor
		}
		if cfg.Theme.SuccessColor != "" {
			success = cfg.Theme.SuccessColor
		}
	}

	return &Styles{
		Open:      lipgloss.NewStyle().Foreground(lipgloss.Color(open)),
		Done:      lipgloss.NewStyle().Foreground(lipgloss.Color(done)).Strikethrough(true),
		Cancelled: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCancelled)).Strikethrough(true),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent)).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)).
			Padding(0, 1),

		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)).
			Bold(true),

		Unselected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorText)),

		Meta: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)),

		Tag: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)),

		DayCursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)).
			Bold(true).
			Reverse(true),

		DayBusy: lipgloss.NewStyle().
			Foreground(lipgloss.Color(open)).
			Bold(true),

		DayEmpty: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accent)),

		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSubtle)),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(errColor)).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(success)),

		Prompt: lipgloss.NewStyle().
			Foreground(lipgloss.Color(accent)).
			Bold(true),
	}
}

// StatusStyle returns the style for a task status.
func (s *Styles) StatusStyle(status store.Status) lipgloss.Style {
	switch status {
	case store.StatusDone:
		return s.Done
	case store.StatusCancelled:
		return s.Cancelled
	default:
		return s.Open
	}
}

// StatusIcon returns the list icon for a task status.
func StatusIcon(status store.Status) string {
	switch status {
	case store.StatusDone:
		return "[x]"
	case store.StatusCancelled:
		return "[-]"
	default:
		return "[ ]"
	}
}

// PriorityMarker returns the marker rendered before high-urgency titles.
func PriorityMarker(p store.Priority) string {
	switch p {
	case store.PriorityHigh:
		return "!! "
	case store.PriorityMedium:
		return "! "
	default:
		return ""
	}
}
