package ui

import (
	"time"

	"chors/internal/config"
	"chors/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// ModelReloadedMsg is sent when the model file has been reloaded from disk
// behind the program's back.
type ModelReloadedMsg struct{}

// ConfigReloadedMsg is sent when the config file has been reloaded.
type ConfigReloadedMsg struct{}

// ErrorMsg is sent when a background operation fails.
type ErrorMsg struct {
	Err error
}

// statusExpiredMsg clears the transient status line.
type statusExpiredMsg struct {
	seq int
}

// WaitForModelReload returns a command that delivers a ModelReloadedMsg
// the next time the service reloads from disk.
func WaitForModelReload(svc *session.Service) tea.Cmd {
	return func() tea.Msg {
		<-svc.ReloadEvents()
		return ModelReloadedMsg{}
	}
}

// WaitForConfigReload returns a command that delivers a ConfigReloadedMsg
// the next time the config manager reloads.
func WaitForConfigReload(manager *config.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.ReloadEvents()
		return ConfigReloadedMsg{}
	}
}

// expireStatus schedules the status line to clear. The sequence number
// keeps an old timer from wiping a newer message.
func expireStatus(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}
