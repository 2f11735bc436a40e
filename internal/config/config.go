package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config holds the TUI configuration. Everything has a working default;
// the config file only overrides.
type Config struct {
	ModelPath   string            `json:"modelPath"`
	KeyBindings map[string]string `json:"keyBindings"`
	Theme       ThemeConfig       `json:"theme"`
	UndoDepth   int               `json:"undoDepth"`
}

// ThemeConfig defines color overrides for the status styles.
type ThemeConfig struct {
	AccentColor  string `json:"accentColor"`
	OpenColor    string `json:"openColor"`
	DoneColor    string `json:"doneColor"`
	ErrorColor   string `json:"errorColor"`
	SuccessColor string `json:"successColor"`
}

// DefaultModelPath returns the per-user model file location, e.g.
// ~/.config/chors/tasks.json on Linux.
func DefaultModelPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "chors-tasks.json"
	}
	return filepath.Join(base, "chors", "tasks.json")
}

func configFilePath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "chors", "config.json")
}

// Load builds the configuration from defaults plus the user config file,
// when one exists.
func Load() (*Config, error) {
	cfg := defaultConfig()
	path := configFilePath()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if err := mergeConfigFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// mergeConfigFile loads a config file and merges its non-zero values into
// the target config.
func mergeConfigFile(target *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var partial Config
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if partial.ModelPath != "" {
		target.ModelPath = partial.ModelPath
	}
	if partial.UndoDepth > 0 {
		target.UndoDepth = partial.UndoDepth
	}
	for key, value := range partial.KeyBindings {
		target.KeyBindings[key] = value
	}
	if partial.Theme.AccentColor != "" {
		target.Theme.AccentColor = partial.Theme.AccentColor
	}
	if partial.Theme.OpenColor != "" {
		target.Theme.OpenColor = partial.Theme.OpenColor
	}
	if partial.Theme.DoneColor != "" {
		target.Theme.DoneColor = partial.Theme.DoneColor
	}
	if partial.Theme.ErrorColor != "" {
		target.Theme.ErrorColor = partial.Theme.ErrorColor
	}
	if partial.Theme.SuccessColor != "" {
		target.Theme.SuccessColor = partial.Theme.SuccessColor
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		ModelPath:   DefaultModelPath(),
		KeyBindings: map[string]string{},
		Theme: ThemeConfig{
			AccentColor:  "#00FFFF",
			OpenColor:    "#FFD700",
			DoneColor:    "#32CD32",
			ErrorColor:   "#DC143C",
			SuccessColor: "#04B575",
		},
		UndoDepth: 100,
	}
}

// Manager holds the current configuration and reloads it when the config
// file changes on disk.
type Manager struct {
	mu         sync.RWMutex
	config     *Config
	watcher    *Watcher
	reloadChan chan struct{}
}

// NewManager loads the configuration and prepares a manager around it.
func NewManager() (*Manager, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return &Manager{
		config:     cfg,
		reloadChan: make(chan struct{}, 1),
	}, nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Reload re-reads the configuration from disk.
func (m *Manager) Reload() error {
	cfg, err := Load()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// StartWatcher begins watching the config file with a 300ms debounce.
func (m *Manager) StartWatcher(ctx context.Context) error {
	path := configFilePath()
	if path == "" {
		return fmt.Errorf("no config path to watch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		return fmt.Errorf("watcher already started")
	}
	w, err := NewWatcher(ctx, path)
	if err != nil {
		return err
	}
	if err := w.Start(300 * time.Millisecond); err != nil {
		return err
	}
	m.watcher = w
	go m.handleChanges(ctx)
	return nil
}

func (m *Manager) handleChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-m.watcher.Events():
			if !ok {
				return
			}
			if err := m.Reload(); err != nil {
				fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)
				continue
			}
			select {
			case m.reloadChan <- struct{}{}:
			default:
				// reload notification already pending
			}
		case err, ok := <-m.watcher.Errors():
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Config watcher error: %v\n", err)
		}
	}
}

// StopWatcher stops the config file watcher if it is running.
func (m *Manager) StopWatcher() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher == nil {
		return nil
	}
	err := m.watcher.Stop()
	m.watcher = nil
	return err
}

// ReloadEvents signals whenever the config has been reloaded.
func (m *Manager) ReloadEvents() <-chan struct{} {
	return m.reloadChan
}
