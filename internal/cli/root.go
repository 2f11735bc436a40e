// Package cli wires the command line surface: flag parsing, config and
// service setup, and the Bubble Tea program lifecycle.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chors/internal/config"
	"chors/internal/session"
	"chors/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root chors command.
func NewRootCommand() *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "chors",
		Short: "A terminal-resident personal task manager",
		Long: `Chors is a keyboard-driven task manager that lives in your terminal.
Tasks form a tree, saved views filter and sort it, and a calendar shows
what is due or scheduled each month. Everything persists to a single
JSON file that can be edited or synced freely.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), modelPath)
		},
	}

	cmd.Flags().StringVarP(&modelPath, "file", "f", "", "path to the task file (default: per-user config dir)")
	return cmd
}

func run(parent context.Context, modelPath string) error {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	manager, err := config.NewManager()
	if err != nil {
		return err
	}
	cfg := manager.Get()

	if modelPath == "" {
		modelPath = cfg.ModelPath
	}

	svc := session.NewService(modelPath, cfg.UndoDepth)
	if err := svc.Load(); err != nil {
		return fmt.Errorf("failed to load %s: %w", modelPath, err)
	}

	if err := svc.StartWatcher(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: model file watching disabled: %v\n", err)
	}
	defer svc.StopWatcher()

	if err := manager.StartWatcher(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config file watching disabled: %v\n", err)
	}
	defer manager.StopWatcher()

	m := ui.NewModel(cfg, manager, svc)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
