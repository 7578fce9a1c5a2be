package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/desertthunder/wpx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for category selection and migration.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := shared.ValidateBatchSize(r.config.Migration.BatchSize); err != nil {
		return err
	}

	lock, err := shared.AcquireRunLock(r.lockPath())
	if err != nil {
		return err
	}
	defer lock.Unlock()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(filepath.Join("tmp", "wpx-tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	processor, err := r.newProcessor(store)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, processor, r.extractor(), r.config.Migration.BatchSize)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
