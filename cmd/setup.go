package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the example configuration when none exists, then initializes the target store.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", r.configPath)
		if err := shared.CreateConfigFile(r.configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return err
		}
		r.config = config
		r.writePlain("✓ Config written to %s (edit [database] before migrating)\n", r.configPath)
	}

	r.logger.Info("initializing store", "path", r.config.Store.Path)
	store, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	applied, err := shared.AppliedMigrations(store.DB())
	if err != nil {
		return err
	}

	r.writePlain("✓ Store ready: %s (%d migrations applied)\n", r.config.Store.Path, len(applied))
	if r.config.Migration.CreateContentTypes {
		r.writePlain("✓ Content types registered\n")
	}
	return nil
}
