package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/musicat/internal/repositories"
	"github.com/desertthunder/musicat/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the config template when missing, then creates the state
// database and runs its migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	r.logger.Info("initializing state database", "path", r.config.State.Path)

	db, err := shared.OpenStateDatabase(r.config.State)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	keys, err := repositories.NewStateRepository(db).Keys(ctx)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.State.Path)
	r.writePlain("✓ Configuration: %s\n", configPath)
	r.writePlain("✓ State database: %s (%d stored keys)\n", r.config.State.Path, len(keys))
	r.writePlain("\nNext: run `musicat auth login` against %s\n", r.config.API.BaseURL)
	return nil
}
