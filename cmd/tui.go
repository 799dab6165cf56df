package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/musicat/internal/shared"
	"github.com/desertthunder/musicat/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.UI.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	a, err := r.connect(cmd)
	if err != nil {
		return err
	}

	if err := ui.Run(ctx, a, ui.Options{Logger: fileLogger, ExportDir: cmd.String("output")}); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
