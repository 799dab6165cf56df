package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicat/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := runner.Command().Run(ctx, os.Args)
	stop()

	os.Exit(exitCode(logger, err))
}

// exitCode reports err and maps it to a process exit status.
func exitCode(logger *log.Logger, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, shared.ErrCancelled), errors.Is(err, context.Canceled):
		logger.Info("cancelled")
		return 0
	case errors.Is(err, shared.ErrNotAuthenticated):
		logger.Error("not signed in, run `musicat auth login`")
		return 1
	default:
		logger.Errorf("application error: %v", err)
		return 1
	}
}
