// Package main provides the eurotab command line tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/nao1215/eurotab/internal/config"
	"github.com/nao1215/eurotab/internal/logging"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, cleanup := logging.Setup(cfg, os.Stderr)
	defer cleanup()
	logger = logger.With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{cfg: cfg, logger: logger}).ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "eurotab",
		Short: "Extract numeric tables from European formatted exports",
		Long: `eurotab locates the header of a semicolon separated export, maps the
wanted fields to columns and converts European numbers ("1.577,4", "69,0%")
for the selected entities.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newExtractCmd(a),
		newCompareCmd(a),
		newRankCmd(a),
		newSourcesCmd(a),
	)
	return root
}
