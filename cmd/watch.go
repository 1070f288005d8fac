package cmd

import (
	"os/signal"
	"syscall"

	"github.com/conneroisu/coda/internal/config"
	"github.com/conneroisu/coda/internal/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Build, then rebuild on every change in the watch directory",
	Long: `Run one build and, if it succeeds, watch watch_dir (default src/) and
rebuild once for every file created, modified or deleted there. Names
starting with "." and paths matching watch_ignore are skipped. Rebuild
failures are reported and watching continues.

Exits with status 1 if the initial build fails, 0 on Ctrl-C.

Examples:
  coda watch
  coda watch --log-format pretty`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(projectFile())
	if err != nil {
		return err
	}

	sup, err := watcher.NewSupervisor(newOrchestrator(logger), cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return sup.Run(ctx)
}
