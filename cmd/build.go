package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/conneroisu/coda/internal/config"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Aggregate the sources and compile them once",
	Long: `Concatenate every file in source_files, in order, into
<build_dir>/temp_coda.c and compile it with a single compiler invocation:

  <compiler> -o <output_path> <aggregate> -Wall -Wextra <compiler_flags...> <linker_flags...> -I<include>...

Compiler diagnostics are printed as-is. The aggregate file is kept after
the build for inspection.

Examples:
  coda build                      # Build with ./coda.json
  coda build --config other.json  # Build another descriptor
  CODA_COMPILER=gcc coda build    # Override the compiler`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(projectFile())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := newOrchestrator(logger).Build(ctx, cfg)
	if !result.Succeeded() {
		return result.Err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Build succeeded: %s (%s)\n", cfg.OutputPath, result.Duration.Round(time.Millisecond))
	return nil
}
