package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/conneroisu/coda/internal/installer"
	"github.com/conneroisu/coda/internal/registry"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <package>",
	Short: "Download a dependency from the package registry",
	Long: `Clone a package from the built-in registry into modules/<package> and
record it under "dependencies" in coda.json. Package names are lowercase;
use --list to see what is available.

Examples:
  coda install cjson
  coda install --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

var installList bool

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().BoolVar(&installList, "list", false, "list installable packages")
}

func runInstall(cmd *cobra.Command, args []string) error {
	if installList {
		return listPackages(cmd)
	}
	if len(args) != 1 {
		return errors.New("requires a package name (see --list)")
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inst := installer.New(installer.Options{
		ConfigPath: projectFile(),
		Progress:   cmd.ErrOrStderr(),
		Logger:     logger,
	})

	result, err := inst.Install(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Repository '%s' successfully downloaded to %s\n", result.Package.Name, result.Path)
	if !result.ConfigUpdated {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to update '%s' with new dependency\n", projectFile())
	}
	return nil
}

func listPackages(cmd *cobra.Command) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tCATEGORY\tREPOSITORY")
	for _, pkg := range registry.Default().List() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", pkg.Name, pkg.Category, pkg.URL)
	}
	return w.Flush()
}
