package cmd

import (
	"fmt"

	"github.com/conneroisu/coda/internal/scaffolding"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init [dir]",
	Aliases: []string{"i"},
	Short:   "Initialize a new coda project",
	Long: `Create dist/, build/, src/ and modules/, a starter src/main.c and
coda.json. If no directory is given, initializes the current directory.
An existing coda.json is never replaced without --force.

Examples:
  coda init
  coda init hello --name Hello
  coda init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initName  string
	initForce bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initName, "name", "n", "", "project name (default NewCodaProject)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing coda.json and starter files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	result, err := scaffolding.Init(scaffolding.InitOptions{
		Dir:         dir,
		ProjectName: initName,
		Force:       initForce,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project structure (src/, dist/, build/, modules/) created in %s\n", dir)
	for _, path := range result.Created {
		fmt.Fprintf(out, "  created  %s\n", path)
	}
	for _, path := range result.Skipped {
		fmt.Fprintf(out, "  kept     %s\n", path)
	}
	fmt.Fprintln(out, "Run 'coda build' to compile.")
	return nil
}
