package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the project configuration",
	Long: `Inspect coda.json as coda sees it, after defaults and CODA_*
environment overrides are applied.

Examples:
  coda config show                # Show the effective configuration as YAML
  coda config show --format json  # ... or as JSON
  coda config validate            # Check the descriptor and its source files`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and check that every source file exists",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configShowFormat string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configShowCmd.Flags().StringVarP(&configShowFormat, "format", "f", "yaml", "Output format (yaml, json)")
	AddFlagValidation(configShowCmd.Flags(), "format", ValidateOneOf("yaml", "json"))
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(projectFile())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(configShowFormat) {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", configShowFormat)
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := projectFile()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var missing []string
	for _, src := range cfg.SourceFiles {
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, src)
		}
	}
	if len(missing) > 0 {
		return codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
			"source files not found: "+strings.Join(missing, ", "), nil).WithFile(path)
	}

	if _, err := os.Stat(cfg.BuildDir); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: build directory %s does not exist; builds will fail until it is created\n", cfg.BuildDir)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d source file(s), compiler %s\n", path, len(cfg.SourceFiles), cfg.Compiler)
	return nil
}
