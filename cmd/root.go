package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conneroisu/coda/internal/build"
	"github.com/conneroisu/coda/internal/config"
	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/conneroisu/coda/internal/logging"
	"github.com/conneroisu/coda/internal/registry"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coda",
	Short: "Unity-build orchestrator for C projects",
	Long: `Coda concatenates the source files listed in coda.json into a single
translation unit and compiles it with one compiler invocation.

Quick Start:
  coda init                       Create src/, build/, dist/, modules/ and coda.json
  coda build                      Aggregate and compile once
  coda watch                      Build, then rebuild on every change in src/
  coda install <package>          Clone a registry package into modules/

Documentation: https://github.com/conneroisu/coda`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Failures are reported on stderr with remediation hints.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func reportError(w io.Writer, err error) {
	title := "Error: " + codaerrors.FormatError(err)
	suggestions := codaerrors.Suggest(err, &codaerrors.SuggestionContext{
		ConfigPath:  projectFile(),
		PackageList: registry.Default().Names(),
	})
	fmt.Fprintln(w, codaerrors.FormatSuggestions(title, suggestions))
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "project file (default is coda.json, can also use CODA_CONFIG_FILE env var)")
	pf.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json, pretty)")
	pf.String("metrics-file", "", "write Prometheus metrics to this file after every build")

	AddFlagValidation(pf, "log-level", ValidateLogLevel)
	AddFlagValidation(pf, "log-format", ValidateOneOf("text", "json", "pretty"))
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	_ = viper.BindPFlag("log-level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log-format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("metrics-file", pf.Lookup("metrics-file"))
}

// initConfig loads .env and enables CODA_* environment overrides for the
// CLI settings (e.g. CODA_LOG_LEVEL=debug).
func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	viper.SetEnvPrefix("CODA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// projectFile resolves the descriptor path: --config, CODA_CONFIG_FILE, coda.json.
func projectFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	if env := os.Getenv("CODA_CONFIG_FILE"); env != "" {
		return env
	}
	return config.DefaultFile
}

func newLogger(cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(viper.GetString("log-format"))
	switch format {
	case "text", "json", "pretty":
	default:
		return nil, fmt.Errorf("unsupported log format: %s (supported: text, json, pretty)", format)
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	}), nil
}

// newOrchestrator wires the build engine and, when --metrics-file is set,
// rewrites the metrics textfile after every build.
func newOrchestrator(logger logging.Logger) *build.Orchestrator {
	orch := build.NewOrchestrator(nil, logger)

	if path := viper.GetString("metrics-file"); path != "" {
		metrics := build.NewBuildMetrics()
		orch.SetMetrics(metrics)
		orch.AddCallback(func(result *build.BuildResult) {
			if err := metrics.WriteTextfile(path); err != nil {
				logger.Warn(context.Background(), err, "Failed to write metrics file", "path", path)
			}
		})
	}
	return orch
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
