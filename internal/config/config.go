// Package config loads and saves the coda.json project descriptor using Viper.
//
// The descriptor is read through a dedicated Viper instance per call, so the
// CLI-level settings bound to the global Viper (log level, metrics file) never
// leak into project configuration. The key delimiter is "::" because package
// names recorded under "dependencies" may contain dots (e.g. "vector.h").
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	codaerrors "github.com/conneroisu/coda/internal/errors"
	"github.com/spf13/viper"
)

// DefaultFile is the project descriptor looked up when --config is not given.
const DefaultFile = "coda.json"

// AggregateFileName is the name of the synthetic unit inside BuildDir.
const AggregateFileName = "temp_coda.c"

const (
	defaultProjectName = "Coda Project"
	defaultCompiler    = "clang"
	defaultOutputPath  = "dist/coda"
	defaultBuildDir    = "build"
	defaultWatchDir    = "src"

	keyDelimiter = "::"
)

// ProjectConfig is the parsed project descriptor.
type ProjectConfig struct {
	ProjectName   string            `json:"project_name" yaml:"project_name"`
	Compiler      string            `json:"compiler" yaml:"compiler"`
	OutputPath    string            `json:"output_path" yaml:"output_path"`
	SourceFiles   []string          `json:"source_files" yaml:"source_files"`
	CompilerFlags []string          `json:"compiler_flags" yaml:"compiler_flags"`
	LinkerFlags   []string          `json:"linker_flags" yaml:"linker_flags"`
	IncludePaths  []string          `json:"include_paths" yaml:"include_paths"`
	Dependencies  map[string]string `json:"dependencies" yaml:"dependencies"`
	BuildDir      string            `json:"build_dir" yaml:"build_dir"`
	WatchDir      string            `json:"watch_dir" yaml:"watch_dir"`
	WatchIgnore   []string          `json:"watch_ignore" yaml:"watch_ignore"`
}

// AggregatePath returns the path of the synthetic compilation unit.
func (c *ProjectConfig) AggregatePath() string {
	return filepath.Join(c.BuildDir, AggregateFileName)
}

// Validate checks the invariants every build relies on.
func (c *ProjectConfig) Validate() error {
	if len(c.SourceFiles) == 0 {
		return codaerrors.NewConfigError(codaerrors.CodeConfigInvalid, "'source_files' must list at least one file", nil)
	}
	for i, src := range c.SourceFiles {
		if strings.TrimSpace(src) == "" {
			return codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
				fmt.Sprintf("'source_files' entry %d is empty", i), nil)
		}
	}
	if strings.TrimSpace(c.Compiler) == "" {
		return codaerrors.NewConfigError(codaerrors.CodeConfigInvalid, "'compiler' must not be empty", nil)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return codaerrors.NewConfigError(codaerrors.CodeConfigInvalid, "'output_path' must not be empty", nil)
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(path)
	v.SetConfigType("json")
	return v
}

// Load reads the descriptor at path and applies defaults.
func Load(path string) (*ProjectConfig, error) {
	v := newViper(path)

	// Scalar keys only; list keys must come from the file.
	_ = v.BindEnv("compiler", "CODA_COMPILER")
	_ = v.BindEnv("output_path", "CODA_OUTPUT_PATH")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, codaerrors.NewConfigError(codaerrors.CodeConfigMissing,
				"configuration file not found", err).WithFile(path)
		}
		return nil, codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
			"cannot parse configuration", err).WithFile(path)
	}

	cfg, err := decode(v)
	if err != nil {
		var ce *codaerrors.CodaError
		if errors.As(err, &ce) {
			ce.WithFile(path)
		}
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*ProjectConfig, error) {
	cfg := &ProjectConfig{}
	var err error

	if cfg.ProjectName, err = stringValue(v, "project_name", defaultProjectName); err != nil {
		return nil, err
	}
	if cfg.Compiler, err = stringValue(v, "compiler", defaultCompiler); err != nil {
		return nil, err
	}

	outputDefault := defaultOutputPath
	if v.IsSet("project_name") && cfg.ProjectName != "" {
		outputDefault = "dist/" + cfg.ProjectName
	}
	if cfg.OutputPath, err = stringValue(v, "output_path", outputDefault); err != nil {
		return nil, err
	}
	if cfg.BuildDir, err = stringValue(v, "build_dir", defaultBuildDir); err != nil {
		return nil, err
	}
	if cfg.WatchDir, err = stringValue(v, "watch_dir", defaultWatchDir); err != nil {
		return nil, err
	}

	if cfg.SourceFiles, err = stringList(v, "source_files", true); err != nil {
		return nil, err
	}
	if cfg.CompilerFlags, err = stringList(v, "compiler_flags", false); err != nil {
		return nil, err
	}
	if cfg.LinkerFlags, err = stringList(v, "linker_flags", false); err != nil {
		return nil, err
	}
	if cfg.IncludePaths, err = stringList(v, "include_paths", false); err != nil {
		return nil, err
	}
	if cfg.WatchIgnore, err = stringList(v, "watch_ignore", false); err != nil {
		return nil, err
	}

	cfg.Dependencies = make(map[string]string)
	if raw := v.Get("dependencies"); raw != nil {
		deps, ok := raw.(map[string]interface{})
		if !ok {
			return nil, codaerrors.NewConfigError(codaerrors.CodeConfigInvalid, "'dependencies' must be an object", nil)
		}
		for name, url := range deps {
			s, ok := url.(string)
			if !ok {
				return nil, codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
					fmt.Sprintf("dependency %q must map to a URL string", name), nil)
			}
			cfg.Dependencies[name] = s
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stringValue(v *viper.Viper, key, fallback string) (string, error) {
	raw := v.Get(key)
	if raw == nil {
		return fallback, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
			fmt.Sprintf("'%s' must be a string", key), nil)
	}
	return s, nil
}

// stringList returns the list stored under key. Order is preserved; a missing
// optional key yields an empty list.
func stringList(v *viper.Viper, key string, required bool) ([]string, error) {
	raw := v.Get(key)
	if raw == nil {
		if required {
			return nil, codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
				fmt.Sprintf("'%s' is required", key), nil)
		}
		return []string{}, nil
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
			fmt.Sprintf("'%s' must be a JSON array", key), nil)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
				fmt.Sprintf("all items in '%s' must be strings", key), nil)
		}
		out = append(out, s)
	}
	return out, nil
}

// AddDependency records name -> url under "dependencies", creating the file
// when it does not exist yet.
func AddDependency(path, name, url string) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return codaerrors.NewConfigError(codaerrors.CodeConfigInvalid,
			"cannot parse configuration", err).WithFile(path)
	}

	v.Set("dependencies"+keyDelimiter+strings.ToLower(name), url)

	if err := v.WriteConfigAs(path); err != nil {
		return codaerrors.NewConfigError(codaerrors.CodeConfigWrite,
			"cannot write configuration", err).WithFile(path)
	}
	return nil
}

// Default returns the descriptor written by "coda init".
func Default(projectName string) *ProjectConfig {
	if projectName == "" {
		projectName = "NewCodaProject"
	}
	return &ProjectConfig{
		ProjectName:   projectName,
		Compiler:      defaultCompiler,
		OutputPath:    "dist/app_name",
		SourceFiles:   []string{"src/main.c"},
		CompilerFlags: []string{},
		LinkerFlags:   []string{},
		IncludePaths:  []string{},
		Dependencies:  map[string]string{},
	}
}

// Write saves cfg to path. An existing file is only replaced when overwrite is set.
func Write(path string, cfg *ProjectConfig, overwrite bool) error {
	v := newViper(path)
	v.Set("project_name", cfg.ProjectName)
	v.Set("compiler", cfg.Compiler)
	v.Set("output_path", cfg.OutputPath)
	v.Set("source_files", nonNil(cfg.SourceFiles))
	v.Set("compiler_flags", nonNil(cfg.CompilerFlags))
	v.Set("linker_flags", nonNil(cfg.LinkerFlags))
	v.Set("include_paths", nonNil(cfg.IncludePaths))

	deps := make(map[string]interface{}, len(cfg.Dependencies))
	for name, url := range cfg.Dependencies {
		deps[name] = url
	}
	v.Set("dependencies", deps)

	if cfg.BuildDir != "" && cfg.BuildDir != defaultBuildDir {
		v.Set("build_dir", cfg.BuildDir)
	}
	if cfg.WatchDir != "" && cfg.WatchDir != defaultWatchDir {
		v.Set("watch_dir", cfg.WatchDir)
	}
	if len(cfg.WatchIgnore) > 0 {
		v.Set("watch_ignore", cfg.WatchIgnore)
	}

	var err error
	if overwrite {
		err = v.WriteConfigAs(path)
	} else {
		err = v.SafeWriteConfigAs(path)
	}
	if err != nil {
		return codaerrors.NewConfigError(codaerrors.CodeConfigWrite,
			"cannot write configuration", err).WithFile(path)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
