package build

import "github.com/conneroisu/coda/internal/config"

// mandatoryWarnings always precede user-supplied flags and cannot be overridden.
var mandatoryWarnings = []string{"-Wall", "-Wextra"}

// BuildArgs returns the full compiler argument vector, argv[0] included:
//
//	compiler -o output aggregate -Wall -Wextra <compiler_flags> <linker_flags> -I<include_paths>
//
// Every sequence keeps its configured order. Include paths are always
// prefixed with "-I", even when they already carry one.
func BuildArgs(cfg *config.ProjectConfig, aggregatePath string) []string {
	argv := make([]string, 0, 6+len(cfg.CompilerFlags)+len(cfg.LinkerFlags)+len(cfg.IncludePaths))

	argv = append(argv, cfg.Compiler, "-o", cfg.OutputPath, aggregatePath)
	argv = append(argv, mandatoryWarnings...)
	argv = append(argv, cfg.CompilerFlags...)
	argv = append(argv, cfg.LinkerFlags...)
	for _, inc := range cfg.IncludePaths {
		argv = append(argv, "-I"+inc)
	}

	return argv
}
