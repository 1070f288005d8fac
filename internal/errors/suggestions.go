package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// SuggestionContext provides context for generating suggestions
type SuggestionContext struct {
	ConfigPath  string
	PackageList []string
}

// Suggest returns remediation hints for err, or nil when there are none.
func Suggest(err error, ctx *SuggestionContext) []ErrorSuggestion {
	var ce *CodaError
	if !errors.As(err, &ce) {
		return nil
	}
	if ctx == nil {
		ctx = &SuggestionContext{}
	}
	if ctx.ConfigPath == "" {
		ctx.ConfigPath = "coda.json"
	}

	switch ce.Code {
	case CodeConfigMissing:
		return []ErrorSuggestion{
			{
				Title:       "Create a project",
				Description: "No descriptor was found at " + ctx.ConfigPath,
				Command:     "coda init",
			},
			{
				Title:       "Point coda at an existing descriptor",
				Description: "Use --config or CODA_CONFIG_FILE",
				Command:     "coda build --config path/to/coda.json",
			},
		}
	case CodeConfigInvalid:
		return ConfigurationError(ce.Error(), ctx)
	case CodeSourceUnreadable:
		return []ErrorSuggestion{{
			Title:       "Check source_files",
			Description: fmt.Sprintf("%q could not be read; paths are relative to the working directory", ce.FilePath),
			Command:     "coda config validate",
		}}
	case CodeAggregateCreate:
		return []ErrorSuggestion{{
			Title:       "Create the build directory",
			Description: "The aggregate unit is written inside build_dir, which must exist",
			Command:     "mkdir -p build",
		}}
	case CodeSpawnFailure:
		return SpawnFailureError(ce)
	case CodePackageNotFound:
		return PackageNotFoundError(ce, ctx)
	case CodeWatchFatal, CodeWatchInit:
		if strings.Contains(ce.Error(), "too many open files") || strings.Contains(ce.Error(), "no space left") {
			return []ErrorSuggestion{{
				Title:       "Raise the inotify limits",
				Description: "The kernel ran out of watch descriptors",
				Command:     "sysctl fs.inotify.max_user_watches=524288",
			}}
		}
	}
	return nil
}

// SpawnFailureError generates suggestions for a compiler that would not start
func SpawnFailureError(ce *CodaError) []ErrorSuggestion {
	compiler, _ := ce.Context["compiler"].(string)
	suggestions := []ErrorSuggestion{
		{
			Title:       "Check the compiler is installed",
			Description: fmt.Sprintf("%q must be an executable on PATH or a path to one", compiler),
			Command:     "command -v " + compiler,
		},
		{
			Title:       "Override the compiler",
			Description: "Set CODA_COMPILER or edit the compiler field",
			Example:     `"compiler": "gcc"`,
		},
	}
	return suggestions
}

// PackageNotFoundError generates suggestions for unknown registry names
func PackageNotFoundError(ce *CodaError, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{{
		Title:       "List available packages",
		Description: "Only registry packages can be installed by name",
		Command:     "coda install --list",
	}}

	name, _ := ce.Context["package"].(string)
	name = strings.ToLower(name)
	if name == "" {
		return suggestions
	}
	for _, candidate := range ctx.PackageList {
		if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
			suggestions = append(suggestions, ErrorSuggestion{
				Title:       "Did you mean '" + candidate + "'?",
				Description: "Similar package found",
				Command:     "coda install " + candidate,
			})
			break
		}
	}
	return suggestions
}

// ConfigurationError generates suggestions for configuration issues
func ConfigurationError(configError string, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "Validate configuration",
			Description: "Use the config validate command to check for issues",
			Command:     "coda config validate",
		},
	}

	lower := strings.ToLower(configError)
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix JSON syntax",
			Description: ctx.ConfigPath + " is not valid JSON",
			Example:     "Check for trailing commas and unquoted keys",
		})
	}
	if strings.Contains(lower, "source_files") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "List the sources to compile",
			Description: "source_files is an ordered list of C files",
			Example:     `"source_files": ["src/main.c"]`,
		})
	}

	return suggestions
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
	}

	return output.String()
}
