package cmd

import (
	"fmt"
	"strings"

	"github.com/conneroisu/coda/internal/logging"
	"github.com/spf13/pflag"
)

// AddFlagValidation makes flagName on fs reject values validator refuses, so
// mistakes surface at parse time rather than deep inside a command.
func AddFlagValidation(fs *pflag.FlagSet, flagName string, validator func(string) error) {
	flag := fs.Lookup(flagName)
	if flag == nil {
		return
	}

	// Store original value setter
	originalSet := flag.Value.Set

	// Create wrapper that validates
	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidateOneOf accepts any of choices, case-insensitively.
func ValidateOneOf(choices ...string) func(string) error {
	return func(val string) error {
		for _, c := range choices {
			if strings.EqualFold(val, c) {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s, got %q", strings.Join(choices, ", "), val)
	}
}

// ValidateLogLevel accepts the names logging.ParseLevel understands.
func ValidateLogLevel(val string) error {
	_, err := logging.ParseLevel(val)
	return err
}

// normalizeFlagName lets underscores stand in for dashes (--log_level).
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}
