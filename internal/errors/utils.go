package errors

import (
	"errors"
	"fmt"
)

// FormatError formats an error for display, naming the failing phase.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var ce *CodaError
	if errors.As(err, &ce) {
		return fmt.Sprintf("%s error: %s", ce.Type, ce.Error())
	}

	return err.Error()
}
