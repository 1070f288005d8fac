// Package errors provides the structured error taxonomy shared by the build
// engine, the watch supervisor and the CLI.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeSpawn    ErrorType = "spawn"
	ErrorTypeCompile  ErrorType = "compile"
	ErrorTypeWatch    ErrorType = "watch"
	ErrorTypeInstall  ErrorType = "install"
	ErrorTypeInternal ErrorType = "internal"
)

// Error codes used across packages.
const (
	CodeSourceUnreadable = "SOURCE_UNREADABLE"
	CodeAggregateCreate  = "AGGREGATE_CREATE"
	CodeAggregateLock    = "AGGREGATE_LOCK"
	CodeSpawnFailure     = "SPAWN_FAILURE"
	CodeNonZeroExit      = "NON_ZERO_EXIT"
	CodeSignaled         = "SIGNALED"
	CodeConfigMissing    = "CONFIG_MISSING"
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeConfigWrite      = "CONFIG_WRITE"
	CodeWatchInit        = "WATCH_INIT"
	CodeWatchSubscribe   = "WATCH_SUBSCRIBE"
	CodeWatchFatal       = "WATCH_FATAL"
	CodePackageNotFound  = "PACKAGE_NOT_FOUND"
	CodeCloneFailed      = "CLONE_FAILED"
	CodeInvalidState     = "INVALID_STATE"
	CodeFileWrite        = "FILE_WRITE"
)

// CodaError is a structured error type with context.
type CodaError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *CodaError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *CodaError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *CodaError) Is(target error) bool {
	var t *CodaError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *CodaError) WithContext(key string, value interface{}) *CodaError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile records the file the error is about.
func (e *CodaError) WithFile(path string) *CodaError {
	e.FilePath = path

	return e
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string, cause error) *CodaError {
	return &CodaError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *CodaError {
	return &CodaError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewSpawnError creates an error for a compiler process that could not be started.
func NewSpawnError(message string, cause error) *CodaError {
	return &CodaError{
		Type:    ErrorTypeSpawn,
		Code:    CodeSpawnFailure,
		Message: message,
		Cause:   cause,
	}
}

// NewCompileError creates an error for a compiler that ran and reported failure.
// Compile errors are recoverable in watch mode: the next change may fix them.
func NewCompileError(code, message string, cause error) *CodaError {
	return &CodaError{
		Type:        ErrorTypeCompile,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewWatchError creates a file watching error.
func NewWatchError(code, message string, cause error) *CodaError {
	return &CodaError{
		Type:    ErrorTypeWatch,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInstallError creates a dependency installation error.
func NewInstallError(code, message string, cause error) *CodaError {
	return &CodaError{
		Type:    ErrorTypeInstall,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *CodaError {
	return &CodaError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsType reports whether err is a CodaError of the given type.
func IsType(err error, t ErrorType) bool {
	var ce *CodaError
	if errors.As(err, &ce) {
		return ce.Type == t
	}

	return false
}

// HasCode reports whether err is a CodaError carrying the given code.
func HasCode(err error, code string) bool {
	var ce *CodaError
	if errors.As(err, &ce) {
		return ce.Code == code
	}

	return false
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ce *CodaError
	if errors.As(err, &ce) {
		return ce.Recoverable
	}

	return false
}

// ExitCode maps an error to the process exit code. Every failure is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	return 1
}
