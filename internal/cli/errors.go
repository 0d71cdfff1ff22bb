package cli

import (
	"errors"
	"fmt"
	"strings"

	agoerrors "github.com/spetersoncode/ago/internal/errors"
)

// AgoError is a CLI error with an exit code and optional suggestion.
type AgoError struct {
	Code       int
	Message    string
	Cause      error
	Suggestion string
}

func (e *AgoError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *AgoError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for any error.
// Errors from the store carry their own kind; those take precedence.
func ExitCode(err error) int {
	var werr *AgoError
	if errors.As(err, &werr) {
		return werr.Code
	}
	return agoerrors.GetCLIExitCode(err)
}

// FormatErrorMessage returns the error message with its suggestion, if any.
func FormatErrorMessage(err error) string {
	message, suggestion := err.Error(), ""

	var werr *AgoError
	if errors.As(err, &werr) {
		suggestion = werr.Suggestion
	} else if e, ok := agoerrors.As(err); ok {
		suggestion = e.Suggestion
	}

	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(message)
	if suggestion != "" {
		b.WriteString("\n\nSuggestion: ")
		b.WriteString(suggestion)
	}
	return b.String()
}

// ErrInvalidArgs creates an error for invalid arguments (exit code 2)
func ErrInvalidArgs(format string, args ...interface{}) error {
	return &AgoError{
		Code:    ExitInvalidArgs,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrInvalidArgsWithSuggestion creates an invalid-arguments error with a suggestion
func ErrInvalidArgsWithSuggestion(suggestion, format string, args ...interface{}) error {
	return &AgoError{
		Code:       ExitInvalidArgs,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: suggestion,
	}
}

// ErrNotFoundWithSuggestion creates a not found error (exit code 3) with a suggestion
func ErrNotFoundWithSuggestion(suggestion, format string, args ...interface{}) error {
	return &AgoError{
		Code:       ExitNotFound,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: suggestion,
	}
}

// ErrDatabase creates an error for database operations (exit code 5)
func ErrDatabase(cause error, format string, args ...interface{}) error {
	return &AgoError{
		Code:    ExitDBError,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// ErrGeneralWithCause creates a general error (exit code 1) with a cause
func ErrGeneralWithCause(cause error, format string, args ...interface{}) error {
	return &AgoError{
		Code:    ExitGeneralError,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Common suggestions
const (
	SuggestRunInit = "Run 'ago init' to create a new database."
	SuggestMillis  = "Timestamps are milliseconds since the Unix epoch, e.g. 1718452800000."
)
