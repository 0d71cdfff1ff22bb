// Package errors provides the error kinds shared by the ago CLI, store and API.
// Each kind maps to both a CLI exit code and an HTTP status code.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind is the category of an error.
type Kind int

const (
	// KindInvalidArgs: bad input such as a non-numeric timestamp.
	// CLI exit code 2, HTTP 400.
	KindInvalidArgs Kind = iota

	// KindNotFound: a mark that does not exist.
	// CLI exit code 3, HTTP 404.
	KindNotFound

	// KindConflict: a mark name that is already taken.
	// CLI exit code 6, HTTP 409.
	KindConflict

	// KindInternal: storage failures.
	// CLI exit code 5, HTTP 500.
	KindInternal

	// KindGeneral: anything else.
	// CLI exit code 1, HTTP 500.
	KindGeneral
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgs:
		return "InvalidArgs"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindInternal:
		return "Internal"
	case KindGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// Error is a structured error with a kind, message, optional cause and suggestion.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Details    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the CLI exit code for this error.
func (e *Error) CLIExitCode() int {
	switch e.Kind {
	case KindInvalidArgs:
		return 2
	case KindNotFound:
		return 3
	case KindInternal:
		return 5
	case KindConflict:
		return 6
	default:
		return 1
	}
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidArgs:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WithDetails adds a detail and returns the error for chaining.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets a suggestion and returns the error for chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates an error for missing resources.
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

// InvalidArgs creates an error for invalid arguments.
func InvalidArgs(format string, args ...interface{}) *Error {
	return newError(KindInvalidArgs, format, args...)
}

// Conflict creates an error for a resource that already exists.
func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// Wrap wraps err with a kind and message.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	e := newError(kind, format, args...)
	e.Cause = err
	return e
}

// WrapInternal wraps err as an internal error.
func WrapInternal(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetKind returns the kind of the first *Error in err's chain, or KindGeneral.
func GetKind(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode returns the CLI exit code for err.
func GetCLIExitCode(err error) int {
	if e, ok := As(err); ok {
		return e.CLIExitCode()
	}
	return 1
}

// GetHTTPStatus returns the HTTP status code for err.
func GetHTTPStatus(err error) int {
	if e, ok := As(err); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if e, ok := As(err); ok {
		return e.Kind == kind
	}
	return false
}
