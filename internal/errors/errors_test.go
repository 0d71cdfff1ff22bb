package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindInvalidArgs, "InvalidArgs"},
		{KindNotFound, "NotFound"},
		{KindConflict, "Conflict"},
		{KindInternal, "Internal"},
		{KindGeneral, "General"},
		{Kind(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := WrapInternal(cause, "failed to list marks")

	expected := "failed to list marks: disk I/O error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		exitCode int
		status   int
	}{
		{"InvalidArgs", InvalidArgs("timestamp %q is not an integer", "abc"), 2, http.StatusBadRequest},
		{"NotFound", NotFound("mark %q not found", "deploy"), 3, http.StatusNotFound},
		{"Conflict", Conflict("mark %q already exists", "deploy"), 6, http.StatusConflict},
		{"Internal", Wrap(fmt.Errorf("disk full"), KindInternal, "db error"), 5, http.StatusInternalServerError},
		{"General", &Error{Kind: KindGeneral, Message: "general error"}, 1, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.CLIExitCode(); got != tt.exitCode {
				t.Errorf("CLIExitCode() = %d, want %d", got, tt.exitCode)
			}
			if got := tt.err.HTTPStatus(); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestChaining(t *testing.T) {
	err := NotFound("mark %q not found", "deploy").
		WithDetails("name", "deploy").
		WithSuggestion("Run 'ago mark list' to see available marks.")

	if err.Details["name"] != "deploy" {
		t.Errorf("Details[name] = %v, want %q", err.Details["name"], "deploy")
	}
	if err.Suggestion == "" {
		t.Error("Suggestion should not be empty")
	}
}

func TestHelpersSeeWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("ago: %w", NotFound("mark %q not found", "x"))
	plain := errors.New("standard error")

	if got := GetKind(wrapped); got != KindNotFound {
		t.Errorf("GetKind(wrapped) = %v, want %v", got, KindNotFound)
	}
	if got := GetKind(plain); got != KindGeneral {
		t.Errorf("GetKind(plain) = %v, want %v", got, KindGeneral)
	}
	if got := GetCLIExitCode(wrapped); got != 3 {
		t.Errorf("GetCLIExitCode(wrapped) = %d, want 3", got)
	}
	if got := GetCLIExitCode(plain); got != 1 {
		t.Errorf("GetCLIExitCode(plain) = %d, want 1", got)
	}
	if got := GetHTTPStatus(wrapped); got != http.StatusNotFound {
		t.Errorf("GetHTTPStatus(wrapped) = %d, want %d", got, http.StatusNotFound)
	}
	if got := GetHTTPStatus(plain); got != http.StatusInternalServerError {
		t.Errorf("GetHTTPStatus(plain) = %d, want %d", got, http.StatusInternalServerError)
	}
	if !Is(wrapped, KindNotFound) || Is(wrapped, KindConflict) || Is(plain, KindNotFound) {
		t.Error("Is() returned an unexpected result")
	}
}
