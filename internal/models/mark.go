// Package models defines the records stored by ago.
package models

import (
	"fmt"
	"regexp"
	"time"
)

var markNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// Mark is a named timestamp whose recency is displayed as "time ago" text.
type Mark struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	TimestampMs int64     `json:"timestamp_ms"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate validates the mark.
func (m *Mark) Validate() error {
	if err := ValidateMarkName(m.Name); err != nil {
		return err
	}
	if m.TimestampMs < 0 {
		return fmt.Errorf("timestamp must not be negative: %d", m.TimestampMs)
	}
	return nil
}

// ValidateMarkName checks that name is 1-64 characters of lowercase letters,
// digits, '.', '_' or '-', starting with a letter or digit.
func ValidateMarkName(name string) error {
	if name == "" {
		return fmt.Errorf("mark name is required")
	}
	if !markNamePattern.MatchString(name) {
		return fmt.Errorf("invalid mark name %q: use lowercase letters, digits, '.', '_' or '-'", name)
	}
	return nil
}

// Time returns the mark's timestamp as a time.Time.
func (m *Mark) Time() time.Time {
	return time.UnixMilli(m.TimestampMs)
}
