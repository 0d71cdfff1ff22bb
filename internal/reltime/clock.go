package reltime

import "time"

// Clock provides the current instant in milliseconds since the Unix epoch.
// Use SystemClock in production and FixedClock in tests.
type Clock interface {
	NowMillis() int64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// NowMillis returns the current time.
func (SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }

// FixedClock always reports the same instant.
type FixedClock int64

// NowMillis returns the fixed instant.
func (c FixedClock) NowMillis() int64 { return int64(c) }

// ClockFunc adapts an ordinary function to the Clock interface.
type ClockFunc func() int64

// NowMillis calls f.
func (f ClockFunc) NowMillis() int64 { return f() }
