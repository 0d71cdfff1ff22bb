// Package reltime formats millisecond timestamps as short "time ago" strings
// such as "5 minutes ago", "3 hr ago" or "Just now".
//
// Elapsed time is sorted into a unit bucket by fixed thresholds:
//
//	< 1 minute   seconds
//	< 1 hour     minutes
//	< 1 day      hours
//	< 1 week     days
//	< 4 weeks    weeks
//	< 365 days   months (rounded, 2,628,003,000 ms each)
//	otherwise    years (365 days each)
//
// Months and years are fixed-length approximations; no calendar arithmetic is done.
package reltime

import (
	"math"
	"strconv"
	"time"
)

// JustNow is the text rendered for elapsed times under two seconds.
const JustNow = "Just now"

const agoSuffix = " ago"

// Bucket boundaries in milliseconds.
const (
	msPerSecond int64 = 1000
	msPerMinute       = 60 * msPerSecond
	msPerHour         = 60 * msPerMinute
	msPerDay          = 24 * msPerHour
	msPerWeek         = 7 * msPerDay
	msPerFourWeeks    = 4 * msPerWeek
	msPerYear         = 365 * msPerDay

	// msPerMonth is one average month; counts in the months bucket are rounded.
	msPerMonth int64 = 2628003000
)

// Rollover limits: a bucket whose count exceeds its limit is shown as
// exactly one of the next larger unit.
const (
	maxWeeks  = 3
	maxMonths = 12
)

// Unit is the granularity a Result is displayed in.
type Unit int

const (
	Second Unit = iota
	Minute
	Hour
	Day
	Week
	Month
	Year
)

var unitNames = [...]string{"second", "minute", "hour", "day", "week", "month", "year"}

var abbreviations = [...]string{"sec", "min", "hr", "day", "wk", "mth", "yr"}

// String returns the singular full unit name.
func (u Unit) String() string {
	if u < Second || u > Year {
		return "unknown"
	}
	return unitNames[u]
}

// word returns the unit word for count, already pluralized.
func (u Unit) word(count int64, abbreviate bool) string {
	if u < Second || u > Year {
		return u.String()
	}
	if u == Second {
		// Seconds are never suffix-pluralized: "5 sec", "5 seconds".
		if abbreviate {
			return "sec"
		}
		return "seconds"
	}
	w := unitNames[u]
	if abbreviate {
		w = abbreviations[u]
	}
	// Only counts above one take the plural; zero stays singular.
	if count > 1 {
		w += "s"
	}
	return w
}

// Result is an elapsed duration resolved to either the "Just now" sentinel
// or a count of some unit. Text renders it.
type Result struct {
	JustNow bool
	Count   int64
	Unit    Unit
}

// Text renders the result. Every result except the sentinel ends in " ago".
func (r Result) Text(abbreviate bool) string {
	if r.JustNow {
		return JustNow
	}
	return strconv.FormatInt(r.Count, 10) + " " + r.Unit.word(r.Count, abbreviate) + agoSuffix
}

// Classify picks the bucket and count for an elapsed duration in milliseconds.
// Negative durations (timestamps in the future) are treated as zero.
func Classify(elapsedMs int64) Result {
	d := elapsedMs
	if d < 0 {
		d = 0
	}
	switch {
	case d < msPerMinute:
		return seconds(d)
	case d < msPerHour:
		return minutes(d)
	case d < msPerDay:
		return hours(d)
	case d < msPerWeek:
		return days(d)
	case d < msPerFourWeeks:
		return weeks(d)
	case d < msPerYear:
		return months(d)
	default:
		return years(d)
	}
}

func seconds(d int64) Result {
	n := d / msPerSecond
	if n <= 1 {
		return Result{JustNow: true}
	}
	return Result{Count: n, Unit: Second}
}

func minutes(d int64) Result { return Result{Count: d / msPerMinute, Unit: Minute} }

func hours(d int64) Result { return Result{Count: d / msPerHour, Unit: Hour} }

func days(d int64) Result { return Result{Count: d / msPerDay, Unit: Day} }

func weeks(d int64) Result {
	n := d / msPerWeek
	if n > maxWeeks {
		return Result{Count: 1, Unit: Month}
	}
	return Result{Count: n, Unit: Week}
}

func months(d int64) Result {
	n := int64(math.Round(float64(d) / float64(msPerMonth)))
	if n == 0 {
		n = 1
	}
	if n > maxMonths {
		return Result{Count: 1, Unit: Year}
	}
	return Result{Count: n, Unit: Month}
}

func years(d int64) Result { return Result{Count: d / msPerYear, Unit: Year} }

// Formatter formats timestamps relative to the instant reported by its Clock.
// A Formatter holds no mutable state and is safe for concurrent use.
type Formatter struct {
	clock Clock
}

// New returns a Formatter reading the given clock. A nil clock means SystemClock.
func New(clock Clock) *Formatter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Formatter{clock: clock}
}

// Elapsed returns the milliseconds between timestampMs and now, clamped at
// zero and saturating at math.MaxInt64 instead of overflowing.
func (f *Formatter) Elapsed(timestampMs int64) int64 {
	now := f.clock.NowMillis()
	switch {
	case timestampMs < 0 && now > math.MaxInt64+timestampMs:
		return math.MaxInt64
	case timestampMs > 0 && now < math.MinInt64+timestampMs:
		return 0
	}
	d := now - timestampMs
	if d < 0 {
		return 0
	}
	return d
}

// Describe resolves timestampMs to a Result without rendering it.
func (f *Formatter) Describe(timestampMs int64) Result {
	return Classify(f.Elapsed(timestampMs))
}

// Format renders timestampMs relative to now, e.g. "2 hours ago" or, with
// abbreviate set, "2 hrs ago".
func (f *Formatter) Format(timestampMs int64, abbreviate bool) string {
	return f.Describe(timestampMs).Text(abbreviate)
}

// FormatTime is Format for a time.Time.
func (f *Formatter) FormatTime(t time.Time, abbreviate bool) string {
	return f.Format(t.UnixMilli(), abbreviate)
}

var std = New(SystemClock{})

// Format renders timestampMs relative to the wall clock.
func Format(timestampMs int64, abbreviate bool) string {
	return std.Format(timestampMs, abbreviate)
}

// FormatTime renders t relative to the wall clock.
func FormatTime(t time.Time, abbreviate bool) string {
	return std.FormatTime(t, abbreviate)
}
