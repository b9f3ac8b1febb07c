// Package dateutil provides naive local-date helpers shared by the rest of
// the module. Dates travel as YYYY-MM-DD strings and times as HH:MM strings;
// no timezone conversion is ever applied.
package dateutil

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for calendar dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for clock times.
	TimeLayout = "15:04"
	// DateTimeLayout is the wire format for completion timestamps.
	DateTimeLayout = "2006-01-02 15:04"
)

// FormatDate renders t as a local YYYY-MM-DD string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders t as a local HH:MM string.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// FormatDateTime renders t as "YYYY-MM-DD HH:MM".
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// ParseDate parses a YYYY-MM-DD string into a local midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseDateTime parses a date plus an optional HH:MM time. An empty timeStr
// yields local midnight.
func ParseDateTime(dateStr, timeStr string) (time.Time, error) {
	if timeStr == "" {
		return ParseDate(dateStr)
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, dateStr+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date-time %q %q", dateStr, timeStr)
	}
	return t, nil
}

// Compare orders two YYYY-MM-DD strings. Returns -1 when a is earlier than b,
// 0 when equal and 1 when later. The fixed-width format makes lexicographic
// comparison correct.
func Compare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AddDays shifts a date string by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the number of calendar days from a to b. Negative when
// b is earlier than a. Both dates are re-anchored at UTC midnight before
// subtracting so that a DST transition between them cannot shave the interval
// below a whole day.
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDate(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDate(b)
	if err != nil {
		return 0, err
	}
	ua := time.Date(ta.Year(), ta.Month(), ta.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(tb.Year(), tb.Month(), tb.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour)), nil
}

// LogicalDate computes the logical calendar day that t belongs to. dayStart
// is the clock offset at which the day begins: zero keeps midnight
// boundaries, a positive offset (say 4h) folds the small hours into the
// previous day, and a negative offset starts the day before midnight.
func LogicalDate(t time.Time, dayStart time.Duration) string {
	return FormatDate(t.Add(-dayStart))
}

// Today returns the current logical date for the given day-start offset.
func Today(dayStart time.Duration) string {
	return LogicalDate(time.Now(), dayStart)
}
