package domain

import (
	"fmt"
	"strings"
)

// NewPriority validates and creates a Priority. The empty string maps to
// PriorityNone.
func NewPriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNone, nil
	}

	p := Priority(strings.ToLower(s))

	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, s)
	}
}

// NewRepeatType validates and creates a RepeatType.
func NewRepeatType(s string) (RepeatType, error) {
	t := RepeatType(strings.ToLower(s))

	switch t {
	case RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly,
		RepeatCustom, RepeatLunarYearly, RepeatLunarMonthly:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRepeatType, s)
	}
}

// NewSyncInterval validates and creates a SyncInterval. The empty string
// maps to SyncDaily, the most conservative automatic cadence.
func NewSyncInterval(s string) (SyncInterval, error) {
	if s == "" {
		return SyncDaily, nil
	}

	i := SyncInterval(strings.ToLower(s))

	switch i {
	case SyncManual, SyncEvery15Min, SyncEvery30Min, SyncHourly,
		SyncEvery4Hours, SyncEvery12Hrs, SyncDaily:
		return i, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidSyncInterval, s)
	}
}
