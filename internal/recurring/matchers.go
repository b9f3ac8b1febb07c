package recurring

import (
	"time"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/lunar"
)

// PatternMatcher decides whether a rule fires on a given calendar day.
// anchor is the rule's start date; current is the day under test, always
// on or after anchor.
type PatternMatcher interface {
	Matches(anchor, current time.Time, rule *domain.Repeat) bool
}

// MatcherFor returns the matcher for the given repeat type. Unknown types
// fall back to a daily cadence so malformed imported rules still surface
// somewhere visible instead of vanishing.
func MatcherFor(t domain.RepeatType) PatternMatcher {
	switch t {
	case domain.RepeatDaily:
		return &DailyMatcher{}
	case domain.RepeatWeekly:
		return &WeeklyMatcher{}
	case domain.RepeatMonthly:
		return &MonthlyMatcher{}
	case domain.RepeatYearly:
		return &YearlyMatcher{}
	case domain.RepeatCustom:
		return &CustomMatcher{}
	case domain.RepeatLunarMonthly:
		return &LunarMonthlyMatcher{}
	case domain.RepeatLunarYearly:
		return &LunarYearlyMatcher{}
	default:
		return &DailyMatcher{}
	}
}

// DailyMatcher fires every interval days from the anchor.
type DailyMatcher struct{}

func (m *DailyMatcher) Matches(anchor, current time.Time, rule *domain.Repeat) bool {
	days := daysBetween(anchor, current)
	return days >= 0 && days%rule.EffectiveInterval() == 0
}

// WeeklyMatcher fires on the listed weekdays, or on the anchor's weekday
// every interval weeks when no weekdays are listed.
type WeeklyMatcher struct{}

func (m *WeeklyMatcher) Matches(anchor, current time.Time, rule *domain.Repeat) bool {
	if len(rule.WeekDays) > 0 {
		return containsInt(rule.WeekDays, int(current.Weekday()))
	}
	days := daysBetween(anchor, current)
	if days < 0 || current.Weekday() != anchor.Weekday() {
		return false
	}
	return (days/7)%rule.EffectiveInterval() == 0
}

// MonthlyMatcher fires on the listed days of month, or on the anchor's day
// of month every interval months when no days are listed. Months lacking
// the day are skipped.
type MonthlyMatcher struct{}

func (m *MonthlyMatcher) Matches(anchor, current time.Time, rule *domain.Repeat) bool {
	if len(rule.MonthDays) > 0 {
		return containsInt(rule.MonthDays, current.Day())
	}
	if current.Day() != anchor.Day() {
		return false
	}
	months := (current.Year()-anchor.Year())*12 + int(current.Month()) - int(anchor.Month())
	return months >= 0 && months%rule.EffectiveInterval() == 0
}

// YearlyMatcher fires on the listed month/day combinations, or on the
// anchor's month and day every interval years when none are listed.
type YearlyMatcher struct{}

func (m *YearlyMatcher) Matches(anchor, current time.Time, rule *domain.Repeat) bool {
	if len(rule.Months) > 0 && len(rule.MonthDays) > 0 {
		return containsInt(rule.Months, int(current.Month())) &&
			containsInt(rule.MonthDays, current.Day())
	}
	if current.Month() != anchor.Month() || current.Day() != anchor.Day() {
		return false
	}
	years := current.Year() - anchor.Year()
	return years >= 0 && years%rule.EffectiveInterval() == 0
}

// CustomMatcher fires when the day passes every selector the rule sets:
// weekday, day of month, and month. Unset selectors match everything.
type CustomMatcher struct{}

func (m *CustomMatcher) Matches(anchor, current time.Time, rule *domain.Repeat) bool {
	if len(rule.WeekDays) > 0 && !containsInt(rule.WeekDays, int(current.Weekday())) {
		return false
	}
	if len(rule.MonthDays) > 0 && !containsInt(rule.MonthDays, current.Day()) {
		return false
	}
	if len(rule.Months) > 0 && !containsInt(rule.Months, int(current.Month())) {
		return false
	}
	return !current.Before(anchor)
}

// LunarMonthlyMatcher fires on the rule's lunisolar day of every lunisolar
// month. Days the conversion cannot express never match.
type LunarMonthlyMatcher struct{}

func (m *LunarMonthlyMatcher) Matches(anchor, current time.Time, rule *domain.Repeat) bool {
	if rule.LunarDay == 0 {
		return false
	}
	ld, err := lunar.SolarToLunar(current.Format("2006-01-02"))
	if err != nil {
		return false
	}
	return ld.Day == rule.LunarDay
}

// LunarYearlyMatcher fires on the rule's lunisolar month and day, with the
// leap-month flag matched exactly so a rule bound to a regular month never
// fires in its leap twin.
type LunarYearlyMatcher struct{}

func (m *LunarYearlyMatcher) Matches(anchor, current time.Time, rule *domain.Repeat) bool {
	if rule.LunarMonth == 0 || rule.LunarDay == 0 {
		return false
	}
	ld, err := lunar.SolarToLunar(current.Format("2006-01-02"))
	if err != nil {
		return false
	}
	return ld.Month == rule.LunarMonth && ld.Day == rule.LunarDay && ld.Leap == rule.IsLeapMonth
}

// daysBetween counts calendar days from a to b, immune to DST-shortened
// days in the local zone.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
