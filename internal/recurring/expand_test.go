package recurring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/ptr"
	"github.com/taskwell/taskwell/internal/recurring"
)

func expandDates(t *testing.T, task *domain.Task, from, to string) []string {
	t.Helper()
	occs, err := recurring.Expand(task, from, to, recurring.Options{})
	require.NoError(t, err)
	dates := make([]string, 0, len(occs))
	for _, o := range occs {
		dates = append(dates, o.Key.Date)
	}
	return dates
}

func TestExpandDaily(t *testing.T) {
	task := &domain.Task{
		ID:     "t1",
		Title:  "water plants",
		Date:   "2024-01-01",
		Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatDaily, Interval: 2},
	}

	dates := expandDates(t, task, "2024-01-01", "2024-01-07")
	assert.Equal(t, []string{"2024-01-01", "2024-01-03", "2024-01-05", "2024-01-07"}, dates)
}

func TestExpandWeeklyWithWeekDays(t *testing.T) {
	// 2024-01-01 is a Monday.
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-01",
		Repeat: &domain.Repeat{
			Enabled:  true,
			Type:     domain.RepeatWeekly,
			WeekDays: []int{1, 3}, // Monday, Wednesday
		},
	}

	dates := expandDates(t, task, "2024-01-01", "2024-01-14")
	assert.Equal(t, []string{"2024-01-01", "2024-01-03", "2024-01-08", "2024-01-10"}, dates)
}

func TestExpandWeeklyWeekDaysIgnoreInterval(t *testing.T) {
	// With a weekday selector the rule fires on every listed day of every
	// week; the interval only counts weeks when no selector is set.
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-01", // Monday
		Repeat: &domain.Repeat{
			Enabled:  true,
			Type:     domain.RepeatWeekly,
			WeekDays: []int{1},
			Interval: 2,
		},
	}

	dates := expandDates(t, task, "2024-01-01", "2024-01-21")
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15"}, dates)
}

func TestExpandWeeklySameWeekdayInterval(t *testing.T) {
	task := &domain.Task{
		ID:     "t1",
		Date:   "2024-01-01", // Monday
		Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatWeekly, Interval: 2},
	}

	dates := expandDates(t, task, "2024-01-01", "2024-02-01")
	assert.Equal(t, []string{"2024-01-01", "2024-01-15", "2024-01-29"}, dates)
}

func TestExpandMonthlySkipsShortMonths(t *testing.T) {
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-31",
		Repeat: &domain.Repeat{
			Enabled:   true,
			Type:      domain.RepeatMonthly,
			MonthDays: []int{31},
		},
	}

	// February 2024 has 29 days, so nothing fires.
	assert.Empty(t, expandDates(t, task, "2024-02-01", "2024-02-29"))
	assert.Equal(t, []string{"2024-03-31"}, expandDates(t, task, "2024-03-01", "2024-03-31"))
}

func TestExpandYearly(t *testing.T) {
	task := &domain.Task{
		ID:     "t1",
		Date:   "2023-06-15",
		Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatYearly},
	}

	dates := expandDates(t, task, "2024-01-01", "2025-12-31")
	assert.Equal(t, []string{"2024-06-15", "2025-06-15"}, dates)
}

func TestExpandCustomSelectors(t *testing.T) {
	// First Monday-or-Friday days of June 2024 that also sit on listed
	// month days.
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-06-01",
		Repeat: &domain.Repeat{
			Enabled:   true,
			Type:      domain.RepeatCustom,
			WeekDays:  []int{1, 5},
			Months:    []int{6},
			MonthDays: []int{3, 7, 10},
		},
	}

	// 2024-06-03 Monday, 2024-06-07 Friday, 2024-06-10 Monday.
	dates := expandDates(t, task, "2024-06-01", "2024-06-30")
	assert.Equal(t, []string{"2024-06-03", "2024-06-07", "2024-06-10"}, dates)
}

func TestExpandEndCountAnchoredToRuleStart(t *testing.T) {
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-01",
		Repeat: &domain.Repeat{
			Enabled:  true,
			Type:     domain.RepeatDaily,
			EndType:  domain.EndCount,
			EndCount: 5,
		},
	}

	// Occurrences 1-3 fall before the window; only 4 and 5 are emitted.
	dates := expandDates(t, task, "2024-01-04", "2024-01-10")
	assert.Equal(t, []string{"2024-01-04", "2024-01-05"}, dates)
}

func TestExpandExcludedDatesDoNotConsumeCount(t *testing.T) {
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-01",
		Repeat: &domain.Repeat{
			Enabled:      true,
			Type:         domain.RepeatDaily,
			EndType:      domain.EndCount,
			EndCount:     3,
			ExcludeDates: []string{"2024-01-02"},
		},
	}

	dates := expandDates(t, task, "2024-01-01", "2024-01-10")
	assert.Equal(t, []string{"2024-01-01", "2024-01-03", "2024-01-04"}, dates)
}

func TestExpandEndDate(t *testing.T) {
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-01",
		Repeat: &domain.Repeat{
			Enabled: true,
			Type:    domain.RepeatDaily,
			EndType: domain.EndDate,
			EndDate: "2024-01-03",
		},
	}

	dates := expandDates(t, task, "2024-01-01", "2024-01-10")
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, dates)
}

func TestExpandUnknownTypeFallsBackToDaily(t *testing.T) {
	task := &domain.Task{
		ID:     "t1",
		Date:   "2024-01-01",
		Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatType("every-blue-moon")},
	}

	dates := expandDates(t, task, "2024-01-01", "2024-01-03")
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, dates)
}

func TestExpandOverrides(t *testing.T) {
	task := &domain.Task{
		ID:    "t1",
		Title: "standup",
		Date:  "2024-01-01",
		Time:  "09:00",
		Repeat: &domain.Repeat{
			Enabled: true,
			Type:    domain.RepeatWeekly,
			InstanceModifications: map[string]domain.InstanceOverride{
				"2024-01-08": {
					Date:  ptr.To("2024-01-09"),
					Time:  ptr.To("14:00"),
					Title: ptr.To("standup (moved)"),
				},
			},
		},
	}

	occs, err := recurring.Expand(task, "2024-01-01", "2024-01-14", recurring.Options{})
	require.NoError(t, err)
	require.Len(t, occs, 2)

	assert.Equal(t, "2024-01-01", occs[0].Date)
	assert.Equal(t, "09:00", occs[0].Time)
	assert.Equal(t, "standup", occs[0].Title)

	// The key keeps the cadence date even when the override moves the day.
	moved := occs[1]
	assert.Equal(t, "2024-01-08", moved.Key.Date)
	assert.Equal(t, "t1_2024-01-08", moved.ID)
	assert.Equal(t, "2024-01-09", moved.Date)
	assert.Equal(t, "14:00", moved.Time)
	assert.Equal(t, "standup (moved)", moved.Title)
}

func TestExpandPreservesMultiDaySpan(t *testing.T) {
	task := &domain.Task{
		ID:      "t1",
		Date:    "2024-01-01",
		EndDate: "2024-01-03",
		Repeat:  &domain.Repeat{Enabled: true, Type: domain.RepeatWeekly},
	}

	occs, err := recurring.Expand(task, "2024-01-08", "2024-01-08", recurring.Options{})
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, "2024-01-08", occs[0].Date)
	assert.Equal(t, "2024-01-10", occs[0].EndDate)
}

func TestExpandCompletionState(t *testing.T) {
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-01",
		Repeat: &domain.Repeat{
			Enabled:            true,
			Type:               domain.RepeatDaily,
			CompletedInstances: []string{"2024-01-02"},
			CompletedTimes:     map[string]string{"2024-01-02": "2024-01-02 08:30"},
		},
	}

	occs, err := recurring.Expand(task, "2024-01-01", "2024-01-03", recurring.Options{})
	require.NoError(t, err)
	require.Len(t, occs, 3)

	assert.False(t, occs[0].Completed)
	assert.True(t, occs[1].Completed)
	assert.Equal(t, "2024-01-02 08:30", occs[1].CompletedTime)
	assert.False(t, occs[2].Completed)
}

func TestExpandIdempotent(t *testing.T) {
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-01",
		Repeat: &domain.Repeat{
			Enabled:  true,
			Type:     domain.RepeatWeekly,
			WeekDays: []int{1, 3},
		},
	}

	first, err := recurring.Expand(task, "2024-01-01", "2024-03-01", recurring.Options{})
	require.NoError(t, err)
	second, err := recurring.Expand(task, "2024-01-01", "2024-03-01", recurring.Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExpandMaxInstances(t *testing.T) {
	task := &domain.Task{
		ID:     "t1",
		Date:   "2024-01-01",
		Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatDaily},
	}

	occs, err := recurring.Expand(task, "2024-01-01", "2024-12-31", recurring.Options{MaxInstances: 10})
	require.NoError(t, err)
	assert.Len(t, occs, 10)

	occs, err = recurring.Expand(task, "2024-01-01", "2025-12-31", recurring.Options{})
	require.NoError(t, err)
	assert.Len(t, occs, recurring.DefaultMaxInstances)
}

func TestExpandNonRepeatingAndMissingAnchor(t *testing.T) {
	occs, err := recurring.Expand(&domain.Task{ID: "t1", Date: "2024-01-01"}, "2024-01-01", "2024-01-31", recurring.Options{})
	require.NoError(t, err)
	assert.Empty(t, occs)

	// A dateless solar rule has no anchor to expand from.
	occs, err = recurring.Expand(&domain.Task{
		ID:     "t2",
		Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatDaily},
	}, "2024-01-01", "2024-01-31", recurring.Options{})
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestExpandLunarYearly(t *testing.T) {
	// Mid-autumn festival: 15th day of the 8th lunisolar month.
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-01-01",
		Repeat: &domain.Repeat{
			Enabled:    true,
			Type:       domain.RepeatLunarYearly,
			LunarMonth: 8,
			LunarDay:   15,
		},
	}

	dates := expandDates(t, task, "2024-01-01", "2024-12-31")
	assert.Equal(t, []string{"2024-09-17"}, dates)
}

func TestExpandLunarYearlyDatelessAcrossYears(t *testing.T) {
	// Lunisolar new year: 1st day of the 1st month, no anchor date.
	task := &domain.Task{
		ID:   "t1",
		Repeat: &domain.Repeat{
			Enabled:    true,
			Type:       domain.RepeatLunarYearly,
			LunarMonth: 1,
			LunarDay:   1,
		},
	}

	dates := expandDates(t, task, "2024-01-01", "2025-12-31")
	assert.Equal(t, []string{"2024-02-10", "2025-01-29"}, dates)
}

func TestExpandLunarYearlyLeapMonth(t *testing.T) {
	// 2023 has a leap 2nd month starting 2023-03-22.
	leap := &domain.Task{
		ID:   "t1",
		Date: "2023-01-01",
		Repeat: &domain.Repeat{
			Enabled:     true,
			Type:        domain.RepeatLunarYearly,
			LunarMonth:  2,
			LunarDay:    1,
			IsLeapMonth: true,
		},
	}
	assert.Equal(t, []string{"2023-03-22"}, expandDates(t, leap, "2023-03-01", "2023-04-30"))

	// The regular 2nd month rule must not fire inside the leap month.
	regular := leap.Clone()
	regular.Repeat.IsLeapMonth = false
	assert.NotContains(t, expandDates(t, regular, "2023-03-01", "2023-04-30"), "2023-03-22")
}

func TestExpandLunarMonthly(t *testing.T) {
	task := &domain.Task{
		ID:   "t1",
		Date: "2024-09-01",
		Repeat: &domain.Repeat{
			Enabled:  true,
			Type:     domain.RepeatLunarMonthly,
			LunarDay: 15,
		},
	}

	dates := expandDates(t, task, "2024-09-01", "2024-09-30")
	assert.Equal(t, []string{"2024-09-17"}, dates)
}

func TestExpandLunarMisconfiguredRule(t *testing.T) {
	task := &domain.Task{
		ID:     "t1",
		Date:   "2024-01-01",
		Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatLunarYearly},
	}

	assert.Empty(t, expandDates(t, task, "2024-01-01", "2024-12-31"))
}

func TestRuleEnded(t *testing.T) {
	t.Run("end date passed", func(t *testing.T) {
		task := &domain.Task{
			ID:   "t1",
			Date: "2024-01-01",
			Repeat: &domain.Repeat{
				Enabled: true, Type: domain.RepeatDaily,
				EndType: domain.EndDate, EndDate: "2024-01-05",
			},
		}
		assert.False(t, recurring.RuleEnded(task, "2024-01-05"))
		assert.True(t, recurring.RuleEnded(task, "2024-01-06"))
	})

	t.Run("count exhausted", func(t *testing.T) {
		task := &domain.Task{
			ID:   "t1",
			Date: "2024-01-01",
			Repeat: &domain.Repeat{
				Enabled: true, Type: domain.RepeatDaily,
				EndType: domain.EndCount, EndCount: 3,
			},
		}
		// Third and last occurrence is 2024-01-03.
		assert.False(t, recurring.RuleEnded(task, "2024-01-03"))
		assert.True(t, recurring.RuleEnded(task, "2024-01-04"))
	})

	t.Run("never-ending rule", func(t *testing.T) {
		task := &domain.Task{
			ID:     "t1",
			Date:   "2024-01-01",
			Repeat: &domain.Repeat{Enabled: true, Type: domain.RepeatDaily},
		}
		assert.False(t, recurring.RuleEnded(task, "2099-01-01"))
	})
}
