package ics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/taskwell/taskwell/internal/dateutil"
	"github.com/taskwell/taskwell/internal/domain"
)

var icalWeekdays = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// EncodeRepeat renders a repeat rule as an RRULE value. Lunisolar rules
// have no RRULE form and return the empty string; callers expand them
// into one-off events instead.
func EncodeRepeat(r *domain.Repeat) string {
	if r == nil || !r.Enabled || r.Type.IsLunar() {
		return ""
	}

	var parts []string
	intervalApplies := true
	switch r.Type {
	case domain.RepeatDaily:
		parts = append(parts, "FREQ=DAILY")
	case domain.RepeatWeekly:
		parts = append(parts, "FREQ=WEEKLY")
		if byday := bydayList(r.WeekDays); byday != "" {
			parts = append(parts, "BYDAY="+byday)
			// A weekday selector matches every listed day of every
			// week; expansion ignores the interval then, so the
			// exported rule must too.
			intervalApplies = false
		}
	case domain.RepeatMonthly:
		parts = append(parts, "FREQ=MONTHLY")
		if len(r.MonthDays) > 0 {
			parts = append(parts, "BYMONTHDAY="+intList(r.MonthDays))
		}
	case domain.RepeatYearly:
		parts = append(parts, "FREQ=YEARLY")
	case domain.RepeatCustom:
		// Custom rules are day filters, so DAILY plus BY* selectors
		// matches their expansion.
		parts = append(parts, "FREQ=DAILY")
		if byday := bydayList(r.WeekDays); byday != "" {
			parts = append(parts, "BYDAY="+byday)
		}
		if len(r.MonthDays) > 0 {
			parts = append(parts, "BYMONTHDAY="+intList(r.MonthDays))
		}
		if len(r.Months) > 0 {
			parts = append(parts, "BYMONTH="+intList(r.Months))
		}
	default:
		parts = append(parts, "FREQ=DAILY")
	}

	if intervalApplies && r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}

	switch {
	case r.EndType == domain.EndCount && r.EndCount > 0:
		parts = append(parts, fmt.Sprintf("COUNT=%d", r.EndCount))
	case r.EndType == domain.EndDate && r.EndDate != "":
		if end, err := dateutil.ParseDate(r.EndDate); err == nil {
			until := end.Add(24*time.Hour - time.Second).UTC()
			parts = append(parts, "UNTIL="+until.Format("20060102T150405Z"))
		}
	}

	return strings.Join(parts, ";")
}

// DecodeRRule maps an RRULE value back onto a repeat rule. Rules with
// several BYDAY entries become the custom type, since the simple weekly
// type carries exactly one cadence weekday. Unknown frequencies decode
// as daily.
func DecodeRRule(value string) (*domain.Repeat, error) {
	opt, err := rrule.StrToROption(value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}

	r := &domain.Repeat{Enabled: true}

	switch opt.Freq {
	case rrule.DAILY:
		r.Type = domain.RepeatDaily
	case rrule.WEEKLY:
		r.Type = domain.RepeatWeekly
	case rrule.MONTHLY:
		r.Type = domain.RepeatMonthly
	case rrule.YEARLY:
		r.Type = domain.RepeatYearly
	default:
		r.Type = domain.RepeatDaily
	}

	if opt.Interval > 1 {
		r.Interval = opt.Interval
	}

	switch {
	case opt.Count > 0:
		r.EndType = domain.EndCount
		r.EndCount = opt.Count
	case !opt.Until.IsZero():
		r.EndType = domain.EndDate
		r.EndDate = dateutil.FormatDate(opt.Until.Local())
	default:
		r.EndType = domain.EndNever
	}

	if len(opt.Byweekday) > 0 {
		for _, wd := range opt.Byweekday {
			// rrule weekdays index from Monday; ours from Sunday.
			r.WeekDays = append(r.WeekDays, (wd.Day()+1)%7)
		}
		sort.Ints(r.WeekDays)
		if len(r.WeekDays) > 1 {
			r.Type = domain.RepeatCustom
		}
	}

	if len(opt.Bymonthday) > 0 {
		r.MonthDays = append(r.MonthDays, opt.Bymonthday...)
		sort.Ints(r.MonthDays)
	}
	if len(opt.Bymonth) > 0 {
		r.Months = append(r.Months, opt.Bymonth...)
		sort.Ints(r.Months)
	}

	return r, nil
}

func bydayList(weekDays []int) string {
	var days []string
	for _, d := range weekDays {
		if d >= 0 && d < 7 {
			days = append(days, icalWeekdays[d])
		}
	}
	return strings.Join(days, ",")
}

func intList(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
