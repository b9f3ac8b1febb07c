package domain

// Repeat is the structured cadence description attached to a template.
type Repeat struct {
	Enabled  bool       `json:"enabled"`
	Type     RepeatType `json:"type"`
	Interval int        `json:"interval,omitempty"` // >= 1, default 1

	// Weekly/monthly/custom selectors. WeekDays uses 0=Sunday .. 6=Saturday,
	// MonthDays 1..31, Months 1..12.
	WeekDays  []int `json:"weekDays,omitempty"`
	MonthDays []int `json:"monthDays,omitempty"`
	Months    []int `json:"months,omitempty"`

	// Lunisolar selectors for the lunar-yearly and lunar-monthly kinds.
	LunarMonth  int  `json:"lunarMonth,omitempty"`
	LunarDay    int  `json:"lunarDay,omitempty"`
	IsLeapMonth bool `json:"isLeapMonth,omitempty"`

	EndType  EndType `json:"endType,omitempty"`
	EndCount int     `json:"endCount,omitempty"`
	EndDate  string  `json:"endDate,omitempty"`

	// Dates the rule must skip even when the cadence matches.
	ExcludeDates []string `json:"excludeDates,omitempty"`

	// Per-occurrence completion bookkeeping, keyed by the occurrence's
	// original (pre-override) date.
	CompletedInstances []string          `json:"completedInstances,omitempty"`
	CompletedTimes     map[string]string `json:"completedTimes,omitempty"`

	// Per-occurrence field overrides, keyed like CompletedInstances.
	InstanceModifications map[string]InstanceOverride `json:"instanceModifications,omitempty"`
}

// InstanceOverride is a partial edit of a single occurrence. Nil pointers
// mean "inherit from the template"; a set pointer overrides even with a zero
// value, so an occurrence note can be cleared without losing the template's.
type InstanceOverride struct {
	Date       *string   `json:"date,omitempty"`
	Time       *string   `json:"time,omitempty"`
	EndDate    *string   `json:"endDate,omitempty"`
	EndTime    *string   `json:"endTime,omitempty"`
	Title      *string   `json:"title,omitempty"`
	Note       *string   `json:"note,omitempty"`
	Priority   *Priority `json:"priority,omitempty"`
	ProjectID  *string   `json:"projectId,omitempty"`
	CategoryID *string   `json:"categoryId,omitempty"`
}

// EffectiveInterval returns the rule interval, treating unset and
// nonsensical values as 1.
func (r *Repeat) EffectiveInterval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// IsExcluded reports whether date is on the rule's exclusion list.
func (r *Repeat) IsExcluded(date string) bool {
	for _, d := range r.ExcludeDates {
		if d == date {
			return true
		}
	}
	return false
}

// IsInstanceCompleted reports whether the occurrence at date has been marked
// complete.
func (r *Repeat) IsInstanceCompleted(date string) bool {
	for _, d := range r.CompletedInstances {
		if d == date {
			return true
		}
	}
	return false
}

// MarkInstanceCompleted records completion of the occurrence at date with
// the given completion timestamp. Marking twice is a no-op.
func (r *Repeat) MarkInstanceCompleted(date, completedAt string) {
	if r.IsInstanceCompleted(date) {
		return
	}
	r.CompletedInstances = append(r.CompletedInstances, date)
	if completedAt != "" {
		if r.CompletedTimes == nil {
			r.CompletedTimes = make(map[string]string)
		}
		r.CompletedTimes[date] = completedAt
	}
}

// UnmarkInstanceCompleted reverses MarkInstanceCompleted.
func (r *Repeat) UnmarkInstanceCompleted(date string) {
	for i, d := range r.CompletedInstances {
		if d == date {
			r.CompletedInstances = append(r.CompletedInstances[:i], r.CompletedInstances[i+1:]...)
			break
		}
	}
	delete(r.CompletedTimes, date)
}

// Clone returns a deep copy of the rule.
func (r *Repeat) Clone() *Repeat {
	c := *r
	c.WeekDays = append([]int(nil), r.WeekDays...)
	c.MonthDays = append([]int(nil), r.MonthDays...)
	c.Months = append([]int(nil), r.Months...)
	c.ExcludeDates = append([]string(nil), r.ExcludeDates...)
	c.CompletedInstances = append([]string(nil), r.CompletedInstances...)
	if r.CompletedTimes != nil {
		c.CompletedTimes = make(map[string]string, len(r.CompletedTimes))
		for k, v := range r.CompletedTimes {
			c.CompletedTimes[k] = v
		}
	}
	if r.InstanceModifications != nil {
		c.InstanceModifications = make(map[string]InstanceOverride, len(r.InstanceModifications))
		for k, v := range r.InstanceModifications {
			c.InstanceModifications[k] = v
		}
	}
	return &c
}
