package domain

// Priority represents the priority level of a task.
// Value object - immutable string enum.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// RepeatType represents the cadence kind of a repeat rule.
// Value object - immutable string enum.
type RepeatType string

const (
	RepeatDaily        RepeatType = "daily"
	RepeatWeekly       RepeatType = "weekly"
	RepeatMonthly      RepeatType = "monthly"
	RepeatYearly       RepeatType = "yearly"
	RepeatCustom       RepeatType = "custom"
	RepeatLunarYearly  RepeatType = "lunar-yearly"
	RepeatLunarMonthly RepeatType = "lunar-monthly"
)

// IsLunar reports whether the type is one of the lunisolar kinds.
func (t RepeatType) IsLunar() bool {
	return t == RepeatLunarYearly || t == RepeatLunarMonthly
}

// EndType represents how a repeat rule terminates.
type EndType string

const (
	EndNever EndType = "never"
	EndCount EndType = "count"
	EndDate  EndType = "date"
)

// SyncInterval represents how often a subscription refreshes.
type SyncInterval string

const (
	SyncManual      SyncInterval = "manual"
	SyncEvery15Min  SyncInterval = "15min"
	SyncEvery30Min  SyncInterval = "30min"
	SyncHourly      SyncInterval = "hourly"
	SyncEvery4Hours SyncInterval = "4hour"
	SyncEvery12Hrs  SyncInterval = "12hour"
	SyncDaily       SyncInterval = "daily"
)
