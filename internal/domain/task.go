package domain

import (
	"time"

	"github.com/taskwell/taskwell/internal/dateutil"
)

// Task is the persisted template record. Recurrence expands it into
// per-date occurrences; it is the only shape ever written to storage.
//
// Dates are naive local YYYY-MM-DD strings and times are HH:MM strings,
// matching the on-disk JSON collections.
type Task struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Note  string   `json:"note,omitempty"`
	UID   string   `json:"uid,omitempty"` // iCalendar UID for import dedupe
	Prio  Priority `json:"priority,omitempty"`

	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	EndDate string `json:"endDate,omitempty"`
	EndTime string `json:"endTime,omitempty"`

	Completed     bool   `json:"completed,omitempty"`
	CompletedTime string `json:"completedTime,omitempty"`

	// Tree and classification links.
	ParentID   string `json:"parentId,omitempty"`
	ProjectID  string `json:"projectId,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`

	// Manual ordering among siblings; regenerated as dense multiples of 10.
	Sort int `json:"sort,omitempty"`

	// Optional link back to a host document block.
	BlockID string `json:"blockId,omitempty"`
	DocID   string `json:"docId,omitempty"`

	Tags      []string `json:"tagIds,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"` // RFC 3339

	Repeat *Repeat `json:"repeat,omitempty"`

	// Set only on records that originate from a subscription. IsSubscribed
	// is transient: it is stamped during merge and stripped before the
	// record is written back to its subscription file.
	IsSubscribed   bool   `json:"isSubscribed,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
}

// Repeating reports whether the task carries an enabled repeat rule.
func (t *Task) Repeating() bool {
	return t.Repeat != nil && t.Repeat.Enabled
}

// IsPast reports whether the task's scheduled span has fully elapsed at now.
// Timed tasks compare their effective end date and time; all-day tasks are
// past only strictly after their inclusive end date.
func (t *Task) IsPast(now time.Time) bool {
	if t.Date == "" {
		return false
	}

	today := dateutil.FormatDate(now)
	endDate := t.EndDate
	if endDate == "" {
		endDate = t.Date
	}
	endTime := t.EndTime
	if endTime == "" {
		endTime = t.Time
	}

	if endTime != "" {
		switch dateutil.Compare(endDate, today) {
		case -1:
			return true
		case 1:
			return false
		default:
			return endTime <= dateutil.FormatTime(now)
		}
	}

	if t.EndDate != "" {
		return dateutil.Compare(t.EndDate, today) < 0
	}
	return dateutil.Compare(t.Date, today) < 0
}

// Clone returns a deep copy. Occurrence synthesis and merge tagging mutate
// copies, never the stored template.
func (t *Task) Clone() *Task {
	c := *t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Repeat != nil {
		c.Repeat = t.Repeat.Clone()
	}
	return &c
}
