package domain

import "time"

// SyncStatus values recorded on a subscription after a refresh attempt.
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// Subscription is the metadata record for one externally sourced, read-mostly
// calendar. Its tasks live in a separate backing collection keyed by the
// subscription id.
type Subscription struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`

	// Every subscribed task is filed under a project.
	ProjectID  string   `json:"projectId"`
	CategoryID string   `json:"categoryId,omitempty"`
	Prio       Priority `json:"priority,omitempty"`
	TagIDs     []string `json:"tagIds,omitempty"`

	Interval SyncInterval `json:"syncInterval"`
	Enabled  bool         `json:"enabled"`

	LastSync       string `json:"lastSync,omitempty"` // RFC 3339
	LastSyncStatus string `json:"lastSyncStatus,omitempty"`
	LastSyncError  string `json:"lastSyncError,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
}

// SubscriptionSet is the persisted metadata collection, keyed by
// subscription id.
type SubscriptionSet struct {
	Subscriptions map[string]*Subscription `json:"subscriptions"`
}

// Enabled returns the enabled subscriptions in no particular order.
func (s *SubscriptionSet) Enabled() []*Subscription {
	var out []*Subscription
	for _, sub := range s.Subscriptions {
		if sub.Enabled {
			out = append(out, sub)
		}
	}
	return out
}

// SyncIntervalDuration maps a SyncInterval to its wall-clock period. Manual
// returns 0: never scheduled automatically. Unknown values fall back to
// daily.
func SyncIntervalDuration(i SyncInterval) time.Duration {
	switch i {
	case SyncManual:
		return 0
	case SyncEvery15Min:
		return 15 * time.Minute
	case SyncEvery30Min:
		return 30 * time.Minute
	case SyncHourly:
		return time.Hour
	case SyncEvery4Hours:
		return 4 * time.Hour
	case SyncEvery12Hrs:
		return 12 * time.Hour
	default:
		return 24 * time.Hour
	}
}
