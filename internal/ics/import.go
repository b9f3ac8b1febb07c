package ics

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/taskwell/taskwell/internal/dateutil"
	"github.com/taskwell/taskwell/internal/domain"
)

// ParsedEvent is one VEVENT lifted out of a feed, in collection terms.
type ParsedEvent struct {
	UID         string
	Title       string
	Description string

	Date    string // YYYY-MM-DD, empty for dateless events
	Time    string // HH:MM, empty for all-day events
	EndDate string // inclusive
	EndTime string

	// Completed is meaningful only when StatusKnown is set; feeds
	// without a STATUS line leave an existing record's state alone.
	Completed   bool
	StatusKnown bool

	CreatedAt string // RFC 3339
	Repeat    *domain.Repeat
}

// IsPast reports whether the event's effective end lies before now.
func (ev ParsedEvent) IsPast(now time.Time) bool {
	if ev.Date == "" {
		return false
	}
	today := dateutil.FormatDate(now)
	endDate := ev.EndDate
	if endDate == "" {
		endDate = ev.Date
	}
	endTime := ev.EndTime
	if endTime == "" {
		endTime = ev.Time
	}

	if endTime != "" {
		if c := dateutil.Compare(endDate, today); c != 0 {
			return c < 0
		}
		return endTime <= dateutil.FormatTime(now)
	}
	return dateutil.Compare(endDate, today) < 0
}

// Parse decodes every VEVENT in the document. Events without a summary,
// and fields that fail to parse, are skipped rather than failing the
// whole feed; only an unreadable document is an error.
func Parse(icsText string) ([]ParsedEvent, error) {
	dec := ical.NewDecoder(strings.NewReader(icsText))

	var events []ParsedEvent
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse calendar: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			if ev, ok := parseEvent(comp); ok {
				events = append(events, ev)
			}
		}
	}
	return events, nil
}

var (
	leadingDate = regexp.MustCompile(`^(\d{4})-?(\d{2})-?(\d{2})`)
	compactDate = regexp.MustCompile(`^\d{8}$`)
)

func parseEvent(comp *ical.Component) (ParsedEvent, bool) {
	title, err := comp.Props.Text(ical.PropSummary)
	if err != nil || title == "" {
		return ParsedEvent{}, false
	}

	ev := ParsedEvent{Title: title}
	if uid, err := comp.Props.Text(ical.PropUID); err == nil {
		ev.UID = uid
	}
	if desc, err := comp.Props.Text(ical.PropDescription); err == nil {
		ev.Description = desc
	}

	if date, tm, ok := parseDateProp(comp.Props.Get(ical.PropDateTimeStart)); ok {
		ev.Date, ev.Time = date, tm
	}
	if date, tm, ok := parseDateProp(comp.Props.Get(ical.PropDateTimeEnd)); ok {
		if tm == "" {
			// All-day DTEND is exclusive; store the inclusive end.
			if inclusive, err := dateutil.AddDays(date, -1); err == nil {
				ev.EndDate = inclusive
			}
		} else {
			ev.EndDate, ev.EndTime = date, tm
		}
	}

	if status := propValue(comp.Props.Get(ical.PropStatus)); status != "" {
		ev.StatusKnown = true
		ev.Completed = strings.EqualFold(status, "COMPLETED")
	}

	if created := comp.Props.Get(ical.PropCreated); created != nil {
		if t, err := created.DateTime(time.UTC); err == nil {
			ev.CreatedAt = t.Format(time.RFC3339)
		}
	}

	if rr := comp.Props.Get(ical.PropRecurrenceRule); rr != nil {
		if repeat, err := DecodeRRule(rr.Value); err == nil {
			ev.Repeat = repeat
		}
	}

	return ev, true
}

// parseDateProp reads a DTSTART/DTEND property: VALUE=DATE and bare
// YYYYMMDD values are all-day, everything else is a local date-time.
// Malformed values degrade to their leading date when one is present.
func parseDateProp(prop *ical.Prop) (date, tm string, ok bool) {
	if prop == nil {
		return "", "", false
	}
	value := prop.Value

	if m := compactDate.FindString(value); m != "" {
		return m[:4] + "-" + m[4:6] + "-" + m[6:8], "", true
	}
	if prop.ValueType() == ical.ValueDate {
		if m := leadingDate.FindStringSubmatch(value); m != nil {
			return m[1] + "-" + m[2] + "-" + m[3], "", true
		}
		return "", "", false
	}

	if t, err := prop.DateTime(time.Local); err == nil {
		return dateutil.FormatDate(t), dateutil.FormatTime(t), true
	}
	if m := leadingDate.FindStringSubmatch(value); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3], "", true
	}
	return "", "", false
}

func propValue(prop *ical.Prop) string {
	if prop == nil {
		return ""
	}
	return prop.Value
}

// MergeOptions are the bulk assignments applied to every imported
// record.
type MergeOptions struct {
	ProjectID  string
	CategoryID string
	Tags       []string
	Priority   domain.Priority
}

// MergeStats summarizes one merge.
type MergeStats struct {
	Added   int
	Updated int
	Total   int
}

// Merge folds parsed events into a copy of the existing collection.
// An event updates the first record sharing its UID (or, failing that,
// its exact title); otherwise it is inserted as a new record, already
// completed when its dates lie entirely in the past.
func Merge(existing map[string]*domain.Task, events []ParsedEvent, opts MergeOptions, now time.Time) (map[string]*domain.Task, MergeStats, error) {
	merged := make(map[string]*domain.Task, len(existing)+len(events))
	for id, t := range existing {
		merged[id] = t.Clone()
	}

	stats := MergeStats{Total: len(events)}
	for _, ev := range events {
		if target := findMatch(merged, ev); target != nil {
			applyEvent(target, ev)
			if opts.ProjectID != "" {
				target.ProjectID = opts.ProjectID
			}
			if opts.CategoryID != "" {
				target.CategoryID = opts.CategoryID
			}
			if len(opts.Tags) > 0 {
				target.Tags = append([]string(nil), opts.Tags...)
			}
			if opts.Priority != "" {
				target.Prio = opts.Priority
			}
			stats.Updated++
			continue
		}

		id, err := uuid.NewV7()
		if err != nil {
			return nil, MergeStats{}, fmt.Errorf("failed to generate task id: %w", err)
		}
		t := &domain.Task{ID: id.String()}
		applyEvent(t, ev)
		t.ProjectID = opts.ProjectID
		t.CategoryID = opts.CategoryID
		t.Tags = append([]string(nil), opts.Tags...)
		t.Prio = opts.Priority
		if t.Prio == "" {
			t.Prio = domain.PriorityNone
		}
		if !t.Completed && ev.IsPast(now) {
			t.Completed = true
		}
		if t.CreatedAt == "" {
			t.CreatedAt = now.Format(time.RFC3339)
		}
		merged[t.ID] = t
		stats.Added++
	}

	return merged, stats, nil
}

func findMatch(tasks map[string]*domain.Task, ev ParsedEvent) *domain.Task {
	var byTitle *domain.Task
	for _, t := range tasks {
		if ev.UID != "" && t.UID == ev.UID {
			return t
		}
		if byTitle == nil && t.Title == ev.Title {
			byTitle = t
		}
	}
	return byTitle
}

func applyEvent(t *domain.Task, ev ParsedEvent) {
	t.Title = ev.Title
	t.Note = ev.Description
	t.UID = ev.UID
	t.Date = ev.Date
	t.Time = ev.Time
	t.EndDate = ev.EndDate
	t.EndTime = ev.EndTime
	if ev.StatusKnown {
		t.Completed = ev.Completed
	}
	if ev.CreatedAt != "" {
		t.CreatedAt = ev.CreatedAt
	}
	if ev.Repeat != nil {
		t.Repeat = ev.Repeat.Clone()
	}
}

// ConvertEvents turns parsed events into standalone subscription
// records: ids are derived from the subscription so re-syncs stay
// stable, feed defaults come from the subscription, and events already
// entirely in the past arrive pre-completed.
func ConvertEvents(events []ParsedEvent, sub *domain.Subscription, now time.Time) []*domain.Task {
	out := make([]*domain.Task, 0, len(events))
	for i, ev := range events {
		t := &domain.Task{ID: subscriptionEventID(sub.ID, ev, i)}
		applyEvent(t, ev)
		t.ProjectID = sub.ProjectID
		t.CategoryID = sub.CategoryID
		t.Tags = append([]string(nil), sub.TagIDs...)
		t.Prio = sub.Prio
		if t.Prio == "" {
			t.Prio = domain.PriorityNone
		}
		t.SubscriptionID = sub.ID
		if !t.Completed && t.Repeat == nil && ev.IsPast(now) {
			t.Completed = true
		}
		if t.CreatedAt == "" {
			t.CreatedAt = now.Format(time.RFC3339)
		}
		out = append(out, t)
	}
	return out
}

// subscriptionEventID keeps one feed event on one stable record id
// across syncs, preferring the feed's own UID.
func subscriptionEventID(subID string, ev ParsedEvent, index int) string {
	if ev.UID != "" {
		return subID + "-" + sanitizeID(ev.UID)
	}
	return fmt.Sprintf("%s-event-%d", subID, index)
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9@._-]`)

func sanitizeID(s string) string {
	return unsafeIDChars.ReplaceAllString(s, "-")
}
