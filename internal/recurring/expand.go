// Package recurring turns repeat rules into concrete per-date occurrences.
// Expansion is a pure function of the template and the query window; the
// template itself is never mutated.
package recurring

import (
	"fmt"

	"github.com/taskwell/taskwell/internal/dateutil"
	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/ptr"
)

// DefaultMaxInstances bounds one expansion so a runaway rule cannot stall
// a listing.
const DefaultMaxInstances = 100

// Options configures an expansion.
type Options struct {
	// MaxInstances caps the number of emitted occurrences. Zero means
	// DefaultMaxInstances.
	MaxInstances int
}

func (o Options) maxInstances() int {
	if o.MaxInstances <= 0 {
		return DefaultMaxInstances
	}
	return o.MaxInstances
}

// Expand returns the occurrences of task that fall inside the inclusive
// [from, to] window, in ascending date order. Tasks without an enabled
// rule, and rules whose anchor date is malformed, expand to nothing.
//
// End-count rules are counted from the rule's own start, so querying a
// late window never shifts which dates a count-limited rule covers.
// Excluded dates neither emit nor consume the count.
func Expand(task *domain.Task, from, to string, opts Options) ([]domain.Occurrence, error) {
	if task == nil || !task.Repeating() {
		return nil, nil
	}
	rule := task.Repeat

	fromT, err := dateutil.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("invalid window start: %w", err)
	}
	toT, err := dateutil.ParseDate(to)
	if err != nil {
		return nil, fmt.Errorf("invalid window end: %w", err)
	}
	if toT.Before(fromT) {
		return nil, nil
	}

	// Lunisolar rules carry their cadence entirely in the rule, so a
	// dateless template starts scanning at the window itself.
	anchorStr := task.Date
	if anchorStr == "" {
		if !rule.Type.IsLunar() {
			return nil, nil
		}
		anchorStr = from
	}
	anchor, err := dateutil.ParseDate(anchorStr)
	if err != nil {
		return nil, nil
	}

	matcher := MatcherFor(rule.Type)
	hasEndCount := rule.EndType == domain.EndCount && rule.EndCount > 0
	hasEndDate := rule.EndType == domain.EndDate && rule.EndDate != ""

	spanDays := 0
	hasSpan := false
	if task.Date != "" && task.EndDate != "" {
		if d, err := dateutil.DaysBetween(task.Date, task.EndDate); err == nil && d > 0 {
			spanDays, hasSpan = d, true
		}
	}

	var out []domain.Occurrence
	matched := 0
	for cur := anchor; !cur.After(toT); cur = cur.AddDate(0, 0, 1) {
		ds := dateutil.FormatDate(cur)
		if hasEndDate && dateutil.Compare(ds, rule.EndDate) > 0 {
			break
		}
		if !matcher.Matches(anchor, cur, rule) {
			continue
		}
		if rule.IsExcluded(ds) {
			continue
		}
		if hasEndCount && matched >= rule.EndCount {
			break
		}
		matched++

		if dateutil.Compare(ds, from) < 0 {
			continue
		}
		out = append(out, materialize(task, ds, spanDays, hasSpan))
		if len(out) >= opts.maxInstances() {
			break
		}
	}
	return out, nil
}

// materialize builds the occurrence for the cadence date ds, applying any
// single-occurrence override and the per-date completion state.
func materialize(task *domain.Task, ds string, spanDays int, hasSpan bool) domain.Occurrence {
	rule := task.Repeat
	key := domain.OccurrenceKey{TemplateID: task.ID, Date: ds}

	t := *task.Clone()
	t.ID = key.String()
	t.Repeat = nil
	t.Date = ds
	t.EndDate = ""

	mod, hasMod := rule.InstanceModifications[ds]
	if hasMod {
		t.Date = ptr.Deref(mod.Date, t.Date)
		t.Time = ptr.Deref(mod.Time, t.Time)
		t.EndTime = ptr.Deref(mod.EndTime, t.EndTime)
		t.Title = ptr.Deref(mod.Title, t.Title)
		t.Note = ptr.Deref(mod.Note, t.Note)
		t.Prio = ptr.Deref(mod.Priority, t.Prio)
		t.ProjectID = ptr.Deref(mod.ProjectID, t.ProjectID)
		t.CategoryID = ptr.Deref(mod.CategoryID, t.CategoryID)
	}

	// Multi-day templates keep their span: the end date rides along at the
	// template's original distance from the (possibly overridden) start.
	switch {
	case hasMod && mod.EndDate != nil:
		t.EndDate = *mod.EndDate
	case hasSpan:
		if end, err := dateutil.AddDays(t.Date, spanDays); err == nil {
			t.EndDate = end
		}
	}

	t.Completed = rule.IsInstanceCompleted(ds)
	if t.Completed {
		t.CompletedTime = rule.CompletedTimes[ds]
	} else {
		t.CompletedTime = ""
	}

	return domain.Occurrence{Task: t, Key: key, IsRecurring: true}
}

// RuleEnded reports whether the rule can no longer produce occurrences on
// or after asOf. Count-limited rules require a scan from the anchor, which
// is bounded by asOf.
func RuleEnded(task *domain.Task, asOf string) bool {
	if task == nil || !task.Repeating() {
		return true
	}
	rule := task.Repeat

	switch rule.EndType {
	case domain.EndDate:
		return rule.EndDate != "" && dateutil.Compare(asOf, rule.EndDate) > 0
	case domain.EndCount:
		if rule.EndCount <= 0 {
			return false
		}
	default:
		return false
	}

	anchorStr := task.Date
	if anchorStr == "" {
		// Dateless lunisolar rules have no fixed start to count from.
		return false
	}
	anchor, err := dateutil.ParseDate(anchorStr)
	if err != nil {
		return true
	}
	asOfT, err := dateutil.ParseDate(asOf)
	if err != nil {
		return false
	}
	if asOfT.Before(anchor) {
		return false
	}

	matcher := MatcherFor(rule.Type)
	matched := 0
	for cur := anchor; cur.Before(asOfT); cur = cur.AddDate(0, 0, 1) {
		if !matcher.Matches(anchor, cur, rule) {
			continue
		}
		if rule.IsExcluded(dateutil.FormatDate(cur)) {
			continue
		}
		matched++
		if matched >= rule.EndCount {
			return true
		}
	}
	return false
}
