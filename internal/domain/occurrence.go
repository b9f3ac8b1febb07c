package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// OccurrenceKey identifies one concrete occurrence of a template: the
// template id plus the occurrence's original date. It is carried as a
// structured value internally and serialised to "<id>_<YYYY-MM-DD>" only at
// API boundaries.
type OccurrenceKey struct {
	TemplateID string
	Date       string // YYYY-MM-DD, the pre-override cadence date
}

// String renders the key in its wire form.
func (k OccurrenceKey) String() string {
	return k.TemplateID + "_" + k.Date
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseOccurrenceKey parses a "<templateID>_<YYYY-MM-DD>" string. Template
// ids may themselves contain underscores, so the date is taken from the last
// separator.
func ParseOccurrenceKey(s string) (OccurrenceKey, error) {
	i := strings.LastIndex(s, "_")
	if i <= 0 || i == len(s)-1 {
		return OccurrenceKey{}, fmt.Errorf("%w: %q", ErrInvalidOccurrenceKey, s)
	}
	id, date := s[:i], s[i+1:]
	if !datePattern.MatchString(date) {
		return OccurrenceKey{}, fmt.Errorf("%w: %q", ErrInvalidOccurrenceKey, s)
	}
	return OccurrenceKey{TemplateID: id, Date: date}, nil
}

// Occurrence is the on-demand materialisation of a template for one date.
// It is never persisted: the embedded Task is a copy of the template with
// per-occurrence overrides and completion state already applied, and its ID
// field holds the serialised key.
type Occurrence struct {
	Task

	Key OccurrenceKey
	// IsRecurring distinguishes synthesized occurrences from one-off tasks
	// passed through a merged listing unchanged.
	IsRecurring bool
}
