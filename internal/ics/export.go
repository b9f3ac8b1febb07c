// Package ics moves task collections across the iCalendar boundary:
// export renders templates as VEVENTs, import parses feeds back into
// templates, and the RRULE codec maps repeat rules both ways.
package ics

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/taskwell/taskwell/internal/dateutil"
	"github.com/taskwell/taskwell/internal/domain"
	"github.com/taskwell/taskwell/internal/lunar"
)

const (
	productID     = "-//taskwell//taskwell//EN"
	untitledEvent = "Untitled"
)

// ExportOptions tunes an export run.
type ExportOptions struct {
	// CalendarName becomes X-WR-CALNAME. Empty means "Taskwell".
	CalendarName string

	// Now anchors the two-year lunisolar expansion window and the
	// DTSTAMP values. Zero means time.Now().
	Now time.Time

	// NormalizeDurations rewrites day-spanning DURATION values from
	// PnDT... to PnD for calendar apps that reject the combined form.
	NormalizeDurations bool
}

var durationDayT = regexp.MustCompile(`DURATION:P(\d+)DT`)

// Export renders the collection as an iCalendar document. Only root
// templates with a start date become events; dateless children are
// folded into their parent's description as checklist lines, and dated
// children become events of their own. Lunisolar rules are expanded
// into one-off events covering the current and next Gregorian year.
func Export(tasks []*domain.Task, opts ExportOptions) (string, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	calName := opts.CalendarName
	if calName == "" {
		calName = "Taskwell"
	}

	childrenOf := make(map[string][]*domain.Task)
	var roots []*domain.Task
	for _, t := range tasks {
		if t.ParentID == "" {
			roots = append(roots, t)
		} else {
			childrenOf[t.ParentID] = append(childrenOf[t.ParentID], t)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].ID < roots[j].ID })
	for _, cs := range childrenOf {
		sort.Slice(cs, func(i, j int) bool {
			if cs[i].Sort != cs[j].Sort {
				return cs[i].Sort < cs[j].Sort
			}
			return cs[i].ID < cs[j].ID
		})
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	cal.Props.SetText("X-WR-CALNAME", calName)

	for _, root := range roots {
		if root.Date == "" {
			continue
		}

		title := root.Title
		if title == "" {
			title = untitledEvent
		}
		description := root.Note

		for _, child := range childrenOf[root.ID] {
			if child.Date == "" && child.Time == "" {
				line := child.Title
				if line == "" {
					line = untitledEvent
				}
				if child.Note != "" {
					line += ": " + child.Note
				}
				description += "\n- " + line
				continue
			}
			appendEventComponents(cal, child, root.Date, now)
		}

		appendEventComponents(cal, root, root.Date, now)
	}

	var buf strings.Builder
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode calendar: %w", err)
	}

	out := buf.String()
	if opts.NormalizeDurations {
		out = durationDayT.ReplaceAllString(out, "DURATION:P${1}D")
	}
	return out, nil
}

// appendEventComponents renders one template (root or dated child) into
// the calendar, expanding lunisolar rules into one-off events.
func appendEventComponents(cal *ical.Calendar, t *domain.Task, fallbackDate string, now time.Time) {
	date := t.Date
	if date == "" {
		date = fallbackDate
	}
	if date == "" {
		return
	}

	if t.Repeating() && t.Repeat.Type == domain.RepeatLunarYearly {
		for offset := 0; offset < 2; offset++ {
			solar, err := lunar.LunarToSolar(now.Year()+offset, t.Repeat.LunarMonth, t.Repeat.LunarDay, t.Repeat.IsLeapMonth)
			if err != nil {
				continue
			}
			cal.Children = append(cal.Children, buildEvent(t, solar, "", now))
		}
		return
	}

	if t.Repeating() && t.Repeat.Type == domain.RepeatLunarMonthly {
		if t.Repeat.LunarDay == 0 {
			return
		}
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.Local)
		end := time.Date(now.Year()+1, 12, 31, 0, 0, 0, 0, time.Local)
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			ld, err := lunar.SolarToLunar(dateutil.FormatDate(d))
			if err != nil || ld.Day != t.Repeat.LunarDay {
				continue
			}
			cal.Children = append(cal.Children, buildEvent(t, dateutil.FormatDate(d), "", now))
		}
		return
	}

	cal.Children = append(cal.Children, buildEvent(t, date, EncodeRepeat(t.Repeat), now))
}

// buildEvent renders a single VEVENT. A non-empty rule forces a relative
// DURATION instead of an absolute DTEND, since a recurring event's end
// must move with each occurrence.
func buildEvent(t *domain.Task, date, rule string, now time.Time) *ical.Component {
	title := t.Title
	if title == "" {
		title = untitledEvent
	}

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, eventUID(t, date))
	ev.Props.SetText(ical.PropSummary, title)
	if t.Note != "" {
		ev.Props.SetText(ical.PropDescription, t.Note)
	}
	if t.Completed {
		ev.Props.SetText(ical.PropStatus, "COMPLETED")
	} else {
		ev.Props.SetText(ical.PropStatus, "TENTATIVE")
	}
	setValue(ev.Props, ical.PropDateTimeStamp, now.UTC().Format("20060102T150405Z"))

	timed := t.Time != ""
	if timed {
		setValue(ev.Props, ical.PropDateTimeStart, compactDateTime(date, t.Time))
		switch {
		case rule != "":
			setValue(ev.Props, ical.PropDuration, timedDuration(t.Time, t.EndTime))
		case t.EndTime != "":
			endDate := t.EndDate
			if endDate == "" {
				endDate = date
			}
			setValue(ev.Props, ical.PropDateTimeEnd, compactDateTime(endDate, t.EndTime))
		default:
			setValue(ev.Props, ical.PropDuration, "PT1H")
		}
	} else {
		setDateValue(ev.Props, ical.PropDateTimeStart, date)
		if rule != "" {
			setValue(ev.Props, ical.PropDuration, "P1D")
		} else {
			// All-day DTEND is exclusive: one day past the inclusive end.
			endDate := date
			if t.EndDate != "" && t.EndDate != date {
				endDate = t.EndDate
			}
			if next, err := dateutil.AddDays(endDate, 1); err == nil {
				setDateValue(ev.Props, ical.PropDateTimeEnd, next)
			}
		}
	}

	if rule != "" {
		setValue(ev.Props, ical.PropRecurrenceRule, rule)
	}

	if t.CreatedAt != "" {
		if created, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
			setValue(ev.Props, ical.PropCreated, created.UTC().Format("20060102T150405Z"))
		}
	}

	if !t.Completed && timed {
		alarm := ical.NewComponent(ical.CompAlarm)
		alarm.Props.SetText(ical.PropAction, "DISPLAY")
		alarm.Props.SetText(ical.PropDescription, title)
		setValue(alarm.Props, ical.PropTrigger, "-PT15M")
		ev.Children = append(ev.Children, alarm)
	}

	return ev.Component
}

func eventUID(t *domain.Task, date string) string {
	uid := t.ID + "-" + date
	if t.Time != "" {
		uid += "-" + strings.ReplaceAll(t.Time, ":", "")
	}
	return uid + "@taskwell"
}

// timedDuration renders the span between two HH:MM times, falling back
// to one hour for missing or inverted ends.
func timedDuration(start, end string) string {
	if start == "" || end == "" {
		return "PT1H"
	}
	s, err1 := time.Parse(dateutil.TimeLayout, start)
	e, err2 := time.Parse(dateutil.TimeLayout, end)
	if err1 != nil || err2 != nil {
		return "PT1H"
	}
	d := e.Sub(s)
	if d <= 0 {
		return "PT1H"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	out := "PT"
	if h > 0 {
		out += fmt.Sprintf("%dH", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dM", m)
	}
	return out
}

func compactDateTime(date, tm string) string {
	return strings.ReplaceAll(date, "-", "") + "T" + strings.ReplaceAll(tm, ":", "") + "00"
}

func setValue(props ical.Props, name, value string) {
	p := ical.NewProp(name)
	p.Value = value
	props.Set(p)
}

func setDateValue(props ical.Props, name, date string) {
	p := ical.NewProp(name)
	p.Value = strings.ReplaceAll(date, "-", "")
	p.SetValueType(ical.ValueDate)
	props.Set(p)
}
