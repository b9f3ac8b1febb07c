// Package lunar bridges Gregorian dates and the Chinese lunisolar calendar.
// Two repeat kinds (lunar-yearly and lunar-monthly) are defined in lunar
// terms and need conversion in both directions.
package lunar

import (
	"fmt"

	"github.com/6tail/lunar-go/calendar"

	"github.com/taskwell/taskwell/internal/dateutil"
)

// Date is a lunisolar calendar date. Month and Day are 1-based; Leap marks a
// leap (intercalary) month.
type Date struct {
	Year  int
	Month int
	Day   int
	Leap  bool
}

// SolarToLunar converts a YYYY-MM-DD Gregorian date to its lunar equivalent.
func SolarToLunar(solarDate string) (Date, error) {
	t, err := dateutil.ParseDate(solarDate)
	if err != nil {
		return Date{}, err
	}

	solar := calendar.NewSolarFromYmd(t.Year(), int(t.Month()), t.Day())
	l := solar.GetLunar()

	// The library reports leap months as negative month numbers.
	month := l.GetMonth()
	leap := month < 0
	if leap {
		month = -month
	}

	return Date{Year: l.GetYear(), Month: month, Day: l.GetDay(), Leap: leap}, nil
}

// LunarToSolar converts a lunar date in the given lunar year to a Gregorian
// YYYY-MM-DD string. It fails when the date does not exist: a day past the
// end of a short month, or a leap month the year does not have.
func LunarToSolar(year, month, day int, leap bool) (date string, err error) {
	if month < 1 || month > 12 || day < 1 || day > 30 {
		return "", fmt.Errorf("lunar date out of range: month %d day %d", month, day)
	}

	// The library panics on nonexistent lunar dates rather than returning an
	// error, so the conversion is fenced with a recover.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("no solar date for lunar %d-%d-%d (leap=%v): %v", year, month, day, leap, r)
		}
	}()

	m := month
	if leap {
		m = -month
	}
	l := calendar.NewLunarFromYmd(year, m, day)
	s := l.GetSolar()

	// Round-trip guard: the library clamps some invalid inputs instead of
	// panicking. Reject any conversion that does not map back.
	back := s.GetLunar()
	backMonth := back.GetMonth()
	backLeap := backMonth < 0
	if backLeap {
		backMonth = -backMonth
	}
	if backMonth != month || back.GetDay() != day || backLeap != leap {
		return "", fmt.Errorf("lunar %d-%d-%d (leap=%v) does not exist", year, month, day, leap)
	}

	return fmt.Sprintf("%04d-%02d-%02d", s.GetYear(), s.GetMonth(), s.GetDay()), nil
}
