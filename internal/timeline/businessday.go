package timeline

import (
	"errors"
	"math"
	"time"
)

// HoursPerDay is the number of productive hours in one working day.
const HoursPerDay = 6

// ErrNegativeDays is returned by AddBusinessDays for a negative count.
var ErrNegativeDays = errors.New("business day count must not be negative")

// HoursToBusinessDays converts an effort estimate to whole working days.
// Every item occupies at least one day, so zero and negative hours map to 1.
func HoursToBusinessDays(hours float64) int {
	if !(hours > 0) {
		return 1
	}
	days := int(math.Ceil(hours / HoursPerDay))
	if days < 1 {
		return 1
	}
	return days
}

// IsBusinessDay reports whether t falls on a weekday in its own location.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// AddBusinessDays walks forward one calendar day at a time and stops after
// counting days weekdays. Weekend days are skipped without being counted.
// Zero returns t unchanged.
func AddBusinessDays(t time.Time, days int) (time.Time, error) {
	if days < 0 {
		return t, ErrNegativeDays
	}
	return addBusinessDays(t, days), nil
}

func addBusinessDays(t time.Time, days int) time.Time {
	for remaining := days; remaining > 0; {
		t = t.AddDate(0, 0, 1)
		if IsBusinessDay(t) {
			remaining--
		}
	}
	return t
}
