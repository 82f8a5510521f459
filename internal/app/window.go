package app

import "time"

// ParseStart parses a start boundary that may be RFC3339 or YYYY-MM-DD.
// Empty or invalid input yields defaultVal.
func ParseStart(val string, defaultVal time.Time) time.Time {
	t, ok := parseBoundary(val, false)
	if !ok {
		return defaultVal
	}
	return t
}

// ParseEnd parses an end boundary that may be RFC3339 or YYYY-MM-DD.
// Date-only form is treated as inclusive by converting to next-day 00:00 UTC.
// Empty or invalid input yields defaultVal.
func ParseEnd(val string, defaultVal time.Time) time.Time {
	t, ok := parseBoundary(val, true)
	if !ok {
		return defaultVal
	}
	return t
}

// ValidBoundary reports whether val is empty or parses as a boundary.
func ValidBoundary(val string) bool {
	if val == "" {
		return true
	}
	_, ok := parseBoundary(val, false)
	return ok
}

func parseBoundary(val string, inclusiveEnd bool) (time.Time, bool) {
	if val == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, true
	}
	d, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, false
	}
	if inclusiveEnd {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
}

// NextMidnight returns the next midnight after t in t's location.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	// t at or after today's midnight: schedule for the next day to avoid a double run.
	return midnight.AddDate(0, 0, 1)
}

// DailyWindow returns the local day that ends at next, expressed in UTC.
// The day is computed on the calendar so it spans 23h or 25h across DST changes.
func DailyWindow(next time.Time) (from, to time.Time) {
	return next.AddDate(0, 0, -1).UTC(), next.UTC()
}
