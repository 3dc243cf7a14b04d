package util

import "time"

// StartOfWeek returns Sunday 00:00 of the week containing t, in t's location
func StartOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// PreviousWeek returns the start of the week before weekStart
func PreviousWeek(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, -7)
}

// WithinDays reports whether t is no more than days*24h before now.
// The boundary itself counts as within. Days are fixed 24h spans, so a DST
// change inside the window does not move the boundary.
func WithinDays(t, now time.Time, days int) bool {
	return !t.Before(now.Add(-time.Duration(days) * 24 * time.Hour))
}

// ParseDate parses a YYYY-MM-DD date in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, loc)
}
