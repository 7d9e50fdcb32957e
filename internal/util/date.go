package util

import "time"

// StartOfDay truncates t to midnight UTC. Due-date and payment-date
// comparisons are calendar comparisons, independent of time of day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays returns t advanced by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// OnOrBefore reports whether day a is the same calendar day as b or earlier.
func OnOrBefore(a, b time.Time) bool {
	return !StartOfDay(a).After(StartOfDay(b))
}

// MonthBounds returns the first day of the given month and the first day of
// the next month, both at midnight UTC.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
