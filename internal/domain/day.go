package domain

import "time"

// Day truncates t to its calendar day at UTC midnight. All measurement dates
// are stored and compared in this normalized form.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDay renders a day as "2006-01-02" for storage keys.
func FormatDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDay parses a "2006-01-02" storage key back into a UTC-midnight day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// DisplayDay renders a day in the "02.01.2006" form shown to the user.
func DisplayDay(t time.Time) string {
	return t.Format("02.01.2006")
}

// ParseDisplayDay parses user input in "02.01.2006" form.
func ParseDisplayDay(s string) (time.Time, error) {
	return time.Parse("02.01.2006", s)
}
