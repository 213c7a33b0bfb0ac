package repository

import "time"

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// nowUTC returns the current UTC time formatted for storage.
func nowUTC() string {
	return time.Now().UTC().Format(timeLayout)
}

// formatTime stores t in UTC, or the current time when t is zero.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return nowUTC()
	}
	return t.UTC().Format(timeLayout)
}
