package utils

import (
	"fmt"
	"time"
)

const DayFormat = "2006-01-02"

// NormalizeDate reduces any accepted date representation to the canonical
// calendar-day string. Grouping bookings by anything other than this one
// form caused off-by-one-day bugs before, so every boundary goes through it.
func NormalizeDate(raw string) (string, error) {
	for _, layout := range []string{DayFormat, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DayFormat), nil
		}
	}
	return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
}

// Day formats a time as the canonical calendar-day string.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}
