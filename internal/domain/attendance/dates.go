package attendance

import (
	"math"
	"time"
)

// dateOf truncates t to midnight of its calendar date in t's location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(dateOf(to).Sub(dateOf(from)).Hours() / 24))
}

func sameDate(a, b time.Time) bool {
	return daysBetween(a, b) == 0
}

// DateKey formats a calendar date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDateKey parses a YYYY-MM-DD date in the naive (UTC) location.
func ParseDateKey(value string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, value, time.UTC)
}
