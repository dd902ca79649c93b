package attendance

import (
	"strings"
	"time"
)

// TimestampParser turns a raw date/time cell into a zone-naive time.
type TimestampParser func(value string) (time.Time, error)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 03:04 PM",
	"1/2/06 15:04",
	"1/2/06 3:04 PM",
	"2006-01-02 3:04:05 PM",
	"2006-01-02 3:04 PM",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006 15:04",
}

// ParseTimestamp accepts ISO, US month/day/year and 12-hour AM/PM forms.
// Zone information in RFC3339 input is dropped; the wall clock is kept.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return time.Time{}, ErrUnparseableStamp
	}
	upper := strings.ToUpper(value)
	for _, layout := range timestampLayouts {
		candidate := value
		if strings.Contains(layout, "PM") {
			candidate = upper
		}
		if parsed, err := time.ParseInLocation(layout, candidate, time.UTC); err == nil {
			return parsed, nil
		}
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC), nil
	}
	return time.Time{}, ErrUnparseableStamp
}
