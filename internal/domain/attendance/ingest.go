package attendance

import (
	"strings"
	"time"
	"unicode"
)

// ParseStatus normalizes the status labels used by terminal exports.
func ParseStatus(label string) (Status, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	switch b.String() {
	case "cin", "checkin", "in", "clockin", "signin", "punchin", "i", "masuk":
		return StatusCheckIn, nil
	case "cout", "checkout", "out", "clockout", "signout", "punchout", "o", "keluar":
		return StatusCheckOut, nil
	}
	return "", ErrUnknownStatusText
}

// Ingest turns raw rows into events. Bad rows are reported and skipped; the
// batch always completes.
func (r Rules) Ingest(rows []RawRow, parse TimestampParser) ([]Event, []RowParseError) {
	if parse == nil {
		parse = ParseTimestamp
	}
	events := make([]Event, 0, len(rows))
	var rowErrors []RowParseError
	for idx, row := range rows {
		event, rowErr := r.ingestRow(idx, row, parse)
		if rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}
		events = append(events, event)
	}
	return events, rowErrors
}

func (r Rules) ingestRow(idx int, row RawRow, parse TimestampParser) (Event, *RowParseError) {
	rowNumber := idx + 1
	required := []struct {
		field string
		value string
	}{
		{"dateTime", row.DateTime},
		{"name", row.Name},
		{"employeeNumber", row.EmployeeNumber},
		{"status", row.Status},
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			return Event{}, &RowParseError{Row: rowNumber, Field: req.field, Message: "missing value"}
		}
	}

	ts, err := parse(strings.TrimSpace(row.DateTime))
	if err != nil {
		return Event{}, &RowParseError{Row: rowNumber, Field: "dateTime", Message: "unparseable timestamp " + quote(row.DateTime)}
	}
	status, err := ParseStatus(row.Status)
	if err != nil {
		return Event{}, &RowParseError{Row: rowNumber, Field: "status", Message: "unknown status " + quote(row.Status)}
	}

	number := strings.TrimSpace(row.EmployeeNumber)
	event := Event{
		Timestamp:      ts,
		EmployeeID:     number,
		EmployeeNumber: number,
		Name:           strings.Join(strings.Fields(row.Name), " "),
		Department:     strings.TrimSpace(row.Department),
		Status:         status,
		OriginalStatus: status,
		ShiftType:      r.Classify(ts),
		OriginalIndex:  idx,
	}
	event.WorkingWeekStart = r.anchorDate(event)
	return event, nil
}

// anchorDate is the working date an event belongs to before any linking: a
// night check-out before noon belongs to the previous day's shift.
func (r Rules) anchorDate(e Event) time.Time {
	date := dateOf(e.Timestamp)
	if e.Status == StatusCheckOut && r.Classify(e.Timestamp) == ShiftNight && ClockOf(e.Timestamp) < r.Noon {
		return date.AddDate(0, 0, -1)
	}
	return date
}

func quote(value string) string {
	return "\"" + strings.TrimSpace(value) + "\""
}
