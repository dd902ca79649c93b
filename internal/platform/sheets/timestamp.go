package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"punchclock/internal/domain/attendance"
)

// Serial numbers outside this range are not treated as dates (roughly 1954
// to 2119), so plain numbers in a date column still fail to parse.
const (
	minDateSerial = 20000
	maxDateSerial = 80000
)

// TimestampParser accepts Excel serial date numbers, which legacy .xls
// exports emit for date cells, and defers everything else to fallback.
func TimestampParser(fallback attendance.TimestampParser) attendance.TimestampParser {
	if fallback == nil {
		fallback = attendance.ParseTimestamp
	}
	return func(value string) (time.Time, error) {
		trimmed := strings.TrimSpace(value)
		if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
			if serial < minDateSerial || serial > maxDateSerial {
				return time.Time{}, attendance.ErrUnparseableStamp
			}
			parsed, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, attendance.ErrUnparseableStamp
			}
			// serial fractions carry float noise below one second
			return parsed.UTC().Round(time.Second), nil
		}
		return fallback(trimmed)
	}
}
