package attendance

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDayNotFound       = errors.New("attendance day not found")
	ErrAlreadyApproved   = errors.New("attendance day already approved")
	ErrInvalidTimeRange  = errors.New("check-out must be after check-in")
	ErrInvalidShiftType  = errors.New("invalid shift type")
	ErrInvalidPenalty    = errors.New("penalty minutes must not be negative")
	ErrEmptyImport       = errors.New("import contains no attendance rows")
	ErrUnparseableStamp  = errors.New("unrecognised date/time format")
	ErrUnknownStatusText = errors.New("unrecognised check-in/check-out status")
)

// RowParseError describes one raw row that was skipped during ingestion.
type RowParseError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e RowParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

// FileShapeError is returned when an uploaded table is not raw attendance data,
// for example a monthly summary report.
type FileShapeError struct {
	Reason  string
	Columns []string
}

func (e *FileShapeError) Error() string {
	if len(e.Columns) == 0 {
		return "not a raw attendance file: " + e.Reason
	}
	return fmt.Sprintf("not a raw attendance file: %s (columns: %s)", e.Reason, strings.Join(e.Columns, ", "))
}

// IsFileShape reports whether err carries a FileShapeError.
func IsFileShape(err error) bool {
	var shapeErr *FileShapeError
	return errors.As(err, &shapeErr)
}
