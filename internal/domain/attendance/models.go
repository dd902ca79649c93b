package attendance

import "time"

// RawRow is one row of a terminal export before any interpretation.
type RawRow struct {
	DateTime       string `json:"dateTime"`
	Name           string `json:"name"`
	EmployeeNumber string `json:"employeeNumber"`
	Status         string `json:"status"`
	Department     string `json:"department"`
}

// Event is a single normalized terminal punch. OriginalIndex never changes and
// orders events that share a timestamp.
type Event struct {
	Timestamp        time.Time `json:"timestamp"`
	EmployeeID       string    `json:"employeeId"`
	EmployeeNumber   string    `json:"employeeNumber"`
	Name             string    `json:"name"`
	Department       string    `json:"department"`
	Status           Status    `json:"status"`
	ShiftType        ShiftType `json:"shiftType"`
	Mislabeled       bool      `json:"mislabeled"`
	OriginalStatus   Status    `json:"originalStatus"`
	Processed        bool      `json:"processed"`
	Excluded         bool      `json:"excluded"`
	WorkingWeekStart time.Time `json:"workingWeekStart"`
	OriginalIndex    int       `json:"originalIndex"`
	Notes            []string  `json:"notes,omitempty"`

	// keptBy is the OriginalIndex+1 of the event that superseded an
	// excluded duplicate; zero when not excluded.
	keptBy int
}

type DailyRecord struct {
	Date              time.Time  `json:"date"`
	FirstCheckIn      *time.Time `json:"firstCheckIn"`
	LastCheckOut      *time.Time `json:"lastCheckOut"`
	HoursWorked       float64    `json:"hoursWorked"`
	ShiftType         ShiftType  `json:"shiftType"`
	Notes             string     `json:"notes"`
	MissingCheckIn    bool       `json:"missingCheckIn"`
	MissingCheckOut   bool       `json:"missingCheckOut"`
	IsLate            bool       `json:"isLate"`
	EarlyLeave        bool       `json:"earlyLeave"`
	ExcessiveOvertime bool       `json:"excessiveOvertime"`
	PenaltyMinutes    int        `json:"penaltyMinutes"`
	ManualEdit        bool       `json:"manualEdit"`
	Approved          bool       `json:"approved"`
	DisplayCheckIn    string     `json:"displayCheckIn"`
	DisplayCheckOut   string     `json:"displayCheckOut"`
	WorkingWeekStart  time.Time  `json:"workingWeekStart"`
	CorrectedRecords  bool       `json:"correctedRecords"`
	AllTimeRecords    []Event    `json:"allTimeRecords"`
}

type EmployeeRecord struct {
	EmployeeNumber string        `json:"employeeNumber"`
	Name           string        `json:"name"`
	Department     string        `json:"department"`
	Days           []DailyRecord `json:"days"`
	TotalDays      int           `json:"totalDays"`
}

// Result is the output of one engine run.
type Result struct {
	Employees []EmployeeRecord `json:"employees"`
	Errors    []RowParseError  `json:"rowErrors"`
}

// StoredDay is a DailyRecord as persisted for one employee.
type StoredDay struct {
	ID             string      `json:"id"`
	BatchID        string      `json:"batchId"`
	EmployeeNumber string      `json:"employeeNumber"`
	Name           string      `json:"name"`
	Department     string      `json:"department"`
	Record         DailyRecord `json:"record"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type DayFilter struct {
	EmployeeNumber string
	From           time.Time
	To             time.Time
}

// ManualEdit carries operator-entered values for one stored day.
type ManualEdit struct {
	CheckIn        time.Time `json:"checkIn"`
	CheckOut       time.Time `json:"checkOut"`
	ShiftType      ShiftType `json:"shiftType"`
	PenaltyMinutes int       `json:"penaltyMinutes"`
	Note           string    `json:"note"`
}

type ImportSummary struct {
	BatchID   string           `json:"batchId"`
	Source    string           `json:"source"`
	RowCount  int              `json:"rowCount"`
	DayCount  int              `json:"dayCount"`
	Employees []EmployeeRecord `json:"employees"`
	RowErrors []RowParseError  `json:"rowErrors"`
}
