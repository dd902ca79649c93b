package sheets

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"punchclock/internal/domain/attendance"
)

const (
	daysSheet    = "Days"
	summarySheet = "Summary"
)

var dayHeadings = []string{
	"Employee No.", "Name", "Department", "Date", "Shift", "Check In", "Check Out",
	"Hours", "Penalty (min)", "Late", "Early Leave", "Overtime", "Corrected", "Manual", "Approved", "Notes",
}

var summaryHeadings = []string{"Employee No.", "Name", "Department", "Days", "Worked Days", "Payable Hours", "Late Days"}

// WriteWorkbook writes one row per employee day plus a per-employee summary
// sheet.
func WriteWorkbook(w io.Writer, employees []attendance.EmployeeRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", daysSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := writeHeadings(f, daysSheet, dayHeadings); err != nil {
		return err
	}
	if err := writeHeadings(f, summarySheet, summaryHeadings); err != nil {
		return err
	}

	rowNo := 2
	for n, emp := range employees {
		worked, late := 0, 0
		hours := 0.0
		for _, day := range emp.Days {
			values := []any{
				emp.EmployeeNumber,
				emp.Name,
				emp.Department,
				attendance.DateKey(day.Date),
				string(day.ShiftType),
				day.DisplayCheckIn,
				day.DisplayCheckOut,
				day.HoursWorked,
				day.PenaltyMinutes,
				yesNo(day.IsLate),
				yesNo(day.EarlyLeave),
				yesNo(day.ExcessiveOvertime),
				yesNo(day.CorrectedRecords),
				yesNo(day.ManualEdit),
				yesNo(day.Approved),
				day.Notes,
			}
			if err := writeRow(f, daysSheet, rowNo, values); err != nil {
				return err
			}
			rowNo++

			hours += day.HoursWorked
			if day.HoursWorked > 0 {
				worked++
			}
			if day.IsLate {
				late++
			}
		}
		summary := []any{emp.EmployeeNumber, emp.Name, emp.Department, emp.TotalDays, worked, hours, late}
		if err := writeRow(f, summarySheet, n+2, summary); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeHeadings(f *excelize.File, sheet string, headings []string) error {
	values := make([]any, len(headings))
	for i, h := range headings {
		values[i] = h
	}
	return writeRow(f, sheet, 1, values)
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNo, err)
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return ""
}
