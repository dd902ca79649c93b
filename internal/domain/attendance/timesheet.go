package attendance

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

var timesheetColumns = []struct {
	title string
	width float64
}{
	{"Date", 26},
	{"Shift", 22},
	{"In", 18},
	{"Out", 18},
	{"Hours", 16},
	{"Penalty", 16},
	{"Flags", 30},
	{"Notes", 44},
}

// WriteTimesheetPDF renders one employee's days as an A4 timesheet.
func WriteTimesheetPDF(w io.Writer, emp EmployeeRecord) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Timesheet")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", emp.Name, emp.EmployeeNumber))
	pdf.Ln(6)
	if emp.Department != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Department: %s", emp.Department))
		pdf.Ln(6)
	}
	if len(emp.Days) > 0 {
		pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", DateKey(emp.Days[0].Date), DateKey(emp.Days[len(emp.Days)-1].Date)))
		pdf.Ln(9)
	}

	pdf.SetFont("Helvetica", "B", 9)
	for _, col := range timesheetColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	total := 0.0
	for _, day := range emp.Days {
		total += day.HoursWorked
		values := []string{
			DateKey(day.Date),
			string(day.ShiftType),
			day.DisplayCheckIn,
			day.DisplayCheckOut,
			fmt.Sprintf("%.2f", day.HoursWorked),
			fmt.Sprintf("%d", day.PenaltyMinutes),
			dayFlags(day),
			truncate(day.Notes, 32),
		}
		for i, col := range timesheetColumns {
			pdf.CellFormat(col.width, 6, values[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 7, fmt.Sprintf("Days: %d   Payable hours: %.2f", emp.TotalDays, total))

	return pdf.Output(w)
}

func dayFlags(day DailyRecord) string {
	var flags []byte
	add := func(on bool, code string) {
		if !on {
			return
		}
		if len(flags) > 0 {
			flags = append(flags, ' ')
		}
		flags = append(flags, code...)
	}
	add(day.IsLate, "LATE")
	add(day.EarlyLeave, "EARLY")
	add(day.ExcessiveOvertime, "OT")
	add(day.CorrectedRecords, "FIX")
	return string(flags)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
