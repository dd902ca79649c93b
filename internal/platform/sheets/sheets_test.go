package sheets

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"punchclock/internal/domain/attendance"
)

func TestReadTableCSV(t *testing.T) {
	input := "\xef\xbb\xbfNo.,Name,Date/Time,Status\n7,Ana Lopez,2025-03-03 09:00,C/In\n7,Ana Lopez,2025-03-03 18:00,C/Out\n"
	rows, err := ReadTable(strings.NewReader(input), "log.CSV")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "No." || rows[2][3] != "C/Out" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestReadTableSemicolonCSV(t *testing.T) {
	input := "No.;Name;Date/Time;Status\n7;Lopez, Ana;03/03/2025 09:00;C/In\n"
	rows, err := ReadTable(strings.NewReader(input), "log.csv")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rows[1][1] != "Lopez, Ana" {
		t.Fatalf("expected comma kept inside a field, got %q", rows[1][1])
	}
}

func TestReadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]any{"No.", "Name", "Date/Time", "Status"})
	_ = f.SetSheetRow("Sheet1", "A2", &[]any{"7", "Ana Lopez", "2025-03-03 09:00", "C/In"})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rows, err := ReadTable(&buf, "march.xlsx")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 2 || rows[1][2] != "2025-03-03 09:00" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestReadTableRejectsUnknownExtension(t *testing.T) {
	_, err := ReadTable(strings.NewReader("x"), "report.pdf")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	_, err = ReadTable(strings.NewReader(""), "empty.csv")
	if !errors.Is(err, ErrEmptyWorksheet) {
		t.Fatalf("expected ErrEmptyWorksheet, got %v", err)
	}
}

func TestTimestampParser(t *testing.T) {
	parse := TimestampParser(nil)

	// 45719 is 2025-03-03; .375 is 09:00
	got, err := parse("45719.375")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Format("2006-01-02 15:04") != "2025-03-03 09:00" {
		t.Fatalf("expected 2025-03-03 09:00, got %s", got.Format("2006-01-02 15:04"))
	}

	got, err = parse("2025-03-03 21:30")
	if err != nil || got.Hour() != 21 || got.Minute() != 30 {
		t.Fatalf("expected text fallback, got %v (%v)", got, err)
	}

	if _, err := parse("12"); !errors.Is(err, attendance.ErrUnparseableStamp) {
		t.Fatalf("expected small numbers to be rejected, got %v", err)
	}
}

func TestWriteWorkbook(t *testing.T) {
	in := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	out := time.Date(2025, 3, 3, 18, 10, 0, 0, time.UTC)
	employees := []attendance.EmployeeRecord{{
		EmployeeNumber: "7",
		Name:           "Ana Lopez",
		Department:     "Production",
		TotalDays:      2,
		Days: []attendance.DailyRecord{
			{Date: in, FirstCheckIn: &in, LastCheckOut: &out, ShiftType: attendance.ShiftMorning, DisplayCheckIn: "09:00", DisplayCheckOut: "18:10", HoursWorked: 9},
			attendance.OffDay(in.AddDate(0, 0, 1)),
		},
	}}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, employees); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("expected readable workbook, got %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(daysSheet)
	if err != nil {
		t.Fatalf("expected days sheet, got %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][3] != "2025-03-03" || rows[1][5] != "09:00" || rows[2][5] != attendance.DisplayOffDay {
		t.Fatalf("unexpected day rows %v", rows[1:])
	}

	summary, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("expected summary sheet, got %v", err)
	}
	if len(summary) != 2 || summary[1][4] != "1" || summary[1][5] != "9" {
		t.Fatalf("unexpected summary %v", summary)
	}
}
