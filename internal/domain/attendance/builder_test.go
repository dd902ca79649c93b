package attendance

import (
	"strings"
	"testing"
)

func TestBuildDaysPairsSimpleDay(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 09:05", StatusCheckIn),
		event(t, 1, "2025-03-03 18:10", StatusCheckOut),
	}
	days := DefaultRules().BuildDays(events, false)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	day := days[0]
	if day.DisplayCheckIn != "09:05" || day.DisplayCheckOut != "18:10" {
		t.Fatalf("expected 09:05-18:10, got %s-%s", day.DisplayCheckIn, day.DisplayCheckOut)
	}
	if day.ShiftType != ShiftMorning || day.HoursWorked != 9.0 {
		t.Fatalf("expected morning 9h, got %s %v", day.ShiftType, day.HoursWorked)
	}
	if day.IsLate || day.EarlyLeave || day.ExcessiveOvertime || day.CorrectedRecords {
		t.Fatalf("expected no flags, got %+v", day)
	}
	if len(day.AllTimeRecords) != 2 {
		t.Fatalf("expected 2 raw events, got %d", len(day.AllTimeRecords))
	}
}

func TestBuildDaysMissingCheckOut(t *testing.T) {
	events := []Event{event(t, 0, "2025-03-03 09:40", StatusCheckIn)}
	day := DefaultRules().BuildDays(events, false)[0]

	if !day.MissingCheckOut || day.MissingCheckIn {
		t.Fatalf("expected only check-out missing, got in=%v out=%v", day.MissingCheckIn, day.MissingCheckOut)
	}
	if day.DisplayCheckOut != DisplayMissing || day.HoursWorked != 0 {
		t.Fatalf("expected MISSING with 0h, got %s %v", day.DisplayCheckOut, day.HoursWorked)
	}
	if !day.IsLate {
		t.Fatal("expected 09:40 morning check-in to be late")
	}
	if !strings.Contains(day.Notes, "missing check-out") {
		t.Fatalf("expected missing check-out note, got %q", day.Notes)
	}
}

func TestBuildDaysInvertedPunches(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 08:00", StatusCheckOut),
		event(t, 1, "2025-03-03 10:00", StatusCheckIn),
	}
	day := DefaultRules().BuildDays(events, false)[0]
	if day.HoursWorked != 0 {
		t.Fatalf("expected 0h for inverted punches, got %v", day.HoursWorked)
	}
	if day.MissingCheckIn || day.MissingCheckOut {
		t.Fatal("expected both punches to be present")
	}
	if !strings.Contains(day.Notes, "check-out 08:00 precedes check-in 10:00") {
		t.Fatalf("expected inversion note, got %q", day.Notes)
	}
}

func TestBuildDaysExcludedEventsKeptForAudit(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 09:00", StatusCheckIn),
		event(t, 1, "2025-03-03 09:20", StatusCheckIn),
		event(t, 2, "2025-03-03 18:00", StatusCheckOut),
		event(t, 3, "2025-03-03 18:30", StatusCheckOut),
	}
	rules := DefaultRules()
	days := rules.BuildDays(rules.ResolveMislabels(events, false), false)
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	day := days[0]
	if day.DisplayCheckIn != "09:00" || day.DisplayCheckOut != "18:30" {
		t.Fatalf("expected 09:00-18:30, got %s-%s", day.DisplayCheckIn, day.DisplayCheckOut)
	}
	if !day.CorrectedRecords || len(day.AllTimeRecords) != 4 {
		t.Fatalf("expected corrected day with 4 events, got %v with %d", day.CorrectedRecords, len(day.AllTimeRecords))
	}
	if day.HoursWorked != 9.0 {
		t.Fatalf("expected 9h, got %v", day.HoursWorked)
	}
}

func TestBuildDaysPairsAcrossMidnightForNightWorker(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 23:00", StatusCheckIn),
		event(t, 1, "2025-03-04 08:30", StatusCheckOut),
	}
	rules := DefaultRules()

	days := rules.BuildDays(events, true)
	if len(days) != 1 {
		t.Fatalf("expected one night record, got %d", len(days))
	}
	if DateKey(days[0].Date) != "2025-03-03" || days[0].ShiftType != ShiftNight {
		t.Fatalf("expected night shift on 2025-03-03, got %s %s", DateKey(days[0].Date), days[0].ShiftType)
	}
	if days[0].HoursWorked != 9.0 {
		t.Fatalf("expected 9h, got %v", days[0].HoursWorked)
	}

	if days := rules.BuildDays(events, false); len(days) != 2 {
		t.Fatalf("expected separate days for a day worker, got %d", len(days))
	}
}

func TestFillOffDays(t *testing.T) {
	days := []DailyRecord{
		{Date: at(t, "2025-03-06 00:00"), ShiftType: ShiftMorning},
		{Date: at(t, "2025-03-03 00:00"), ShiftType: ShiftMorning},
	}
	got := FillOffDays(days)
	want := []string{"2025-03-03", "2025-03-04", "2025-03-05", "2025-03-06"}
	if len(got) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(got))
	}
	for i, key := range want {
		if DateKey(got[i].Date) != key {
			t.Fatalf("expected %s at %d, got %s", key, i, DateKey(got[i].Date))
		}
	}
	for _, off := range got[1:3] {
		if off.ShiftType != ShiftOffDay || off.DisplayCheckIn != DisplayOffDay || off.HoursWorked != 0 {
			t.Fatalf("expected off-day record, got %+v", off)
		}
	}
	if FillOffDays(nil) != nil {
		t.Fatal("expected nil for no days")
	}
}

func TestAssemble(t *testing.T) {
	employees := []EmployeeRecord{
		{EmployeeNumber: "20", Name: "Zoe", Days: []DailyRecord{{}, {}}},
		{EmployeeNumber: "12", Name: "Ana"},
		{EmployeeNumber: "11", Name: "Ana", Days: []DailyRecord{{}}},
	}
	got := Assemble(employees)
	if got[0].EmployeeNumber != "11" || got[1].EmployeeNumber != "12" || got[2].EmployeeNumber != "20" {
		t.Fatalf("expected order 11,12,20, got %s,%s,%s", got[0].EmployeeNumber, got[1].EmployeeNumber, got[2].EmployeeNumber)
	}
	if got[2].TotalDays != 2 || got[0].TotalDays != 1 || got[1].TotalDays != 0 {
		t.Fatalf("expected total days 1,0,2, got %d,%d,%d", got[0].TotalDays, got[1].TotalDays, got[2].TotalDays)
	}
}
