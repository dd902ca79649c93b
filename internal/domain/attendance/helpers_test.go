package attendance

import (
	"testing"
	"time"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func event(t *testing.T, idx int, value string, status Status) Event {
	t.Helper()
	ts := at(t, value)
	e := Event{
		Timestamp:      ts,
		EmployeeID:     "100",
		EmployeeNumber: "100",
		Name:           "Ana Lopez",
		Status:         status,
		OriginalStatus: status,
		ShiftType:      Classify(ts),
		OriginalIndex:  idx,
	}
	e.WorkingWeekStart = DefaultRules().anchorDate(e)
	return e
}

func statuses(events []Event) []Status {
	out := make([]Status, len(events))
	for i, e := range events {
		out[i] = e.Status
	}
	return out
}

func assertStatuses(t *testing.T, events []Event, want ...Status) {
	t.Helper()
	got := statuses(events)
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected statuses %v, got %v", want, got)
		}
	}
}

func row(number, name, dateTime, status string) RawRow {
	return RawRow{DateTime: dateTime, Name: name, EmployeeNumber: number, Status: status, Department: "Production"}
}
