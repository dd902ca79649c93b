package attendance

import (
	"strings"
	"testing"
)

func TestResolveMislabelsFlippedPair(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 08:00", StatusCheckOut),
		event(t, 1, "2025-03-03 17:00", StatusCheckIn),
	}
	got := DefaultRules().ResolveMislabels(events, false)

	assertStatuses(t, got, StatusCheckIn, StatusCheckOut)
	for _, e := range got {
		if !e.Mislabeled {
			t.Fatalf("expected %s to be marked mislabeled", clockText(e))
		}
		if len(e.Notes) == 0 || !strings.Contains(e.Notes[0], "flipped") {
			t.Fatalf("expected flip note, got %v", e.Notes)
		}
	}
	if got[0].OriginalStatus != StatusCheckOut {
		t.Fatalf("expected original status kept, got %s", got[0].OriginalStatus)
	}
	if events[0].Status != StatusCheckOut {
		t.Fatal("expected input events to be left unchanged")
	}
}

func TestResolveMislabelsLeavesShortFlipAlone(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 09:00", StatusCheckOut),
		event(t, 1, "2025-03-03 12:00", StatusCheckIn),
	}
	got := DefaultRules().ResolveMislabels(events, false)
	assertStatuses(t, got, StatusCheckOut, StatusCheckIn)
}

func TestResolveMislabelsSuppressesDuplicates(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 09:00", StatusCheckIn),
		event(t, 1, "2025-03-03 09:20", StatusCheckIn),
		event(t, 2, "2025-03-03 18:00", StatusCheckOut),
		event(t, 3, "2025-03-03 18:30", StatusCheckOut),
	}
	got := DefaultRules().ResolveMislabels(events, false)

	wantExcluded := []bool{false, true, true, false}
	for i, e := range got {
		if e.Excluded != wantExcluded[i] {
			t.Fatalf("event %s: expected excluded=%v, got %v", clockText(e), wantExcluded[i], e.Excluded)
		}
		if e.Mislabeled {
			t.Fatalf("expected no relabel, got %s on %s", e.Status, clockText(e))
		}
	}
	assertStatuses(t, got, StatusCheckIn, StatusCheckIn, StatusCheckOut, StatusCheckOut)
}

func TestResolveMislabelsSegmentsMultiShiftDay(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 08:00", StatusCheckOut),
		event(t, 1, "2025-03-03 12:00", StatusCheckOut),
		event(t, 2, "2025-03-03 13:00", StatusCheckIn),
		event(t, 3, "2025-03-03 17:00", StatusCheckIn),
	}
	got := DefaultRules().ResolveMislabels(events, false)
	assertStatuses(t, got, StatusCheckIn, StatusCheckOut, StatusCheckIn, StatusCheckOut)
}

func TestResolveMislabelsSafetyNet(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 09:00", StatusCheckOut),
		event(t, 1, "2025-03-03 09:30", StatusCheckIn),
		event(t, 2, "2025-03-03 10:00", StatusCheckOut),
		event(t, 3, "2025-03-03 10:15", StatusCheckIn),
	}
	got := DefaultRules().ResolveMislabels(events, false)
	active := got[:0:0]
	for _, e := range got {
		if !e.Excluded {
			active = append(active, e)
		}
	}
	if active[0].Status != StatusCheckIn {
		t.Fatalf("expected first punch to be a check-in, got %s", active[0].Status)
	}
	if active[len(active)-1].Status != StatusCheckOut {
		t.Fatalf("expected last punch to be a check-out, got %s", active[len(active)-1].Status)
	}
}

func TestResolveMislabelsProtectsNightPunches(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 06:00", StatusCheckOut),
		event(t, 1, "2025-03-03 13:00", StatusCheckIn),
		event(t, 2, "2025-03-03 21:00", StatusCheckIn),
	}
	rules := DefaultRules()

	day := rules.ResolveMislabels(events, false)
	assertStatuses(t, day, StatusCheckIn, StatusCheckIn, StatusCheckOut)

	night := rules.ResolveMislabels(events, true)
	assertStatuses(t, night, StatusCheckOut, StatusCheckOut, StatusCheckIn)
	if night[0].Mislabeled || night[2].Mislabeled {
		t.Fatal("expected night punches to keep their terminal labels")
	}
}

func TestResolveMislabelsOrdersByTimestampThenIndex(t *testing.T) {
	events := []Event{
		event(t, 2, "2025-03-04 18:00", StatusCheckOut),
		event(t, 1, "2025-03-03 09:00", StatusCheckIn),
		event(t, 0, "2025-03-03 09:00", StatusCheckIn),
	}
	got := DefaultRules().ResolveMislabels(events, false)
	if got[0].OriginalIndex != 0 || got[1].OriginalIndex != 1 || got[2].OriginalIndex != 2 {
		t.Fatalf("expected order 0,1,2, got %d,%d,%d", got[0].OriginalIndex, got[1].OriginalIndex, got[2].OriginalIndex)
	}
}

type passCase struct {
	name     string
	night    bool
	punches  []string
	labels   []Status
	excluded []int
	want     []Status
	dropped  []int
}

func runPassCases(t *testing.T, pass func(Rules, resolveOptions, []Event) []Event, cases []passCase) {
	t.Helper()
	rules := DefaultRules()
	for _, tc := range cases {
		day := make([]Event, len(tc.punches))
		for i, p := range tc.punches {
			day[i] = event(t, i, "2025-03-03 "+p, tc.labels[i])
		}
		for _, i := range tc.excluded {
			day[i].Excluded = true
		}
		got := pass(rules, resolveOptions{protectNight: tc.night}, day)

		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %d events, got %d", tc.name, len(tc.want), len(got))
		}
		for i := range tc.want {
			if got[i].Status != tc.want[i] {
				t.Fatalf("%s: expected statuses %v, got %v", tc.name, tc.want, statuses(got))
			}
		}
		wantDropped := map[int]bool{}
		for _, i := range append(append([]int(nil), tc.excluded...), tc.dropped...) {
			wantDropped[i] = true
		}
		for i, e := range got {
			if e.Excluded != wantDropped[i] {
				t.Fatalf("%s: event %s expected excluded=%v, got %v", tc.name, clockText(e), wantDropped[i], e.Excluded)
			}
		}
		for i := range day {
			if day[i].Status != tc.labels[i] {
				t.Fatalf("%s: expected input events to be left unchanged", tc.name)
			}
		}
	}
}

func TestSuppressCloseDuplicates(t *testing.T) {
	in, out := StatusCheckIn, StatusCheckOut
	runPassCases(t, suppressCloseDuplicates, []passCase{
		{name: "later check-in dropped", punches: []string{"09:00", "09:20"}, labels: []Status{in, in}, want: []Status{in, in}, dropped: []int{1}},
		{name: "earlier check-out dropped", punches: []string{"18:00", "18:30"}, labels: []Status{out, out}, want: []Status{out, out}, dropped: []int{0}},
		{name: "chain keeps last check-out", punches: []string{"04:00", "04:30", "04:50"}, labels: []Status{out, out, out}, want: []Status{out, out, out}, dropped: []int{0, 1}},
		{name: "outside window", punches: []string{"09:00", "10:30"}, labels: []Status{in, in}, want: []Status{in, in}},
		{name: "alternating", punches: []string{"09:00", "09:10"}, labels: []Status{in, out}, want: []Status{in, out}},
	})
}

func TestSuppressCloseDuplicatesRecordsKeeper(t *testing.T) {
	day := []Event{
		event(t, 4, "2025-03-03 04:00", StatusCheckOut),
		event(t, 5, "2025-03-03 04:40", StatusCheckOut),
	}
	got := suppressCloseDuplicates(DefaultRules(), resolveOptions{}, day)
	if !got[0].Excluded || got[0].keptBy != 6 {
		t.Fatalf("expected 04:00 superseded by index 5, got excluded=%v keptBy=%d", got[0].Excluded, got[0].keptBy)
	}
	if got[1].Excluded || got[1].keptBy != 0 {
		t.Fatal("expected the keeper to stay active")
	}
}

func TestFixFlippedPair(t *testing.T) {
	in, out := StatusCheckIn, StatusCheckOut
	runPassCases(t, fixFlippedPair, []passCase{
		{name: "flipped nine hours", punches: []string{"08:00", "17:00"}, labels: []Status{out, in}, want: []Status{in, out}},
		{name: "two check-outs", punches: []string{"08:00", "17:00"}, labels: []Status{out, out}, want: []Status{in, out}},
		{name: "too short", punches: []string{"09:00", "12:00"}, labels: []Status{out, in}, want: []Status{out, in}},
		{name: "too long", punches: []string{"06:30", "18:00"}, labels: []Status{out, in}, want: []Status{out, in}},
		{name: "already ordered", punches: []string{"08:00", "17:00"}, labels: []Status{in, out}, want: []Status{in, out}},
		{name: "three punches", punches: []string{"08:00", "12:00", "17:00"}, labels: []Status{out, in, in}, want: []Status{out, in, in}},
		{name: "ignores excluded", punches: []string{"08:00", "08:10", "17:00"}, labels: []Status{out, out, in}, excluded: []int{0}, want: []Status{out, in, out}},
	})
}

func TestSegmentMultiShift(t *testing.T) {
	in, out := StatusCheckIn, StatusCheckOut
	runPassCases(t, segmentMultiShift, []passCase{
		{name: "split shift", punches: []string{"08:00", "12:00", "13:00", "17:00"}, labels: []Status{out, out, in, in}, want: []Status{in, in, out, out}},
		{name: "one segment", punches: []string{"08:00", "08:30", "09:00"}, labels: []Status{out, in, in}, want: []Status{in, in, out}},
		{name: "two punches untouched", punches: []string{"08:00", "17:00"}, labels: []Status{out, in}, want: []Status{out, in}},
		{name: "day worker singles", punches: []string{"06:00", "13:00", "21:00"}, labels: []Status{out, in, in}, want: []Status{in, out, out}},
		{name: "night worker protected", night: true, punches: []string{"06:00", "13:00", "21:00"}, labels: []Status{out, in, in}, want: []Status{out, out, in}},
	})
}

func TestFixResidualRuns(t *testing.T) {
	in, out := StatusCheckIn, StatusCheckOut
	runPassCases(t, fixResidualRuns, []passCase{
		{name: "consecutive check-ins", punches: []string{"08:00", "12:00", "13:00", "17:00"}, labels: []Status{in, in, out, out}, want: []Status{in, out, in, out}},
		{name: "consecutive check-outs", punches: []string{"07:00", "16:00"}, labels: []Status{out, out}, want: []Status{in, out}},
		{name: "close run suppressed", punches: []string{"09:00", "09:30"}, labels: []Status{in, in}, want: []Status{in, in}, dropped: []int{1}},
		{name: "alternating untouched", punches: []string{"08:00", "12:00", "13:00", "17:00"}, labels: []Status{in, out, in, out}, want: []Status{in, out, in, out}},
		{name: "night check-in protected", night: true, punches: []string{"13:00", "21:00"}, labels: []Status{in, in}, want: []Status{in, in}},
	})
}

func TestFixResidualRunsNotesReason(t *testing.T) {
	day := []Event{
		event(t, 0, "2025-03-03 08:00", StatusCheckIn),
		event(t, 1, "2025-03-03 17:00", StatusCheckIn),
	}
	got := fixResidualRuns(DefaultRules(), resolveOptions{}, day)
	if !got[1].Mislabeled || len(got[1].Notes) != 1 || !strings.Contains(got[1].Notes[0], "consecutive check-ins") {
		t.Fatalf("expected relabel note on 17:00, got %v", got[1].Notes)
	}
	if got[0].Mislabeled || len(got[0].Notes) != 0 {
		t.Fatal("expected 08:00 to be left alone")
	}
}

func TestEnforceDayBounds(t *testing.T) {
	in, out := StatusCheckIn, StatusCheckOut
	runPassCases(t, enforceDayBounds, []passCase{
		{name: "fix both ends", punches: []string{"09:00", "10:00", "11:00"}, labels: []Status{out, in, in}, want: []Status{in, in, out}},
		{name: "two punches untouched", punches: []string{"09:00", "17:00"}, labels: []Status{out, in}, want: []Status{out, in}},
		{name: "skips excluded", punches: []string{"08:00", "09:00", "10:00", "11:00"}, labels: []Status{out, out, in, in}, excluded: []int{0}, want: []Status{out, in, in, out}},
		{name: "night ends protected", night: true, punches: []string{"06:00", "13:00", "21:00"}, labels: []Status{out, out, in}, want: []Status{out, out, in}},
	})
}
