package attendance

import "testing"

func TestLikelyNightWorker(t *testing.T) {
	h := DefaultRules().NightWorker

	share := []Event{
		event(t, 0, "2025-03-03 22:00", StatusCheckIn),
		event(t, 1, "2025-03-04 09:00", StatusCheckIn),
		event(t, 2, "2025-03-05 09:00", StatusCheckIn),
	}
	if !h.LikelyNightWorker(share) {
		t.Fatal("expected one night check-in out of three to qualify")
	}

	mostlyDays := append(share, event(t, 3, "2025-03-06 09:00", StatusCheckIn))
	if h.LikelyNightWorker(mostlyDays) {
		t.Fatal("expected one night check-in out of four not to qualify")
	}

	earlyOuts := []Event{
		event(t, 0, "2025-03-03 09:00", StatusCheckIn),
		event(t, 1, "2025-03-04 09:00", StatusCheckIn),
		event(t, 2, "2025-03-05 09:00", StatusCheckIn),
		event(t, 3, "2025-03-06 09:00", StatusCheckIn),
		event(t, 4, "2025-03-04 06:30", StatusCheckOut),
		event(t, 5, "2025-03-05 07:15", StatusCheckOut),
	}
	if !h.LikelyNightWorker(earlyOuts) {
		t.Fatal("expected two early check-outs to qualify")
	}
}

func TestLinkNightShifts(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 22:00", StatusCheckIn),
		event(t, 1, "2025-03-04 06:00", StatusCheckOut),
	}
	rules := DefaultRules()
	got := rules.LinkNightShifts(rules.ResolveMislabels(events, true))

	want := at(t, "2025-03-03 00:00")
	for _, e := range got {
		if !e.Processed {
			t.Fatalf("expected %s to be processed", clockText(e))
		}
		if !e.WorkingWeekStart.Equal(want) {
			t.Fatalf("expected working date %s, got %s", DateKey(want), DateKey(e.WorkingWeekStart))
		}
		if e.ShiftType != ShiftNight {
			t.Fatalf("expected night shift, got %s", e.ShiftType)
		}
	}
}

func TestLinkNightShiftsRequiresOpenCheckIn(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 22:00", StatusCheckIn),
		event(t, 1, "2025-03-03 23:30", StatusCheckOut),
		event(t, 2, "2025-03-04 06:00", StatusCheckOut),
	}
	got := DefaultRules().LinkNightShifts(events)
	for _, e := range got {
		if e.Processed {
			t.Fatalf("expected no link when the check-in is already closed, %s was linked", clockText(e))
		}
	}
}

func TestLinkNightShiftsSkipsGapDays(t *testing.T) {
	events := []Event{
		event(t, 0, "2025-03-03 22:00", StatusCheckIn),
		event(t, 1, "2025-03-05 06:00", StatusCheckOut),
	}
	got := DefaultRules().LinkNightShifts(events)
	if got[0].Processed || got[1].Processed {
		t.Fatal("expected no link across a missing day")
	}
}

func TestCheckInRegister(t *testing.T) {
	in1 := event(t, 0, "2025-03-03 09:00", StatusCheckIn)
	in2 := event(t, 1, "2025-03-03 10:00", StatusCheckIn)
	out := event(t, 2, "2025-03-03 18:00", StatusCheckOut)
	always := func(Event, Event) bool { return true }
	never := func(Event, Event) bool { return false }

	reg := checkInRegister{}
	reg, slots := reg.checkOut(out, always)
	if reg.state != registerIdle || len(slots) != 1 || slots[0].in != nil || slots[0].out == nil {
		t.Fatalf("expected lone check-out from idle register, got %d %+v", reg.state, slots)
	}

	reg, slots = reg.checkIn(in1)
	if reg.state != registerAwaitingCheckout || len(slots) != 0 {
		t.Fatalf("expected open register, got %d with %d slots", reg.state, len(slots))
	}

	reg, slots = reg.checkIn(in2)
	if len(slots) != 1 || slots[0].in == nil || slots[0].in.OriginalIndex != 0 || slots[0].out != nil {
		t.Fatalf("expected orphaned first check-in, got %+v", slots)
	}

	next, slots := reg.checkOut(out, always)
	if next.state != registerIdle || len(slots) != 1 || slots[0].in.OriginalIndex != 1 || slots[0].out == nil {
		t.Fatalf("expected paired slot, got %+v", slots)
	}

	next, slots = reg.checkOut(out, never)
	if next.state != registerIdle || len(slots) != 2 {
		t.Fatalf("expected refused pair to emit two slots, got %d", len(slots))
	}

	if got := reg.flush(); len(got) != 1 || got[0].in == nil {
		t.Fatalf("expected flush to close dangling check-in, got %+v", got)
	}
	if got := (checkInRegister{}).flush(); got != nil {
		t.Fatalf("expected nothing to flush, got %+v", got)
	}
}
