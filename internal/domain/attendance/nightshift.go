package attendance

import "fmt"

// LikelyNightWorker applies the heuristic to one employee's events as
// labelled by the terminal.
func (h NightWorkerHeuristic) LikelyNightWorker(events []Event) bool {
	checkIns, nightCheckIns, earlyCheckOuts := 0, 0, 0
	for _, e := range events {
		if e.Excluded {
			continue
		}
		c := ClockOf(e.Timestamp)
		switch e.Status {
		case StatusCheckIn:
			checkIns++
			if h.CheckInWindow.Contains(c) {
				nightCheckIns++
			}
		case StatusCheckOut:
			if h.CheckOutWindow.Contains(c) {
				earlyCheckOuts++
			}
		}
	}
	if h.MinEarlyCheckOuts > 0 && earlyCheckOuts >= h.MinEarlyCheckOuts {
		return true
	}
	return checkIns > 0 && float64(nightCheckIns) >= h.CheckInShare*float64(checkIns)
}

// LinkNightShifts pairs a late check-in on day D with an early check-out on
// D+1 and anchors both to D as one night shift. Events must be ordered as
// returned by ResolveMislabels; the input is not modified.
func (r Rules) LinkNightShifts(events []Event) []Event {
	out := cloneEvents(events)
	days := indexByDate(out)
	for n := 0; n+1 < len(days); n++ {
		today, tomorrow := days[n], days[n+1]
		if daysBetween(out[today[0]].Timestamp, out[tomorrow[0]].Timestamp) != 1 {
			continue
		}
		in := r.openNightCheckIn(out, today)
		checkOut := r.earlyNightCheckOut(out, tomorrow)
		if in < 0 || checkOut < 0 {
			continue
		}
		anchor := dateOf(out[in].Timestamp)
		note := fmt.Sprintf("night shift %s %s to %s %s", DateKey(anchor), clockText(out[in]), DateKey(out[checkOut].Timestamp), clockText(out[checkOut]))
		for _, i := range []int{in, checkOut} {
			out[i].WorkingWeekStart = anchor
			out[i].ShiftType = ShiftNight
			out[i].Processed = true
			addNote(&out[i], note)
		}
	}
	return out
}

// openNightCheckIn returns D's last active check-in inside the link window,
// provided no check-out follows it on D.
func (r Rules) openNightCheckIn(events []Event, day []int) int {
	for k := len(day) - 1; k >= 0; k-- {
		e := events[day[k]]
		if e.Excluded {
			continue
		}
		if e.Processed || e.Status != StatusCheckIn {
			return -1
		}
		if r.NightLinkCheckIn.Contains(ClockOf(e.Timestamp)) {
			return day[k]
		}
		return -1
	}
	return -1
}

// earlyNightCheckOut returns D+1's first active check-out inside the link
// window, provided no check-in precedes it on D+1.
func (r Rules) earlyNightCheckOut(events []Event, day []int) int {
	for _, i := range day {
		e := events[i]
		if e.Excluded {
			continue
		}
		if e.Processed || e.Status != StatusCheckOut {
			return -1
		}
		if r.NightLinkCheckOut.Contains(ClockOf(e.Timestamp)) {
			return i
		}
		return -1
	}
	return -1
}

func indexByDate(ordered []Event) [][]int {
	var days [][]int
	for i, e := range ordered {
		if i == 0 || !sameDate(ordered[i-1].Timestamp, e.Timestamp) {
			days = append(days, nil)
		}
		days[len(days)-1] = append(days[len(days)-1], i)
	}
	return days
}
