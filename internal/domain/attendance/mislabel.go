package attendance

import (
	"fmt"
	"sort"
	"time"
)

// resolveOptions carries per-employee context into the day passes.
type resolveOptions struct {
	protectNight bool
}

type dayPass struct {
	name  string
	apply func(r Rules, opts resolveOptions, day []Event) []Event
}

// mislabelPasses run in order over each calendar day of one employee.
var mislabelPasses = []dayPass{
	{name: "close-duplicate", apply: suppressCloseDuplicates},
	{name: "flipped-pair", apply: fixFlippedPair},
	{name: "multi-shift", apply: segmentMultiShift},
	{name: "residual-run", apply: fixResidualRuns},
	{name: "safety-net", apply: enforceDayBounds},
}

// ResolveMislabels corrects check-in/check-out labels for one employee's
// events. The input is not modified. The result is ordered by timestamp with
// originalIndex as tie-break, and every relabel keeps the terminal's label in
// OriginalStatus together with a reason note.
func (r Rules) ResolveMislabels(events []Event, nightWorker bool) []Event {
	opts := resolveOptions{protectNight: nightWorker}
	ordered := sortEvents(cloneEvents(events))

	out := make([]Event, 0, len(ordered))
	for _, day := range splitByDate(ordered) {
		for _, pass := range mislabelPasses {
			day = pass.apply(r, opts, day)
		}
		out = append(out, day...)
	}
	for i := range out {
		out[i].Mislabeled = out[i].Status != out[i].OriginalStatus
		if !out[i].Processed {
			out[i].WorkingWeekStart = r.anchorDate(out[i])
		}
	}
	return out
}

func suppressCloseDuplicates(r Rules, _ resolveOptions, day []Event) []Event {
	out := cloneEvents(day)
	prev := -1
	for _, i := range activeIndexes(out) {
		if prev >= 0 && out[prev].Status == out[i].Status && out[i].Timestamp.Sub(out[prev].Timestamp) < r.DuplicateWindow {
			prev = suppressDuplicate(out, prev, i)
			continue
		}
		prev = i
	}
	return out
}

// suppressDuplicate excludes one of two close same-status events: the earlier
// of two check-outs, the later of two check-ins. It returns the index that
// stays active.
func suppressDuplicate(day []Event, prev, cur int) int {
	if day[cur].Status == StatusCheckOut {
		exclude(&day[prev], day[cur], fmt.Sprintf("duplicate check-out at %s superseded by %s", clockText(day[prev]), clockText(day[cur])))
		return cur
	}
	exclude(&day[cur], day[prev], fmt.Sprintf("duplicate check-in at %s, keeping %s", clockText(day[cur]), clockText(day[prev])))
	return prev
}

func fixFlippedPair(r Rules, _ resolveOptions, day []Event) []Event {
	out := cloneEvents(day)
	idx := activeIndexes(out)
	if len(idx) != 2 {
		return out
	}
	first, second := &out[idx[0]], &out[idx[1]]
	if first.Status == StatusCheckIn && second.Status == StatusCheckOut {
		return out
	}
	elapsed := second.Timestamp.Sub(first.Timestamp)
	if elapsed < r.FlipMin || elapsed > r.FlipMax {
		return out
	}
	reason := fmt.Sprintf("flipped two-record day, %s apart", hoursText(elapsed))
	relabel(first, StatusCheckIn, reason)
	relabel(second, StatusCheckOut, reason)
	return out
}

func segmentMultiShift(r Rules, opts resolveOptions, day []Event) []Event {
	out := cloneEvents(day)
	idx := activeIndexes(out)
	if len(idx) < 3 {
		return out
	}

	var segments [][]int
	start := 0
	for k := 1; k <= len(idx); k++ {
		if k == len(idx) || out[idx[k]].Timestamp.Sub(out[idx[k-1]].Timestamp) >= r.SegmentGap {
			segments = append(segments, idx[start:k])
			start = k
		}
	}

	for n, segment := range segments {
		if len(segment) == 1 {
			e := &out[segment[0]]
			target := StatusCheckOut
			if ClockOf(e.Timestamp) < r.Noon {
				target = StatusCheckIn
			}
			relabelUnprotected(r, opts, e, target, fmt.Sprintf("single-punch segment %d of %d", n+1, len(segments)))
			continue
		}
		reason := fmt.Sprintf("shift segment %d of %d", n+1, len(segments))
		relabelUnprotected(r, opts, &out[segment[0]], StatusCheckIn, reason)
		relabelUnprotected(r, opts, &out[segment[len(segment)-1]], StatusCheckOut, reason)
	}
	return out
}

func fixResidualRuns(r Rules, opts resolveOptions, day []Event) []Event {
	out := cloneEvents(day)
	prev := -1
	for _, i := range activeIndexes(out) {
		if prev < 0 || out[prev].Status != out[i].Status {
			prev = i
			continue
		}
		if out[i].Timestamp.Sub(out[prev].Timestamp) < r.DuplicateWindow {
			prev = suppressDuplicate(out, prev, i)
			continue
		}
		if out[i].Status == StatusCheckIn {
			relabelUnprotected(r, opts, &out[i], StatusCheckOut, "consecutive check-ins")
		} else {
			relabelUnprotected(r, opts, &out[prev], StatusCheckIn, "consecutive check-outs")
		}
		// the fixed pair is closed; the next punch starts a new comparison
		prev = -1
	}
	return out
}

func enforceDayBounds(r Rules, opts resolveOptions, day []Event) []Event {
	out := cloneEvents(day)
	idx := activeIndexes(out)
	if len(idx) <= 2 {
		return out
	}
	relabelUnprotected(r, opts, &out[idx[0]], StatusCheckIn, "first punch of the day")
	relabelUnprotected(r, opts, &out[idx[len(idx)-1]], StatusCheckOut, "last punch of the day")
	return out
}

// protectedNightPunch reports punches that look like one half of a
// cross-midnight shift for a night worker.
func (r Rules) protectedNightPunch(opts resolveOptions, e Event) bool {
	if !opts.protectNight {
		return false
	}
	c := ClockOf(e.Timestamp)
	switch e.OriginalStatus {
	case StatusCheckIn:
		return e.Status == StatusCheckIn && r.NightLinkCheckIn.Contains(c)
	case StatusCheckOut:
		return e.Status == StatusCheckOut && r.NightLinkCheckOut.Contains(c)
	}
	return false
}

func relabelUnprotected(r Rules, opts resolveOptions, e *Event, to Status, reason string) {
	if r.protectedNightPunch(opts, *e) {
		return
	}
	relabel(e, to, reason)
}

func relabel(e *Event, to Status, reason string) {
	if e.Status == to {
		return
	}
	note := fmt.Sprintf("relabeled %s at %s from %s to %s: %s", e.Timestamp.Format(dateLayout), clockText(*e), e.Status, to, reason)
	e.Status = to
	e.Mislabeled = e.Status != e.OriginalStatus
	addNote(e, note)
}

func exclude(e *Event, keeper Event, reason string) {
	e.Excluded = true
	e.Processed = true
	e.keptBy = keeper.OriginalIndex + 1
	addNote(e, reason)
}

// addNote appends without sharing the backing array with the caller's copy.
func addNote(e *Event, note string) {
	e.Notes = append(e.Notes[:len(e.Notes):len(e.Notes)], note)
}

func cloneEvents(events []Event) []Event {
	return append([]Event(nil), events...)
}

func sortEvents(events []Event) []Event {
	sort.SliceStable(events, func(i, j int) bool {
		return eventLess(events[i], events[j])
	})
	return events
}

func eventLess(a, b Event) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.OriginalIndex < b.OriginalIndex
}

// splitByDate groups ordered events by calendar date of their timestamp.
func splitByDate(ordered []Event) [][]Event {
	var days [][]Event
	for i, e := range ordered {
		if i == 0 || !sameDate(ordered[i-1].Timestamp, e.Timestamp) {
			days = append(days, nil)
		}
		days[len(days)-1] = append(days[len(days)-1], e)
	}
	return days
}

func activeIndexes(day []Event) []int {
	idx := make([]int, 0, len(day))
	for i, e := range day {
		if !e.Excluded {
			idx = append(idx, i)
		}
	}
	return idx
}

func clockText(e Event) string {
	return e.Timestamp.Format(displayLayout)
}

func hoursText(d time.Duration) string {
	return fmt.Sprintf("%.1fh", d.Hours())
}
