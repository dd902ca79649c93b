package attendance

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type dayBucket struct {
	date   time.Time
	slots  []slot
	events []Event
}

// BuildDays folds one employee's reconciled events into one DailyRecord per
// working date. Excluded events are not paired but stay in AllTimeRecords.
func (r Rules) BuildDays(events []Event, nightWorker bool) []DailyRecord {
	ordered := sortEvents(cloneEvents(events))
	pair := func(in, out Event) bool {
		return r.canPair(in, out, nightWorker)
	}

	var slots []slot
	var excluded []Event
	reg := checkInRegister{}
	for _, e := range ordered {
		if e.Excluded {
			excluded = append(excluded, e)
			continue
		}
		var emitted []slot
		if e.Status == StatusCheckIn {
			reg, emitted = reg.checkIn(e)
		} else {
			reg, emitted = reg.checkOut(e, pair)
		}
		slots = append(slots, emitted...)
	}
	slots = append(slots, reg.flush()...)

	buckets := map[string]*dayBucket{}
	bucket := func(date time.Time) *dayBucket {
		key := DateKey(date)
		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{date: dateOf(date)}
			buckets[key] = b
		}
		return b
	}

	placed := map[int]*dayBucket{}
	for _, s := range slots {
		if s.in != nil && s.out != nil && !sameDate(s.in.WorkingWeekStart, s.out.WorkingWeekStart) {
			s.out.WorkingWeekStart = s.in.WorkingWeekStart
			s.out.ShiftType = ShiftNight
			addNote(s.out, fmt.Sprintf("paired with night check-in %s %s", DateKey(s.in.Timestamp), clockText(*s.in)))
		}
		anchor := slotAnchor(s)
		b := bucket(anchor)
		b.slots = append(b.slots, s)
		if s.in != nil {
			b.events = append(b.events, *s.in)
			placed[s.in.OriginalIndex] = b
		}
		if s.out != nil {
			b.events = append(b.events, *s.out)
			placed[s.out.OriginalIndex] = b
		}
	}
	if len(buckets) > 0 {
		dupes := make(map[int]Event, len(excluded))
		for _, e := range excluded {
			dupes[e.OriginalIndex] = e
		}
		for _, e := range excluded {
			b := excludedBucket(e, dupes, placed, buckets)
			b.events = append(b.events, e)
		}
	}

	records := make([]DailyRecord, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, r.buildRecord(b))
	}
	sortDays(records)
	return records
}

// canPair decides whether a check-out may close the open check-in. Pairs
// normally share a working date; a likely night worker may also close a
// night check-in with a check-out on the next morning.
func (r Rules) canPair(in, out Event, nightWorker bool) bool {
	if !out.Timestamp.After(in.Timestamp) {
		return false
	}
	if sameDate(in.WorkingWeekStart, out.WorkingWeekStart) {
		return true
	}
	return nightWorker &&
		in.ShiftType == ShiftNight &&
		daysBetween(in.Timestamp, out.Timestamp) == 1 &&
		ClockOf(out.Timestamp) < r.Noon &&
		out.Timestamp.Sub(in.Timestamp) <= r.MaxShiftSpan
}

// excludedBucket finds the day an excluded duplicate belongs to: the day of
// the event that superseded it, following chains of duplicates. Without a
// placed keeper it falls back to its own anchor, its calendar date, then the
// nearest day. It never opens a new bucket.
func excludedBucket(e Event, dupes map[int]Event, placed map[int]*dayBucket, buckets map[string]*dayBucket) *dayBucket {
	cur := e
	for hops := 0; cur.keptBy > 0 && hops <= len(dupes); hops++ {
		keeper := cur.keptBy - 1
		if b, ok := placed[keeper]; ok {
			return b
		}
		next, ok := dupes[keeper]
		if !ok {
			break
		}
		cur = next
	}
	if b, ok := buckets[DateKey(e.WorkingWeekStart)]; ok {
		return b
	}
	if b, ok := buckets[DateKey(e.Timestamp)]; ok {
		return b
	}
	var nearest *dayBucket
	best := 0
	for _, b := range buckets {
		gap := daysBetween(b.date, e.Timestamp)
		if gap < 0 {
			gap = -gap
		}
		if nearest == nil || gap < best || (gap == best && b.date.Before(nearest.date)) {
			nearest, best = b, gap
		}
	}
	return nearest
}

func slotAnchor(s slot) time.Time {
	if s.in != nil {
		return s.in.WorkingWeekStart
	}
	return s.out.WorkingWeekStart
}

func (r Rules) buildRecord(b *dayBucket) DailyRecord {
	var firstIn, lastOut *Event
	var notes []string
	for _, s := range b.slots {
		if s.in != nil && (firstIn == nil || eventLess(*s.in, *firstIn)) {
			firstIn = s.in
		}
		if s.out != nil && (lastOut == nil || eventLess(*lastOut, *s.out)) {
			lastOut = s.out
		}
	}

	events := sortEvents(b.events)
	corrected := false
	for _, e := range events {
		if e.Mislabeled || e.Excluded {
			corrected = true
		}
		notes = append(notes, e.Notes...)
	}

	record := DailyRecord{
		Date:             b.date,
		ShiftType:        ShiftOffDay,
		MissingCheckIn:   firstIn == nil,
		MissingCheckOut:  lastOut == nil,
		DisplayCheckIn:   DisplayMissing,
		DisplayCheckOut:  DisplayMissing,
		WorkingWeekStart: b.date,
		CorrectedRecords: corrected,
		AllTimeRecords:   events,
	}

	switch {
	case firstIn != nil:
		record.ShiftType = firstIn.ShiftType
	case lastOut != nil:
		record.ShiftType = lastOut.ShiftType
	}
	if firstIn != nil {
		t := firstIn.Timestamp
		record.FirstCheckIn = &t
		record.DisplayCheckIn = t.Format(displayLayout)
		record.IsLate = r.IsLateCheckIn(t, record.ShiftType)
	} else {
		notes = append(notes, "missing check-in")
	}
	if lastOut != nil {
		t := lastOut.Timestamp
		record.LastCheckOut = &t
		record.DisplayCheckOut = t.Format(displayLayout)
		record.EarlyLeave = r.IsEarlyLeave(t, record.ShiftType)
		record.ExcessiveOvertime = r.IsExcessiveOvertime(t, record.ShiftType)
	} else {
		notes = append(notes, "missing check-out")
	}

	if firstIn != nil && lastOut != nil {
		if lastOut.Timestamp.After(firstIn.Timestamp) {
			record.HoursWorked = r.PayableHours(HoursInput{
				CheckIn:   firstIn.Timestamp,
				CheckOut:  lastOut.Timestamp,
				ShiftType: record.ShiftType,
			})
		} else {
			record.EarlyLeave = false
			record.ExcessiveOvertime = false
			notes = append(notes, fmt.Sprintf("check-out %s precedes check-in %s", clockText(*lastOut), clockText(*firstIn)))
		}
	}
	for _, s := range b.slots {
		switch {
		case s.in != nil && s.out == nil && s.in != firstIn:
			notes = append(notes, "unpaired check-in at "+clockText(*s.in))
		case s.out != nil && s.in == nil && s.out != lastOut:
			notes = append(notes, "unpaired check-out at "+clockText(*s.out))
		}
	}

	record.Notes = strings.Join(notes, "; ")
	return record
}

func sortDays(days []DailyRecord) {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
}
