package attendance

import "time"

// FillOffDays returns days plus an OFF-DAY record for every date between the
// earliest and latest existing record that has none. The result is sorted.
func FillOffDays(days []DailyRecord) []DailyRecord {
	if len(days) == 0 {
		return nil
	}
	out := append([]DailyRecord(nil), days...)
	sortDays(out)

	present := make(map[string]bool, len(out))
	for _, d := range out {
		present[DateKey(d.Date)] = true
	}
	first := dateOf(out[0].Date)
	last := dateOf(out[len(out)-1].Date)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if !present[DateKey(day)] {
			out = append(out, OffDay(day))
		}
	}
	sortDays(out)
	return out
}

// OffDay is the record of a date in an employee's range with no activity.
func OffDay(date time.Time) DailyRecord {
	date = dateOf(date)
	return DailyRecord{
		Date:             date,
		ShiftType:        ShiftOffDay,
		MissingCheckIn:   true,
		MissingCheckOut:  true,
		DisplayCheckIn:   DisplayOffDay,
		DisplayCheckOut:  DisplayOffDay,
		WorkingWeekStart: date,
		AllTimeRecords:   []Event{},
	}
}
