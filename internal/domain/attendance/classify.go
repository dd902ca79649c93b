package attendance

import "time"

// Classify maps a check-in time to a shift type using the default rules.
func Classify(checkIn time.Time) ShiftType {
	return defaultRules.Classify(checkIn)
}

// Classify maps a check-in time to a shift type. Canteen starts win over every
// other window, so 06:00 is canteen even though it also lies in the morning
// window.
func (r Rules) Classify(checkIn time.Time) ShiftType {
	c := ClockOf(checkIn)
	for _, start := range r.CanteenStarts {
		if c == start {
			return ShiftCanteen
		}
	}
	if (Window{From: r.NightFrom, Until: r.NightUntil}).Contains(c) {
		return ShiftNight
	}
	if c >= r.NightUntil && c < r.MorningUntil {
		return ShiftMorning
	}
	return ShiftEvening
}
