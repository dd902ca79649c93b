package attendance

import "time"

func IsLateCheckIn(t time.Time, shift ShiftType) bool {
	return defaultRules.IsLateCheckIn(t, shift)
}

func IsEarlyLeave(t time.Time, shift ShiftType) bool {
	return defaultRules.IsEarlyLeave(t, shift)
}

func IsExcessiveOvertime(t time.Time, shift ShiftType) bool {
	return defaultRules.IsExcessiveOvertime(t, shift)
}

// IsLateCheckIn compares a check-in against the shift start plus grace.
// Night check-ins after midnight are always late.
func (r Rules) IsLateCheckIn(t time.Time, shift ShiftType) bool {
	c := ClockOf(t)
	switch shift {
	case ShiftCanteen:
		rule := r.canteenRule(c)
		return c > rule.Start.add(rule.Grace) && c < r.Noon
	case ShiftNight:
		rule := r.Shift(ShiftNight)
		return c > rule.Start.add(rule.Grace) || c < r.Noon
	case ShiftMorning, ShiftEvening:
		rule := r.Shift(shift)
		return c > rule.Start.add(rule.Grace)
	}
	return false
}

// IsEarlyLeave reports a check-out before the shift's early-leave cutoff.
func (r Rules) IsEarlyLeave(t time.Time, shift ShiftType) bool {
	c := ClockOf(t)
	rule := r.Shift(shift)
	switch shift {
	case ShiftNight:
		return c < rule.EarlyLeave || c >= r.NightFrom
	case ShiftEvening:
		return c >= r.Noon && c < rule.EarlyLeave
	case ShiftMorning, ShiftCanteen:
		return c < rule.EarlyLeave
	}
	return false
}

// IsExcessiveOvertime reports a check-out at or past the shift's overtime
// cutoff. Evening and night cutoffs fall on the following morning.
func (r Rules) IsExcessiveOvertime(t time.Time, shift ShiftType) bool {
	c := ClockOf(t)
	rule := r.Shift(shift)
	switch shift {
	case ShiftNight:
		return c >= rule.Overtime && c < r.NightFrom
	case ShiftEvening:
		return c >= rule.Overtime && c < r.Noon
	case ShiftMorning, ShiftCanteen:
		return c >= rule.Overtime
	}
	return false
}
