package attendance

import (
	"fmt"
	"time"
)

// Clock is a time of day in minutes after midnight.
type Clock int

const minutesPerDay = 24 * 60

func At(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

func ClockOf(t time.Time) Clock {
	return At(t.Hour(), t.Minute())
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// On returns the instant at c on the calendar date of day.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location())
}

func (c Clock) add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// Window is the half-open interval [From, Until). A window whose Until is not
// after From wraps past midnight.
type Window struct {
	From  Clock
	Until Clock
}

func (w Window) Contains(c Clock) bool {
	if w.From < w.Until {
		return c >= w.From && c < w.Until
	}
	return c >= w.From || c < w.Until
}

// ShiftRule holds the schedule constants of one shift type.
type ShiftRule struct {
	Start      Clock
	Grace      time.Duration
	EarlyLeave Clock
	Overtime   Clock
}

// NightWorkerHeuristic decides whether an employee habitually works nights.
// Both thresholds are tunable; neither is settled business policy.
type NightWorkerHeuristic struct {
	CheckInWindow     Window
	CheckInShare      float64
	CheckOutWindow    Window
	MinEarlyCheckOuts int
}

// Rules is the configuration table shared by the classifier, the flag
// functions and the payable-hours calculator. Values returned by DefaultRules
// are independent copies.
type Rules struct {
	CanteenStarts        []Clock
	CanteenEarlyLastHour int
	NightFrom            Clock
	NightUntil           Clock
	MorningUntil         Clock
	Noon                 Clock

	NightWorker       NightWorkerHeuristic
	NightLinkCheckIn  Window
	NightLinkCheckOut Window

	DuplicateWindow time.Duration
	FlipMin         time.Duration
	FlipMax         time.Duration
	SegmentGap      time.Duration
	MaxShiftSpan    time.Duration

	MaxHours        float64
	OvertimeBucket  float64
	OvertimeStep    float64
	FullDayHours    float64
	FullDayRawHours float64

	shifts      map[ShiftType]ShiftRule
	canteenLate ShiftRule
}

func DefaultRules() Rules {
	return Rules{
		CanteenStarts:        []Clock{At(6, 0), At(7, 0), At(8, 0)},
		CanteenEarlyLastHour: 7,
		NightFrom:            At(20, 0),
		NightUntil:           At(4, 30),
		MorningUntil:         At(12, 30),
		Noon:                 At(12, 0),

		NightWorker: NightWorkerHeuristic{
			CheckInWindow:     Window{From: At(20, 0), Until: At(4, 0)},
			CheckInShare:      0.30,
			CheckOutWindow:    Window{From: At(5, 0), Until: At(8, 0)},
			MinEarlyCheckOuts: 2,
		},
		NightLinkCheckIn:  Window{From: At(20, 0), Until: minutesPerDay},
		NightLinkCheckOut: Window{From: At(5, 0), Until: At(8, 0)},

		DuplicateWindow: 60 * time.Minute,
		FlipMin:         7 * time.Hour,
		FlipMax:         11 * time.Hour,
		SegmentGap:      90 * time.Minute,
		MaxShiftSpan:    15 * time.Hour,

		MaxHours:        15.0,
		OvertimeBucket:  9.5,
		OvertimeStep:    0.25,
		FullDayHours:    9.0,
		FullDayRawHours: 8.5,

		shifts: map[ShiftType]ShiftRule{
			ShiftMorning: {Start: At(9, 0), Grace: 15 * time.Minute, EarlyLeave: At(17, 30), Overtime: At(20, 0)},
			ShiftEvening: {Start: At(14, 0), Grace: 15 * time.Minute, EarlyLeave: At(22, 30), Overtime: At(1, 0)},
			ShiftNight:   {Start: At(21, 0), Grace: 15 * time.Minute, EarlyLeave: At(5, 30), Overtime: At(9, 0)},
			ShiftCanteen: {Start: At(7, 0), Grace: 10 * time.Minute, EarlyLeave: At(15, 30), Overtime: At(19, 0)},
		},
		canteenLate: ShiftRule{Start: At(8, 0), Grace: 10 * time.Minute, EarlyLeave: At(16, 30), Overtime: At(19, 0)},
	}
}

// Shift returns the rule for shift. Off days and unknown types fall back to
// the morning rule.
func (r Rules) Shift(shift ShiftType) ShiftRule {
	if rule, ok := r.shifts[shift]; ok {
		return rule
	}
	return r.shifts[ShiftMorning]
}

// WithShift returns a copy of r with the rule for shift replaced.
func (r Rules) WithShift(shift ShiftType, rule ShiftRule) Rules {
	shifts := make(map[ShiftType]ShiftRule, len(r.shifts)+1)
	for k, v := range r.shifts {
		shifts[k] = v
	}
	shifts[shift] = rule
	r.shifts = shifts
	r.CanteenStarts = append([]Clock(nil), r.CanteenStarts...)
	return r
}

// canteenRule picks the cohort rule from the check-in hour.
func (r Rules) canteenRule(checkIn Clock) ShiftRule {
	if checkIn.Hour() <= r.CanteenEarlyLastHour {
		return r.shifts[ShiftCanteen]
	}
	return r.canteenLate
}

// earlyLeaveThreshold is the time of day after which a check-out earns a
// full day for the given shift and check-in.
func (r Rules) earlyLeaveThreshold(shift ShiftType, checkIn Clock) Clock {
	if shift == ShiftCanteen {
		return r.canteenRule(checkIn).EarlyLeave
	}
	return r.Shift(shift).EarlyLeave
}

var defaultRules = DefaultRules()
