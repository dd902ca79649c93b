package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoursInput is the argument of the payable-hours contract. Batch
// reconciliation and operator edits both go through it.
type HoursInput struct {
	CheckIn        time.Time
	CheckOut       time.Time
	ShiftType      ShiftType
	PenaltyMinutes int
	ManualEdit     bool
}

func PayableHours(in HoursInput) float64 {
	return defaultRules.PayableHours(in)
}

// PayableHours converts a check-in/check-out pair into standardized,
// penalty-adjusted hours in [0, MaxHours], rounded to two decimals.
//
// Manual edits skip standardization and only subtract the penalty.
func (r Rules) PayableHours(in HoursInput) float64 {
	checkOut := in.CheckOut
	if in.ShiftType == ShiftNight {
		checkOut = normalizeNightCheckOut(in.CheckIn, checkOut)
	}
	raw := decimal.NewFromFloat(checkOut.Sub(in.CheckIn).Hours())
	penalty := decimal.NewFromInt(int64(in.PenaltyMinutes)).Div(decimal.NewFromInt(60))
	maxHours := decimal.NewFromFloat(r.MaxHours)

	if in.ManualEdit {
		return clampHours(raw.Sub(penalty), maxHours)
	}

	fullDay := decimal.NewFromFloat(r.FullDayHours)
	var hours decimal.Decimal
	switch {
	case raw.GreaterThan(maxHours):
		hours = maxHours
	case raw.GreaterThan(decimal.NewFromFloat(r.OvertimeBucket)):
		hours = roundToStep(raw, decimal.NewFromFloat(r.OvertimeStep))
	default:
		threshold := nextOccurrence(in.CheckIn, r.earlyLeaveThreshold(in.ShiftType, ClockOf(in.CheckIn)))
		switch {
		case !checkOut.Before(threshold) && checkOut.After(in.CheckIn):
			hours = fullDay
		case raw.GreaterThanOrEqual(decimal.NewFromFloat(r.FullDayRawHours)):
			hours = fullDay
		default:
			hours = raw
		}
	}

	if penalty.GreaterThanOrEqual(fullDay) {
		return 0
	}
	return clampHours(hours.Sub(penalty), maxHours)
}

// normalizeNightCheckOut moves a night check-out onto the calendar day after
// the check-in when the punch dates are inconsistent.
func normalizeNightCheckOut(checkIn, checkOut time.Time) time.Time {
	inDate := dateOf(checkIn)
	outDate := dateOf(checkOut)
	nextDay := ClockOf(checkOut).On(inDate.AddDate(0, 0, 1)).Add(time.Duration(checkOut.Second()) * time.Second)
	switch delta := daysBetween(inDate, outDate); {
	case delta == 0 && checkOut.Before(checkIn):
		return checkOut.AddDate(0, 0, 1)
	case delta > 1 || delta < 0:
		return nextDay
	}
	return checkOut
}

// nextOccurrence is the first instant at c strictly after from.
func nextOccurrence(from time.Time, c Clock) time.Time {
	at := c.On(from)
	if !at.After(from) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

func roundToStep(value, step decimal.Decimal) decimal.Decimal {
	return value.Div(step).Round(0).Mul(step)
}

func clampHours(hours, maxHours decimal.Decimal) float64 {
	if hours.IsNegative() {
		return 0
	}
	if hours.GreaterThan(maxHours) {
		hours = maxHours
	}
	f, _ := hours.Round(2).Float64()
	return f
}
