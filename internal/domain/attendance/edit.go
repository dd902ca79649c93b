package attendance

import (
	"fmt"
	"strings"
)

// ApplyManualEdit replaces a record's punches with operator values. Hours go
// through the same payable-hours contract as batch reconciliation, in manual
// mode.
func (r Rules) ApplyManualEdit(rec DailyRecord, edit ManualEdit) (DailyRecord, error) {
	if rec.Approved {
		return rec, ErrAlreadyApproved
	}
	if edit.PenaltyMinutes < 0 {
		return rec, ErrInvalidPenalty
	}
	shift := edit.ShiftType
	if shift == "" {
		shift = r.Classify(edit.CheckIn)
	}
	if !shift.Valid() || shift == ShiftOffDay {
		return rec, ErrInvalidShiftType
	}
	checkOut := edit.CheckOut
	if shift == ShiftNight {
		checkOut = normalizeNightCheckOut(edit.CheckIn, checkOut)
	}
	if !checkOut.After(edit.CheckIn) {
		return rec, ErrInvalidTimeRange
	}

	in, out := edit.CheckIn, checkOut
	rec.FirstCheckIn = &in
	rec.LastCheckOut = &out
	rec.ShiftType = shift
	rec.PenaltyMinutes = edit.PenaltyMinutes
	rec.ManualEdit = true
	rec.MissingCheckIn = false
	rec.MissingCheckOut = false
	rec.DisplayCheckIn = in.Format(displayLayout)
	rec.DisplayCheckOut = out.Format(displayLayout)
	rec.IsLate = r.IsLateCheckIn(in, shift)
	rec.EarlyLeave = r.IsEarlyLeave(out, shift)
	rec.ExcessiveOvertime = r.IsExcessiveOvertime(out, shift)
	rec.HoursWorked = r.PayableHours(HoursInput{
		CheckIn:        in,
		CheckOut:       out,
		ShiftType:      shift,
		PenaltyMinutes: edit.PenaltyMinutes,
		ManualEdit:     true,
	})
	note := fmt.Sprintf("manual edit %s-%s", rec.DisplayCheckIn, rec.DisplayCheckOut)
	if strings.TrimSpace(edit.Note) != "" {
		note += ": " + strings.TrimSpace(edit.Note)
	}
	rec.Notes = appendNote(rec.Notes, note)
	return rec, nil
}

// ApplyPenalty sets the penalty on a record and recomputes its hours.
func (r Rules) ApplyPenalty(rec DailyRecord, minutes int) (DailyRecord, error) {
	if rec.Approved {
		return rec, ErrAlreadyApproved
	}
	if minutes < 0 {
		return rec, ErrInvalidPenalty
	}
	rec.PenaltyMinutes = minutes
	if rec.FirstCheckIn != nil && rec.LastCheckOut != nil && rec.LastCheckOut.After(*rec.FirstCheckIn) {
		rec.HoursWorked = r.PayableHours(HoursInput{
			CheckIn:        *rec.FirstCheckIn,
			CheckOut:       *rec.LastCheckOut,
			ShiftType:      rec.ShiftType,
			PenaltyMinutes: minutes,
			ManualEdit:     rec.ManualEdit,
		})
	}
	rec.Notes = appendNote(rec.Notes, fmt.Sprintf("penalty %d min", minutes))
	return rec, nil
}

func appendNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + "; " + note
}
