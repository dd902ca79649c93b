package attendance

type Status string

const (
	StatusCheckIn  Status = "check_in"
	StatusCheckOut Status = "check_out"
)

type ShiftType string

const (
	ShiftMorning ShiftType = "morning"
	ShiftEvening ShiftType = "evening"
	ShiftNight   ShiftType = "night"
	ShiftCanteen ShiftType = "canteen"
	ShiftOffDay  ShiftType = "off_day"
)

const (
	DisplayMissing = "MISSING"
	DisplayOffDay  = "OFF-DAY"

	dateLayout    = "2006-01-02"
	displayLayout = "15:04"
)

// Valid reports whether s is a shift type the calculator understands.
func (s ShiftType) Valid() bool {
	switch s {
	case ShiftMorning, ShiftEvening, ShiftNight, ShiftCanteen, ShiftOffDay:
		return true
	}
	return false
}
