package attendance

// registerState tags the open check-in register.
type registerState int

const (
	registerIdle registerState = iota
	registerAwaitingCheckout
)

// slot is one reconciled punch pair. Either side may be missing.
type slot struct {
	in  *Event
	out *Event
}

// checkInRegister carries at most one open check-in across an employee's
// ordered events. Transitions return the next register and any slots that
// became final.
type checkInRegister struct {
	state registerState
	open  Event
}

// checkIn opens e. An already open check-in is closed as missing its
// check-out.
func (reg checkInRegister) checkIn(e Event) (checkInRegister, []slot) {
	next := checkInRegister{state: registerAwaitingCheckout, open: e}
	if reg.state == registerAwaitingCheckout {
		orphan := reg.open
		return next, []slot{{in: &orphan}}
	}
	return next, nil
}

// checkOut closes the open check-in with e when pair allows it. Otherwise the
// open check-in is closed as missing its check-out and e stands alone.
func (reg checkInRegister) checkOut(e Event, pair func(in, out Event) bool) (checkInRegister, []slot) {
	out := e
	if reg.state == registerIdle {
		return reg, []slot{{out: &out}}
	}
	in := reg.open
	if pair(in, e) {
		return checkInRegister{}, []slot{{in: &in, out: &out}}
	}
	return checkInRegister{}, []slot{{in: &in}, {out: &out}}
}

// flush closes a dangling check-in at the end of the stream.
func (reg checkInRegister) flush() []slot {
	if reg.state == registerIdle {
		return nil
	}
	in := reg.open
	return []slot{{in: &in}}
}
