package models

import (
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/civil"
)

// Cooldown is the number of days after a shift during which the person rests.
const Cooldown = 3

var (
	// ErrInvalidLeave is returned when a leave starts after it ends.
	ErrInvalidLeave = errors.New("leave starts after it ends")
	// ErrMandatoryDuringLeave is returned when a mandatory shift falls inside a requested leave.
	ErrMandatoryDuringLeave = errors.New("mandatory shift falls inside a leave period")
	// ErrUndoMismatch is returned when no recorded shift matches the day being undone.
	ErrUndoMismatch = errors.New("no recorded shift for day")
)

// Gender is used by the single-gender-per-shift rule
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// ParseGender accepts the long and the one-letter forms, case-sensitive lower or upper.
func ParseGender(s string) (Gender, error) {
	switch s {
	case "female", "Female", "F", "f":
		return GenderFemale, nil
	case "male", "Male", "M", "m":
		return GenderMale, nil
	}
	return "", fmt.Errorf("unknown gender %q", s)
}

// LeaveCause tells why a person is unavailable over an interval
type LeaveCause int

const (
	CauseRequested LeaveCause = iota
	CausePreShiftRest
	CauseShift
)

func (c LeaveCause) String() string {
	switch c {
	case CauseRequested:
		return "requested"
	case CausePreShiftRest:
		return "pre-shift-rest"
	case CauseShift:
		return "shift"
	}
	return "unknown"
}

// Leave is an inclusive interval of unavailability.
// Origin is the shift day for CauseShift and CausePreShiftRest entries.
type Leave struct {
	Start  civil.Date
	End    civil.Date
	Cause  LeaveCause
	Origin civil.Date
}

// Covers reports whether day falls inside the leave, bounds included.
func (l Leave) Covers(day civil.Date) bool {
	return !day.Before(l.Start) && !day.After(l.End)
}

// Person is one worker of the team. LastName is the unique key.
type Person struct {
	FirstName string
	LastName  string
	Gender    Gender

	leaves    []Leave
	mandatory []civil.Date
	freeDays  []civil.Date
}

// NewPerson creates a person with an empty ledger
func NewPerson(firstName, lastName string, gender Gender) *Person {
	return &Person{
		FirstName: firstName,
		LastName:  lastName,
		Gender:    gender,
	}
}

func (p *Person) String() string {
	return p.FirstName + " " + p.LastName
}

// SetLeave appends a requested leave interval.
func (p *Person) SetLeave(start, end civil.Date) error {
	return p.appendLeave(Leave{Start: start, End: end, Cause: CauseRequested})
}

func (p *Person) appendLeave(l Leave) error {
	if l.Start.After(l.End) {
		return fmt.Errorf("%s %s..%s: %w", p.LastName, l.Start, l.End, ErrInvalidLeave)
	}
	p.leaves = append(p.leaves, l)
	return nil
}

// RemoveLastLeave drops the most recently appended leave, whatever its cause.
func (p *Person) RemoveLastLeave() {
	if len(p.leaves) == 0 {
		return
	}
	p.leaves = p.leaves[:len(p.leaves)-1]
}

// Leaves returns a copy of the ledger in append order.
func (p *Person) Leaves() []Leave {
	return slices.Clone(p.leaves)
}

// IsAvailable is true iff day falls inside no leave interval.
func (p *Person) IsAvailable(day civil.Date) bool {
	for _, l := range p.leaves {
		if l.Covers(day) {
			return false
		}
	}
	return true
}

// SetMandatoryShift records a day the person must work and blocks the
// Cooldown days before it so that no earlier shift runs into it.
func (p *Person) SetMandatoryShift(day civil.Date) error {
	for _, l := range p.leaves {
		if l.Cause == CauseRequested && l.Covers(day) {
			return fmt.Errorf("%s on %s: %w", p.LastName, day, ErrMandatoryDuringLeave)
		}
	}
	if p.CheckMandatoryShift(day) {
		return nil
	}
	p.mandatory = append(p.mandatory, day)
	return p.appendLeave(Leave{
		Start:  day.AddDays(-Cooldown),
		End:    day.AddDays(-1),
		Cause:  CausePreShiftRest,
		Origin: day,
	})
}

// CheckMandatoryShift reports whether day is a mandatory shift for the person.
func (p *Person) CheckMandatoryShift(day civil.Date) bool {
	return slices.Contains(p.mandatory, day)
}

// MandatoryShifts returns the mandatory days in the order they were set.
func (p *Person) MandatoryShifts() []civil.Date {
	return slices.Clone(p.mandatory)
}

// SetFreeDay marks a day intentionally left unassigned. Reporting only.
func (p *Person) SetFreeDay(day civil.Date) {
	if !slices.Contains(p.freeDays, day) {
		p.freeDays = append(p.freeDays, day)
	}
}

// FreeDays returns the free-day markers.
func (p *Person) FreeDays() []civil.Date {
	return slices.Clone(p.freeDays)
}

// RecordShift marks day as worked: the person is unavailable from day
// through day+Cooldown.
func (p *Person) RecordShift(day civil.Date) {
	// start <= end always holds here
	_ = p.appendLeave(Leave{
		Start:  day,
		End:    day.AddDays(Cooldown),
		Cause:  CauseShift,
		Origin: day,
	})
}

// UndoShift removes the cooldown entry recorded for day. The most recent
// matching entry is removed; other leaves are left untouched.
func (p *Person) UndoShift(day civil.Date) error {
	for i := len(p.leaves) - 1; i >= 0; i-- {
		l := p.leaves[i]
		if l.Cause == CauseShift && l.Origin == day {
			p.leaves = slices.Delete(p.leaves, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%s on %s: %w", p.LastName, day, ErrUndoMismatch)
}
