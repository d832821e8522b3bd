package models

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
)

// ErrEmptyHorizon is returned when a grid would cover no days.
var ErrEmptyHorizon = errors.New("horizon must cover at least one day")

// Grid maps every day of a contiguous horizon to the persons assigned that day.
type Grid struct {
	days  []civil.Date
	slots map[civil.Date][]*Person
}

// NewGrid creates an empty grid covering first through last inclusive.
func NewGrid(first, last civil.Date) (*Grid, error) {
	if first.After(last) {
		return nil, ErrEmptyHorizon
	}
	g := &Grid{slots: make(map[civil.Date][]*Person)}
	for d := first; !d.After(last); d = d.AddDays(1) {
		g.days = append(g.days, d)
		g.slots[d] = nil
	}
	return g, nil
}

// NewMonthGrid creates an empty grid covering a calendar month.
func NewMonthGrid(year int, month time.Month) *Grid {
	first := civil.Date{Year: year, Month: month, Day: 1}
	last := civil.DateOf(first.In(time.UTC).AddDate(0, 1, -1))
	g, _ := NewGrid(first, last)
	return g
}

// Get returns the persons assigned to day.
func (g *Grid) Get(day civil.Date) []*Person {
	return g.slots[day]
}

// Set replaces the assignment of a day inside the horizon. Days outside the
// horizon are ignored.
func (g *Grid) Set(day civil.Date, persons []*Person) {
	if _, ok := g.slots[day]; !ok {
		return
	}
	g.slots[day] = persons
}

// Contains reports whether day belongs to the horizon.
func (g *Grid) Contains(day civil.Date) bool {
	_, ok := g.slots[day]
	return ok
}

// Days returns the horizon in chronological order.
func (g *Grid) Days() []civil.Date {
	return append([]civil.Date(nil), g.days...)
}

// First returns the first day of the horizon.
func (g *Grid) First() civil.Date { return g.days[0] }

// Last returns the last day of the horizon.
func (g *Grid) Last() civil.Date { return g.days[len(g.days)-1] }

// Len is the number of days in the horizon.
func (g *Grid) Len() int { return len(g.days) }

// Mapping returns ISO date -> last names, the form handed to renderers
// and stored for continuity.
func (g *Grid) Mapping() map[string][]string {
	out := make(map[string][]string, len(g.days))
	for _, d := range g.days {
		names := make([]string, 0, len(g.slots[d]))
		for _, p := range g.slots[d] {
			names = append(names, p.LastName)
		}
		out[d.String()] = names
	}
	return out
}
