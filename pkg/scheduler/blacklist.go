package scheduler

import (
	"cloud.google.com/go/civil"

	"github.com/arnavshah/duty-roster-go/pkg/models"
)

type blacklistEntry struct {
	person *models.Person
	day    civil.Date
}

// Blacklist holds (person, day) pairs excluded from the fill pass while a
// repaired stretch of the plan is redone. It lives for one run only.
type Blacklist struct {
	entries map[blacklistEntry]struct{}
}

// NewBlacklist creates an empty blacklist
func NewBlacklist() *Blacklist {
	return &Blacklist{entries: make(map[blacklistEntry]struct{})}
}

// Add forbids person on day.
func (b *Blacklist) Add(person *models.Person, day civil.Date) {
	b.entries[blacklistEntry{person, day}] = struct{}{}
}

// Contains reports whether person is forbidden on day.
func (b *Blacklist) Contains(person *models.Person, day civil.Date) bool {
	_, ok := b.entries[blacklistEntry{person, day}]
	return ok
}

// Prune drops every entry whose day is strictly after cursor.
func (b *Blacklist) Prune(cursor civil.Date) {
	for e := range b.entries {
		if e.day.After(cursor) {
			delete(b.entries, e)
		}
	}
}

// Len is the number of entries.
func (b *Blacklist) Len() int {
	return len(b.entries)
}

// Days returns the day of every entry, in no particular order.
func (b *Blacklist) Days() []civil.Date {
	days := make([]civil.Date, 0, len(b.entries))
	for e := range b.entries {
		days = append(days, e.day)
	}
	return days
}
