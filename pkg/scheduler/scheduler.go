package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/arnavshah/duty-roster-go/pkg/models"
)

var (
	// ErrNoSolution is returned when repair would have to step back past the first day.
	ErrNoSolution = errors.New("no possible solution")
	// ErrStepLimit is returned when a run visits more days than allowed.
	ErrStepLimit = errors.New("step limit exceeded")
)

// Scheduler fills every day of a grid from a team, sweeping forward and
// repairing the previous day whenever a day cannot get a single assignee.
// A Scheduler serves exactly one run.
type Scheduler struct {
	Team      []*models.Person
	Grid      *models.Grid
	Blacklist *Blacklist

	capacity int
	maxSteps int
	rng      *rand.Rand
	logger   *zap.Logger

	steps   int
	repairs int
}

// Result is a completed planning
type Result struct {
	Grid    *models.Grid
	Steps   int
	Repairs int
}

// NewScheduler creates a new scheduler instance over an empty grid
func NewScheduler(grid *models.Grid, team []*models.Person, opts ...Option) *Scheduler {
	s := &Scheduler{
		Team:      slices.Clone(team),
		Grid:      grid,
		Blacklist: NewBlacklist(),
		capacity:  DefaultCapacity,
		maxSteps:  DefaultMaxSteps,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = defaultRand()
	}
	return s
}

// Steps is the number of day visits so far.
func (s *Scheduler) Steps() int { return s.steps }

// Repairs is the number of repair detours so far.
func (s *Scheduler) Repairs() int { return s.repairs }

// Run assigns every day of the grid starting from its first day.
// On error the grid and the team ledgers are left as they were at the failure.
func (s *Scheduler) Run() (*Result, error) {
	day := s.Grid.First()
	last := s.Grid.Last()
	capacity := s.capacity

	for {
		if s.steps >= s.maxSteps {
			return nil, fmt.Errorf("%w: %d steps, stopped at %s", ErrStepLimit, s.steps, day)
		}
		s.steps++

		s.assignDay(day, capacity)
		capacity = s.capacity

		if len(s.Grid.Get(day)) == 0 {
			prev := day.AddDays(-1)
			if err := s.repair(prev); err != nil {
				return nil, fmt.Errorf("staffing %s: %w", day, err)
			}
			s.repairs++
			day = prev
			// the repaired day is retried once with a single seat
			capacity = 1
			continue
		}

		if day == last {
			break
		}
		day = day.AddDays(1)
	}

	s.logger.Info("planning complete",
		zap.Stringer("first", s.Grid.First()),
		zap.Stringer("last", last),
		zap.Int("steps", s.steps),
		zap.Int("repairs", s.repairs))

	return &Result{Grid: s.Grid, Steps: s.steps, Repairs: s.repairs}, nil
}

// assignDay runs the mandatory pass then the fill pass for day.
func (s *Scheduler) assignDay(day civil.Date, capacity int) {
	s.rng.Shuffle(len(s.Team), func(i, j int) {
		s.Team[i], s.Team[j] = s.Team[j], s.Team[i]
	})

	assigned := s.Grid.Get(day)

	// Mandatory shifts ignore availability, gender and capacity
	for _, p := range s.Team {
		if p.CheckMandatoryShift(day) {
			assigned = append(assigned, p)
			p.RecordShift(day)
		}
	}

	for _, p := range s.Team {
		if !p.IsAvailable(day) {
			continue
		}
		if s.Blacklist.Contains(p, day) {
			continue
		}
		if len(assigned) >= capacity {
			break
		}
		if len(assigned) > 0 && p.Gender != assigned[0].Gender {
			continue
		}
		assigned = append(assigned, p)
		p.RecordShift(day)
	}

	s.Grid.Set(day, assigned)
}

// repair clears day so it can be redone, blacklisting one of its assignees there.
func (s *Scheduler) repair(day civil.Date) error {
	if !s.Grid.Contains(day) {
		return ErrNoSolution
	}

	assigned := s.Grid.Get(day)
	for _, p := range assigned {
		if err := p.UndoShift(day); err != nil {
			return err
		}
	}

	if victim := s.pickVictim(day, assigned); victim != nil {
		s.Blacklist.Add(victim, day)
		s.logger.Debug("repairing day",
			zap.Stringer("day", day),
			zap.String("blacklisted", victim.LastName),
			zap.Int("assignees", len(assigned)))
	}

	s.Grid.Set(day, nil)
	s.Blacklist.Prune(day)
	return nil
}

// pickVictim chooses uniformly among the assignees that the fill pass placed.
// Mandatory assignees are only picked when nobody else is on the day.
func (s *Scheduler) pickVictim(day civil.Date, assigned []*models.Person) *models.Person {
	if len(assigned) == 0 {
		return nil
	}
	candidates := make([]*models.Person, 0, len(assigned))
	for _, p := range assigned {
		if !p.CheckMandatoryShift(day) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = assigned
	}
	return candidates[s.rng.Intn(len(candidates))]
}
