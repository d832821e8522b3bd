package scheduler

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCapacity is the number of persons per day's shift.
	DefaultCapacity = 2
	// DefaultMaxSteps bounds the number of day visits of one run.
	DefaultMaxSteps = 10000
)

// Option configures a Scheduler
type Option func(*Scheduler)

// WithCapacity sets the per-day capacity. Values below 1 keep the default.
func WithCapacity(capacity int) Option {
	return func(s *Scheduler) {
		if capacity >= 1 {
			s.capacity = capacity
		}
	}
}

// WithMaxSteps caps the number of day visits, repairs included.
func WithMaxSteps(steps int) Option {
	return func(s *Scheduler) {
		if steps > 0 {
			s.maxSteps = steps
		}
	}
}

// WithRand sets the randomness source used for shuffles and repair tie-breaks.
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSeed is WithRand over a deterministic source.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func defaultRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
