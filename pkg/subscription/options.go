package subscription

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/paywall/pkg/clock"
)

const (
	// DefaultDuration is how long a subscription stays active.
	DefaultDuration = 10 * time.Minute

	DefaultPlanKey  = "subscriptionPlan"
	DefaultStartKey = "subscriptionStartTime"
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock, typically with a clock.Mock in tests.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDuration overrides DefaultDuration. Non-positive values are ignored.
func WithDuration(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.duration = d
		}
	}
}

// WithKeys overrides the persisted key names.
func WithKeys(planKey, startKey string) Option {
	return func(s *Store) {
		s.planKey = planKey
		s.startKey = startKey
	}
}

// WithLogger sets the store logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithObserver registers an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}
