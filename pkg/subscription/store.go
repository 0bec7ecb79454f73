package subscription

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrymomot/paywall/pkg/clock"
	"github.com/dmitrymomot/paywall/pkg/kv"
	"github.com/dmitrymomot/paywall/pkg/logger"
)

// Store is the single source of truth for the current plan.
// All methods are safe for concurrent use.
type Store struct {
	storage   kv.Storage
	clock     clock.Clock
	log       *slog.Logger
	duration  time.Duration
	planKey   string
	startKey  string
	observers []Observer

	// ctx outlives the constructor's context and is used by the expiry callback.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  State
	expiry *expiry
	closed bool
}

// NewStore builds a Store over storage and reconciles the persisted record
// before returning. Panics if storage is nil.
func NewStore(ctx context.Context, storage kv.Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		panic("subscription: kv.Storage is required")
	}

	s := &Store{
		storage:  storage,
		clock:    clock.New(),
		log:      logger.Discard(),
		duration: DefaultDuration,
		planKey:  DefaultPlanKey,
		startKey: DefaultStartKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.planKey == "" || s.startKey == "" || s.planKey == s.startKey {
		return nil, ErrInvalidKeys
	}

	s.log = s.log.With(logger.Component("subscription"))
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.expiry = newExpiry(s.clock, s.expire)

	events, err := s.initialize(ctx)
	if err != nil {
		s.cancel()
		return nil, err
	}
	s.notify(ctx, events...)
	return s, nil
}

// Subscribe starts a new window for plan, replacing any current subscription.
func (s *Store) Subscribe(ctx context.Context, plan Plan) error {
	if !plan.IsPaid() {
		return ErrInvalidPlan
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	startedAt := truncateMillis(s.clock.Now())
	err := kv.SetAll(ctx, s.storage,
		kv.Pair{Key: s.startKey, Value: strconv.FormatInt(startedAt.UnixMilli(), 10)},
		kv.Pair{Key: s.planKey, Value: string(plan)},
	)
	if err != nil {
		s.mu.Unlock()
		s.log.ErrorContext(ctx, "failed to persist subscription", logger.Plan(plan), logger.Error(err))
		return errors.Join(ErrPersistence, err)
	}

	s.state = State{Plan: plan, StartedAt: startedAt}
	if err := s.expiry.arm(ctx, s.duration); err != nil {
		s.mu.Unlock()
		return errors.Join(ErrFailedToArmTimer, err)
	}
	s.mu.Unlock()

	s.log.InfoContext(ctx, "subscription started",
		logger.Plan(plan),
		logger.StartedAt(startedAt),
		logger.Remaining(s.duration),
	)
	s.notify(ctx, Event{Type: EventSubscribed, Plan: plan, At: startedAt})
	return nil
}

// Cancel clears the subscription and disarms the expiry timer.
// Cancelling without an active subscription is a no-op that still makes sure
// nothing is left in storage.
func (s *Store) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if err := s.clearLocked(ctx); err != nil {
		s.mu.Unlock()
		s.log.ErrorContext(ctx, "failed to clear subscription", logger.Error(err))
		return err
	}

	prev := s.state
	s.state = State{}
	s.expiry.disarm(ctx)
	s.mu.Unlock()

	if !prev.IsActive() {
		return nil
	}
	s.log.InfoContext(ctx, "subscription cancelled", logger.Plan(prev.Plan))
	s.notify(ctx, Event{Type: EventCancelled, Plan: prev.Plan, At: s.clock.Now()})
	return nil
}

// IsSubscribed reports whether a paid plan is active.
func (s *Store) IsSubscribed() bool {
	return s.State().IsActive()
}

// CurrentPlan returns the active plan or PlanNone.
func (s *Store) CurrentPlan() Plan {
	return s.State().Plan
}

// State returns a snapshot of the current subscription.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExpiresAt returns when the active subscription lapses.
func (s *Store) ExpiresAt() (time.Time, bool) {
	return s.State().ExpiresAt(s.duration)
}

// Remaining returns the time left before expiry, or zero when unsubscribed.
func (s *Store) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiry.remaining()
}

// Duration returns the subscription window.
func (s *Store) Duration() time.Duration {
	return s.duration
}

// Close releases the pending expiry timer. The persisted record is left as is
// and will be reconciled by the next NewStore. Further Subscribe calls fail
// with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.expiry.disarm(s.ctx)
	s.cancel()
	return nil
}

func (s *Store) initialize(ctx context.Context) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawPlan, hasPlan, err := s.read(ctx, s.planKey)
	if err != nil {
		return nil, err
	}
	rawStart, hasStart, err := s.read(ctx, s.startKey)
	if err != nil {
		return nil, err
	}

	if !hasPlan {
		if hasStart {
			// torn write from an interrupted subscribe; the plan key is written last
			if err := s.storage.Delete(ctx, s.startKey); err != nil {
				return nil, errors.Join(ErrPersistence, err)
			}
			s.log.DebugContext(ctx, "removed orphaned subscription start time")
		}
		return nil, nil
	}

	now := s.clock.Now()
	plan, perr := ParsePlan(rawPlan)
	startedAt, serr := parseMillis(rawStart)
	if perr != nil || !plan.IsPaid() || !hasStart || serr != nil {
		if err := s.clearLocked(ctx); err != nil {
			return nil, err
		}
		s.log.WarnContext(ctx, "discarded inconsistent subscription record",
			slog.String("plan", rawPlan),
			slog.Bool("has_start_time", hasStart),
		)
		return []Event{{Type: EventRepaired, Plan: plan, At: now}}, nil
	}

	elapsed := now.Sub(startedAt)
	if elapsed >= s.duration {
		if err := s.clearLocked(ctx); err != nil {
			return nil, err
		}
		s.log.InfoContext(ctx, "subscription expired while offline", logger.Plan(plan), logger.StartedAt(startedAt))
		return []Event{{Type: EventExpired, Plan: plan, At: now}}, nil
	}

	// a start time in the future never extends the window past its full length
	remaining := s.duration - max(elapsed, 0)
	s.state = State{Plan: plan, StartedAt: startedAt}
	if err := s.expiry.arm(ctx, remaining); err != nil {
		return nil, errors.Join(ErrFailedToArmTimer, err)
	}
	s.log.InfoContext(ctx, "subscription restored", logger.Plan(plan), logger.Remaining(remaining))
	return []Event{{Type: EventRestored, Plan: plan, At: now}}, nil
}

// expire is the expiry timer callback.
func (s *Store) expire(gen uint64) {
	ctx := s.ctx

	s.mu.Lock()
	if s.closed || !s.expiry.current(gen) {
		s.mu.Unlock()
		return
	}

	plan := s.state.Plan
	err := s.clearLocked(ctx)
	// access is revoked even if storage failed; the next reconciliation finds
	// the window elapsed and clears the record then
	s.state = State{}
	s.expiry.fired(ctx)
	s.mu.Unlock()

	if err != nil {
		s.log.ErrorContext(ctx, "failed to clear expired subscription", logger.Plan(plan), logger.Error(err))
	}
	s.log.InfoContext(ctx, "subscription expired", logger.Plan(plan))
	s.notify(ctx, Event{Type: EventExpired, Plan: plan, At: s.clock.Now()})
}

// Must be called with lock held. The plan key goes first so that a partial
// failure never leaves a plan without its start time.
func (s *Store) clearLocked(ctx context.Context) error {
	if err := kv.DeleteAll(ctx, s.storage, s.planKey, s.startKey); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (s *Store) read(ctx context.Context, key string) (string, bool, error) {
	v, err := s.storage.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, errors.Join(ErrPersistence, err)
	}
	return v, true, nil
}

func (s *Store) notify(ctx context.Context, events ...Event) {
	for _, ev := range events {
		for _, o := range s.observers {
			o(ctx, ev)
		}
	}
}

func parseMillis(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func truncateMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
