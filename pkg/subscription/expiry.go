package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/paywall/pkg/clock"
	"github.com/dmitrymomot/paywall/pkg/statemachine"
)

const (
	timerDisarmed = statemachine.StringState("disarmed")
	timerArmed    = statemachine.StringState("armed")

	timerArm    = statemachine.StringEvent("arm")
	timerDisarm = statemachine.StringEvent("disarm")
	timerFire   = statemachine.StringEvent("fire")
)

// expiry owns the single pending expiry callback. It is driven by the Store
// while the store lock is held.
//
// Every arm and disarm bumps gen. A callback only acts if it carries the
// current gen, which covers the window where a runtime timer has already
// started its goroutine and is waiting on the store lock when it gets replaced.
type expiry struct {
	clock    clock.Clock
	sm       *statemachine.Machine
	timer    clock.Timer
	gen      uint64
	deadline time.Time
	onFire   func(gen uint64)
}

func newExpiry(c clock.Clock, onFire func(gen uint64)) *expiry {
	e := &expiry{clock: c, onFire: onFire}
	start := statemachine.WithAction(e.start)
	stop := statemachine.WithAction(e.stop)

	e.sm = statemachine.MustNew(timerDisarmed,
		statemachine.WithTransition(timerDisarmed, timerArmed, timerArm, start),
		statemachine.WithTransition(timerArmed, timerArmed, timerArm, start),
		statemachine.WithTransition(timerArmed, timerDisarmed, timerDisarm, stop),
		statemachine.WithTransition(timerDisarmed, timerDisarmed, timerDisarm),
		statemachine.WithTransition(timerArmed, timerDisarmed, timerFire, stop),
	)
	return e
}

// arm schedules the callback after d, replacing any pending one.
func (e *expiry) arm(ctx context.Context, d time.Duration) error {
	return e.sm.Fire(ctx, timerArm, d)
}

// disarm drops the pending callback, if any.
func (e *expiry) disarm(ctx context.Context) {
	_ = e.sm.Fire(ctx, timerDisarm, nil)
}

// fired records that the callback for the current generation ran.
func (e *expiry) fired(ctx context.Context) {
	_ = e.sm.Fire(ctx, timerFire, nil)
}

// current reports whether gen belongs to the pending callback.
func (e *expiry) current(gen uint64) bool {
	return e.sm.Is(timerArmed) && gen == e.gen
}

func (e *expiry) armed() bool {
	return e.sm.Is(timerArmed)
}

func (e *expiry) remaining() time.Duration {
	if !e.armed() {
		return 0
	}
	return max(e.deadline.Sub(e.clock.Now()), 0)
}

func (e *expiry) start(_ context.Context, _, _ statemachine.State, _ statemachine.Event, data any) error {
	d, ok := data.(time.Duration)
	if !ok {
		return fmt.Errorf("arm requires a time.Duration, got %T", data)
	}

	e.release()
	e.gen++
	gen := e.gen
	e.deadline = e.clock.Now().Add(d)
	e.timer = e.clock.AfterFunc(d, func() { e.onFire(gen) })
	return nil
}

func (e *expiry) stop(context.Context, statemachine.State, statemachine.State, statemachine.Event, any) error {
	e.release()
	e.gen++
	e.deadline = time.Time{}
	return nil
}

func (e *expiry) release() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}
