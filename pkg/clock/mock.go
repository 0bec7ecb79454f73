package clock

import (
	"slices"
	"sync"
	"time"
)

// Mock is a virtual Clock. Time only moves when Add or Set is called.
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
	seq    uint64
}

type mockTimer struct {
	mock     *Mock
	deadline time.Time
	seq      uint64
	fn       func()
}

// NewMock returns a virtual clock positioned at start.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules f to run once the virtual time reaches now+d.
// A non-positive d fires on the next Add or Set, including Add(0).
func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &mockTimer{
		mock:     m,
		deadline: m.now.Add(d),
		seq:      m.seq,
		fn:       f,
	}
	m.timers = append(m.timers, t)
	return t
}

// Add moves the clock forward by d and runs every callback that became due.
func (m *Mock) Add(d time.Duration) {
	m.Set(m.Now().Add(d))
}

// Set moves the clock to t and runs every callback that became due.
// Callbacks scheduled by a firing callback run too if they fall due before t.
// Setting a time in the past only rewinds Now.
func (m *Mock) Set(t time.Time) {
	for {
		m.mu.Lock()
		next := m.nextDueLocked(t)
		if next == nil {
			m.now = t
			m.mu.Unlock()
			return
		}
		m.timers = slices.DeleteFunc(m.timers, func(x *mockTimer) bool { return x == next })
		if next.deadline.After(m.now) {
			m.now = next.deadline
		}
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of scheduled callbacks that have not fired or been stopped.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Mock) nextDueLocked(until time.Time) *mockTimer {
	var next *mockTimer
	for _, t := range m.timers {
		if t.deadline.After(until) {
			continue
		}
		if next == nil || t.deadline.Before(next.deadline) ||
			(t.deadline.Equal(next.deadline) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()

	n := len(t.mock.timers)
	t.mock.timers = slices.DeleteFunc(t.mock.timers, func(x *mockTimer) bool { return x == t })
	return len(t.mock.timers) < n
}
