package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Machine is an in-memory finite state machine.
type Machine struct {
	mu      sync.Mutex
	initial State
	current State
	table   map[string]map[string][]transition // [from][event]
}

func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Is reports whether the machine is currently in s.
func (m *Machine) Is(s State) bool {
	if s == nil {
		return false
	}
	return m.Current().Name() == s.Name()
}

// Fire applies event to the current state.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	candidates := m.table[m.current.Name()][event.Name()]
	if len(candidates) == 0 {
		return &NoTransitionError{State: m.current.Name(), Event: event.Name()}
	}

	t, ok := m.pick(ctx, candidates, event, data)
	if !ok {
		return &RejectedError{State: m.current.Name(), Event: event.Name()}
	}

	for _, action := range t.actions {
		if err := action(ctx, m.current, t.to, event, data); err != nil {
			return fmt.Errorf("statemachine: %s -> %s on %s: %w", m.current.Name(), t.to.Name(), event.Name(), err)
		}
	}

	m.current = t.to
	return nil
}

// CanFire reports whether Fire would find a transition whose guards pass.
// Actions are not run.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.pick(ctx, m.table[m.current.Name()][event.Name()], event, data)
	return ok
}

// Reset returns the machine to its initial state without running actions.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

func (m *Machine) add(from, to State, event Event, guards []Guard, actions []Action) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	byEvent, ok := m.table[from.Name()]
	if !ok {
		byEvent = make(map[string][]transition)
		m.table[from.Name()] = byEvent
	}
	byEvent[event.Name()] = append(byEvent[event.Name()], transition{
		to:      to,
		guards:  guards,
		actions: actions,
	})
	return nil
}

// Must be called with lock held.
func (m *Machine) pick(ctx context.Context, candidates []transition, event Event, data any) (transition, bool) {
next:
	for _, t := range candidates {
		for _, guard := range t.guards {
			if !guard(ctx, m.current, event, data) {
				continue next
			}
		}
		return t, true
	}
	return transition{}, false
}
