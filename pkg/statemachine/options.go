package statemachine

import (
	"errors"
	"fmt"
)

// Option configures a Machine during construction.
type Option func(*Machine) error

// TransitionOption attaches guards and actions to a single transition.
type TransitionOption func(*transitionConfig)

type transitionConfig struct {
	guards  []Guard
	actions []Action
}

// New creates a machine in the initial state.
func New(initial State, opts ...Option) (*Machine, error) {
	if initial == nil {
		return nil, ErrNilInitialState
	}

	m := &Machine{
		initial: initial,
		current: initial,
		table:   make(map[string]map[string][]transition),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on error. Use it for machines declared at
// construction time where a bad definition is a programming error.
func MustNew(initial State, opts ...Option) *Machine {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return m
}

// WithTransition declares a transition from -> to on event.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(m *Machine) error {
		cfg := &transitionConfig{}
		for _, opt := range opts {
			opt(cfg)
		}
		if err := m.add(from, to, event, cfg.guards, cfg.actions); err != nil {
			return errors.Join(err, fmt.Errorf("transition %s -> %s on %s", nameOf(from), nameOf(to), nameOf(event)))
		}
		return nil
	}
}

// WithGuard adds a guard. Nil guards are ignored.
func WithGuard(g Guard) TransitionOption {
	return func(cfg *transitionConfig) {
		if g != nil {
			cfg.guards = append(cfg.guards, g)
		}
	}
}

// WithAction adds an action. Nil actions are ignored.
func WithAction(a Action) TransitionOption {
	return func(cfg *transitionConfig) {
		if a != nil {
			cfg.actions = append(cfg.actions, a)
		}
	}
}

func nameOf(v interface{ Name() string }) string {
	if v == nil {
		return "<nil>"
	}
	return v.Name()
}
