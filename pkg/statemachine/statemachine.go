package statemachine

import "context"

// State is a named machine state.
type State interface {
	Name() string
}

// Event is a named trigger for a transition.
type Event interface {
	Name() string
}

// Action runs during a transition. Returning an error cancels the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard decides whether a transition may be taken.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// StringState is a State identified by its string value.
type StringState string

func (s StringState) Name() string { return string(s) }

// StringEvent is an Event identified by its string value.
type StringEvent string

func (e StringEvent) Name() string { return string(e) }

type transition struct {
	to      State
	guards  []Guard
	actions []Action
}
