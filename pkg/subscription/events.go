package subscription

import (
	"context"
	"time"
)

// EventType names a lifecycle change.
type EventType string

const (
	EventSubscribed EventType = "subscribed"
	EventCancelled  EventType = "cancelled"
	EventExpired    EventType = "expired"
	// EventRestored is emitted when a running subscription was found in
	// storage during reconciliation and its timer re-armed.
	EventRestored EventType = "restored"
	// EventRepaired is emitted when an inconsistent persisted record was
	// discarded during reconciliation.
	EventRepaired EventType = "repaired"
)

// Event describes a lifecycle change. Plan is the plan the change applied to.
type Event struct {
	Type EventType
	Plan Plan
	At   time.Time
}

// Observer receives lifecycle events after the change has been persisted.
// Observers run outside the store lock and may call back into the store.
type Observer func(ctx context.Context, ev Event)
