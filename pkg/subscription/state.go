package subscription

import "time"

// State is the subscription record. StartedAt is zero exactly when Plan is PlanNone.
type State struct {
	Plan      Plan
	StartedAt time.Time
}

// IsActive reports whether a paid plan is in effect.
func (s State) IsActive() bool {
	return s.Plan != PlanNone
}

// ExpiresAt returns when the subscription lapses for the given window.
func (s State) ExpiresAt(window time.Duration) (time.Time, bool) {
	if !s.IsActive() {
		return time.Time{}, false
	}
	return s.StartedAt.Add(window), true
}
