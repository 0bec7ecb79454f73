package subscription

import "errors"

var (
	ErrUnknownPlan      = errors.New("subscription: unknown plan")
	ErrInvalidPlan      = errors.New("subscription: plan is not a paid tier")
	ErrPersistence      = errors.New("subscription: failed to persist state")
	ErrStoreClosed      = errors.New("subscription: store is closed")
	ErrInvalidKeys      = errors.New("subscription: plan and start-time keys must be distinct and non-empty")
	ErrFailedToArmTimer = errors.New("subscription: failed to arm expiry timer")

	ErrPlanNotFound   = errors.New("subscription: plan not in catalog")
	ErrInvalidCatalog = errors.New("subscription: invalid plan catalog")
)
