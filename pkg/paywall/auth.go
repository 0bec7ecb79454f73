package paywall

import "context"

// Authenticator reports the signed-in user for a request.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
	CurrentUserID(ctx context.Context) (string, bool)
}

// StaticIdentity is an Authenticator with a fixed user. The zero value is anonymous.
type StaticIdentity struct {
	UserID string
}

func (s StaticIdentity) IsAuthenticated(context.Context) bool {
	return s.UserID != ""
}

func (s StaticIdentity) CurrentUserID(context.Context) (string, bool) {
	return s.UserID, s.UserID != ""
}
