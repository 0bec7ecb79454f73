package paywall

import "errors"

var (
	ErrLoginRequired = errors.New("paywall: sign in to subscribe")
	ErrEmptyUserID   = errors.New("paywall: empty user id")
)
