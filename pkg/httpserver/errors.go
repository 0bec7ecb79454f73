package httpserver

import "errors"

var (
	ErrStart       = errors.New("failed to start HTTP server")
	ErrShutdown    = errors.New("failed to shutdown HTTP server gracefully")
	ErrEmptyAddr   = errors.New("empty listen address")
	ErrAlreadyUsed = errors.New("server already started")
)
