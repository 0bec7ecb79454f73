package kv

import "errors"

var (
	ErrNotFound      = errors.New("kv: key not found")
	ErrEmptyKey      = errors.New("kv: empty key")
	ErrQuotaExceeded = errors.New("kv: storage quota exceeded")
)
