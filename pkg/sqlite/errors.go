package sqlite

import "errors"

var (
	ErrEmptyPath    = errors.New("sqlite: empty database path")
	ErrInvalidTable = errors.New("sqlite: invalid table name")
	ErrFailedToOpen = errors.New("sqlite: failed to open database")
	ErrFailedToInit = errors.New("sqlite: failed to create table")
	ErrHealthcheck  = errors.New("sqlite: healthcheck failed")
)
