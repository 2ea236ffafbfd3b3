package contract

import "errors"

var (
	ErrConfiguration = errors.New("invalid discussion configuration")
	ErrCancelled     = errors.New("discussion cancelled")
	ErrAlreadyRun    = errors.New("discussion already run")
)
