package jobscope

import "errors"

var (
	// ErrNotFound is returned when an application id has no registered
	// event source.
	ErrNotFound = errors.New("application not found")

	// ErrInvalidGranularity is returned for unknown granularity tokens.
	ErrInvalidGranularity = errors.New("invalid granularity")
)
