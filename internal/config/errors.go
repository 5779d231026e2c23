package config

import (
	"errors"
)

// Sentinel error kinds for this package. Load wraps one of them so callers
// can tell a bad value apart from an unreadable source.
var (
	// ErrInvalidConfig marks a value that failed validation.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a source that could not be read or decoded.
	ErrLoadConfig = errors.New("load config failed")
)
