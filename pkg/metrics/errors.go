package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	// ErrNotInitialized is reported by Handler when no registry is available.
	ErrNotInitialized = errors.New("metrics registry not initialized")
)
