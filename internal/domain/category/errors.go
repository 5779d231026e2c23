package category

import "errors"

// Sentinel error kinds for threshold configuration.
var (
	ErrInvalidThresholds = errors.New("invalid thresholds")
)
