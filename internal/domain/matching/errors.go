package matching

import "errors"

// ErrInvalidWeights is returned when a scoring weight is negative.
var ErrInvalidWeights = errors.New("invalid matching weights")
