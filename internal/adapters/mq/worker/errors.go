package worker

import "errors"

// ErrPermanent marks a delivery failure that retrying cannot fix. Deliverers
// wrap it so the worker stops early.
var ErrPermanent = errors.New("permanent delivery failure")

// ErrShutdownTimeout is returned when workers do not drain before the
// shutdown deadline.
var ErrShutdownTimeout = errors.New("worker shutdown timed out")
