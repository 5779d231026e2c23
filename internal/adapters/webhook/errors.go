package webhook

import "errors"

// Sentinel kinds returned by Deliver.
var (
	// ErrUnexpectedStatus is a non-2xx answer worth retrying (5xx, 408, 429).
	ErrUnexpectedStatus = errors.New("unexpected callback status")
	// ErrRejected is a 4xx answer; it also matches worker.ErrPermanent.
	ErrRejected = errors.New("callback rejected delivery")
	// ErrCircuitOpen means the breaker refused the call.
	ErrCircuitOpen = errors.New("webhook circuit open")
	// ErrInvalidCallback means no request could be built for the URL.
	ErrInvalidCallback = errors.New("invalid callback url")
)
