package service

import (
	"errors"

	"github.com/okian/replaytune/internal/adapters/mq/queue"
	"github.com/okian/replaytune/internal/adapters/repository"
	"github.com/okian/replaytune/internal/domain/extract"
)

// Sentinel kinds returned by Service operations, in addition to the
// extract and repository kinds they pass through.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotStarted     = errors.New("service not started")
	ErrBackpressure   = errors.New("delivery queue full")
)

// Machine-readable error codes returned to clients.
const (
	CodePlayerNotFound     = "player_not_found"
	CodeMissingDuration    = "missing_duration"
	CodeCatalogUnavailable = "catalog_unavailable"
	CodeBadRequest         = "bad_request"
	CodeBackpressure       = "backpressure"
	CodeUnavailable        = "service_unavailable"
	CodeInternal           = "internal_error"
)

// ErrorCode maps an error from this package to its client code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, extract.ErrPlayerNotFound), errors.Is(err, extract.ErrOpponentNotFound):
		return CodePlayerNotFound
	case errors.Is(err, extract.ErrMissingDuration):
		return CodeMissingDuration
	case errors.Is(err, repository.ErrCatalogUnavailable), errors.Is(err, repository.ErrCatalogEmpty):
		return CodeCatalogUnavailable
	case errors.Is(err, ErrInvalidRequest):
		return CodeBadRequest
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrQueueFull):
		return CodeBackpressure
	case errors.Is(err, ErrNotStarted), errors.Is(err, queue.ErrQueueClosed):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
