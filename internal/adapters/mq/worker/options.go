package worker

import (
	"time"

	"github.com/okian/replaytune/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithMaxAttempts bounds how many times one job is tried.
func WithMaxAttempts(n int) Option {
	return func(w *InMemoryWorker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay; attempt n waits n times this value
// before the next try.
func WithBackoff(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d >= 0 {
			w.backoff = d
		}
	}
}
