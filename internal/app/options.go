package service

import (
	"time"

	"github.com/okian/replaytune/internal/adapters/mq/worker"
	"github.com/okian/replaytune/internal/adapters/repository"
	"github.com/okian/replaytune/internal/domain/matching"
	"github.com/okian/replaytune/internal/domain/profile"
	"github.com/okian/replaytune/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of delivery workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the delivery queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the request id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the song catalog.
func WithCatalog(c repository.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithProfileBuilder replaces the default profile pipeline.
func WithProfileBuilder(b *profile.Builder) Option {
	return func(s *Service) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithMatcher replaces the default song matcher.
func WithMatcher(m *matching.Matcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithDeliverer sets the webhook deliverer used by the worker pool.
func WithDeliverer(d worker.Deliverer) Option {
	return func(s *Service) {
		if d != nil {
			s.deliverer = d
		}
	}
}

// WithTopN sets the default and maximum number of recommendations.
func WithTopN(def, maxN int) Option {
	return func(s *Service) {
		if maxN > 0 {
			s.maxTopN = maxN
		}
		if def >= 0 && def <= s.maxTopN {
			s.defaultTopN = def
		}
	}
}

// WithRetry sets delivery attempts per job and the linear backoff base.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}
