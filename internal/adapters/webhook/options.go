package webhook

import (
	"net/http"
	"time"

	"github.com/okian/replaytune/pkg/logger"
)

// BreakerSettings tunes the circuit breaker around callback calls.
type BreakerSettings struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts reset.
	Interval time.Duration
	// Timeout spent open before probing again.
	Timeout time.Duration
	// FailureThreshold is the consecutive failure count that opens the breaker.
	FailureThreshold uint32
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBreaker overrides the circuit breaker settings. Zero fields keep
// their defaults.
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) {
		if s.MaxRequests > 0 {
			c.breaker.MaxRequests = s.MaxRequests
		}
		if s.Interval > 0 {
			c.breaker.Interval = s.Interval
		}
		if s.Timeout > 0 {
			c.breaker.Timeout = s.Timeout
		}
		if s.FailureThreshold > 0 {
			c.breaker.FailureThreshold = s.FailureThreshold
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each callback.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}
