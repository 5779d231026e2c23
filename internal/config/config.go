// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New() builds a Config with defaults; Load layers file and env on top.
//   - Domain tuning is converted to the immutable domain types via
//     CategoryThresholds and MatchingWeights.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/replaytune/internal/domain/category"
	"github.com/okian/replaytune/internal/domain/matching"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points at the JSON song catalog.
	CatalogPath string `koanf:"catalog_path"`

	// DefaultTopN is used when a request omits top_n; MaxTopN caps it.
	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`

	// MaxBodyBytes bounds request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// RateLimitPerMinute is the per-IP request budget. 0 disables limiting.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// AllowedOrigins feeds CORS. Env form is comma separated.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// QueueSize bounds the webhook delivery queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of webhook delivery workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the webhook request id cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	Webhook    Webhook    `koanf:"webhook"`
	Thresholds Thresholds `koanf:"thresholds"`
	Weights    Weights    `koanf:"weights"`
}

// Webhook tunes callback delivery.
type Webhook struct {
	Timeout     time.Duration `koanf:"timeout"`
	MaxAttempts int           `koanf:"max_attempts"`
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration `koanf:"backoff"`

	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// Band is a high/low cut point pair.
type Band struct {
	High float64 `koanf:"high"`
	Low  float64 `koanf:"low"`
}

// Thresholds mirrors category.Thresholds.
type Thresholds struct {
	Intensity      Band `koanf:"intensity"`
	Performance    Band `koanf:"performance"`
	Teamwork       Band `koanf:"teamwork"`
	CloseMargin    int  `koanf:"close_margin"`
	ModerateMargin int  `koanf:"moderate_margin"`
}

// Weights mirrors matching.Weights.
type Weights struct {
	BPMInRange   float64 `koanf:"bpm_in_range"`
	BPMNearRange float64 `koanf:"bpm_near_range"`
	BPMTolerance float64 `koanf:"bpm_tolerance"`
	Energy       float64 `koanf:"energy"`
	Mood         float64 `koanf:"mood"`
	Theme        float64 `koanf:"theme"`
}

// New creates a Config populated with defaults.
func New() *Config {
	th := category.DefaultThresholds()
	w := matching.DefaultWeights()
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		CatalogPath:        "data/songs.json",
		DefaultTopN:        3,
		MaxTopN:            50,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 600,
		AllowedOrigins:     []string{"*"},
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         100_000,
		ShutdownTimeout:    10 * time.Second,
		Webhook: Webhook{
			Timeout:                 5 * time.Second,
			MaxAttempts:             3,
			Backoff:                 500 * time.Millisecond,
			BreakerMaxRequests:      1,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Thresholds: Thresholds{
			Intensity:      Band{High: th.Intensity.High, Low: th.Intensity.Low},
			Performance:    Band{High: th.Performance.High, Low: th.Performance.Low},
			Teamwork:       Band{High: th.Teamwork.High, Low: th.Teamwork.Low},
			CloseMargin:    th.CloseMargin,
			ModerateMargin: th.ModerateMargin,
		},
		Weights: Weights{
			BPMInRange:   w.BPMInRange,
			BPMNearRange: w.BPMNearRange,
			BPMTolerance: w.BPMTolerance,
			Energy:       w.Energy,
			Mood:         w.Mood,
			Theme:        w.Theme,
		},
	}
}

// CategoryThresholds converts the tuning to the categorizer's type.
func (c *Config) CategoryThresholds() category.Thresholds {
	return category.Thresholds{
		Intensity:      category.Band{High: c.Thresholds.Intensity.High, Low: c.Thresholds.Intensity.Low},
		Performance:    category.Band{High: c.Thresholds.Performance.High, Low: c.Thresholds.Performance.Low},
		Teamwork:       category.Band{High: c.Thresholds.Teamwork.High, Low: c.Thresholds.Teamwork.Low},
		CloseMargin:    c.Thresholds.CloseMargin,
		ModerateMargin: c.Thresholds.ModerateMargin,
	}
}

// MatchingWeights converts the tuning to the matcher's type.
func (c *Config) MatchingWeights() matching.Weights {
	return matching.Weights{
		BPMInRange:   c.Weights.BPMInRange,
		BPMNearRange: c.Weights.BPMNearRange,
		BPMTolerance: c.Weights.BPMTolerance,
		Energy:       c.Weights.Energy,
		Mood:         c.Weights.Mood,
		Theme:        c.Weights.Theme,
	}
}

// Validate checks cross-field constraints. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CatalogPath == "":
		return fmt.Errorf("%w: catalog_path must not be empty", ErrInvalidConfig)
	case c.MaxTopN <= 0:
		return fmt.Errorf("%w: max_top_n must be positive", ErrInvalidConfig)
	case c.DefaultTopN > c.MaxTopN:
		return fmt.Errorf("%w: default_top_n (%d) exceeds max_top_n (%d)", ErrInvalidConfig, c.DefaultTopN, c.MaxTopN)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0 || c.WorkerCount <= 0 || c.DedupeSize <= 0:
		return fmt.Errorf("%w: queue_size, worker_count and dedupe_size must be positive", ErrInvalidConfig)
	case c.Webhook.MaxAttempts <= 0:
		return fmt.Errorf("%w: webhook.max_attempts must be positive", ErrInvalidConfig)
	}
	if err := c.CategoryThresholds().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.MatchingWeights().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
