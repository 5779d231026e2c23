// Package webhook posts recommendation results to caller-supplied URLs
// behind a circuit breaker.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/okian/replaytune/internal/adapters/mq/worker"
	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/pkg/logger"
	"github.com/okian/replaytune/pkg/metrics"
)

// Headers set on every callback request.
const (
	HeaderDeliveryID = "X-Delivery-ID"
	HeaderAttempt    = "X-Delivery-Attempt"
	HeaderRequestID  = "X-Request-ID"
)

const (
	breakerName      = "webhook-callbacks"
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "replaytune-webhook/1"
	maxDrainBytes    = 64 << 10
)

// Client delivers jobs over HTTP. It satisfies worker.Deliverer and is safe
// for concurrent use.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	userAgent string
	breaker   BreakerSettings
	cb        *gobreaker.CircuitBreaker[int]
	logger    logger.Logger
}

var _ worker.Deliverer = (*Client)(nil)

// NewClient builds a Client with a 5s timeout and a breaker that opens after
// five consecutive failures.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		breaker: BreakerSettings{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
		logger: logger.Get().Named("webhook"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}

	threshold := c.breaker.FailureThreshold
	c.cb = gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: c.breaker.MaxRequests,
		Interval:    c.breaker.Interval,
		Timeout:     c.breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A 4xx is the receiver's verdict on our payload, not a sign the
		// receiver is unhealthy.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRejected) || errors.Is(err, ErrInvalidCallback)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(breakerGauge(to))
			c.logger.Warn(context.Background(), "circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	metrics.UpdateBreakerState(metrics.BreakerClosed)

	return c
}

// State reports the breaker state as "closed", "half-open" or "open".
func (c *Client) State() string {
	return c.cb.State().String()
}

// Deliver performs one POST of j.Payload to j.CallbackURL.
func (c *Client) Deliver(ctx context.Context, j model.DeliveryJob) error { //nolint:gocritic // hugeParam: matches worker.Deliverer
	start := time.Now()
	status, err := c.cb.Execute(func() (int, error) {
		return c.post(ctx, &j)
	})
	elapsed := float64(time.Since(start).Milliseconds())

	switch {
	case err == nil:
		metrics.RecordWebhookDelivery("delivered", elapsed)
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordWebhookDelivery("circuit_open", elapsed)
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	case errors.Is(err, ErrRejected), errors.Is(err, ErrInvalidCallback):
		metrics.RecordWebhookDelivery("rejected", elapsed)
		return err
	default:
		metrics.RecordWebhookDelivery("failed", elapsed)
		c.logger.Debug(ctx, "callback attempt failed",
			logger.String("delivery_id", j.DeliveryID),
			logger.Int("status", status),
			logger.Error(err),
		)
		return err
	}
}

func (c *Client) post(ctx context.Context, j *model.DeliveryJob) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.CallbackURL, bytes.NewReader(j.Payload))
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %w", ErrInvalidCallback, worker.ErrPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderDeliveryID, j.DeliveryID)
	req.Header.Set(HeaderAttempt, strconv.Itoa(j.Attempt))
	if j.RequestID != "" {
		req.Header.Set(HeaderRequestID, j.RequestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post callback: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return code, nil
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
		return code, fmt.Errorf("%w: %d", ErrUnexpectedStatus, code)
	default:
		return code, fmt.Errorf("%w: %w: %d", ErrRejected, worker.ErrPermanent, code)
	}
}

func breakerGauge(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	default:
		return metrics.BreakerClosed
	}
}
