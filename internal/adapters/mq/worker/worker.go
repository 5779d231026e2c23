// Package worker drains the delivery queue and hands each job to a
// Deliverer, retrying transient failures.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/replaytune/internal/domain/model"
	"github.com/okian/replaytune/pkg/logger"
	"github.com/okian/replaytune/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2
	defaultMaxAttempts      = 3
	defaultBackoff          = 500 * time.Millisecond
)

// Job abstracts what workers read off the queue.
type Job = model.DeliveryJob

// Deliverer performs a single delivery attempt.
type Deliverer interface {
	Deliver(ctx context.Context, j Job) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until its input is exhausted.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for webhook deliveries.
type InMemoryWorker struct {
	jobs        <-chan Job
	deliverer   Deliverer
	name        string
	maxAttempts int
	backoff     time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from jobs.
func NewInMemoryWorker(jobs <-chan Job, d Deliverer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		jobs:        jobs,
		deliverer:   d,
		name:        "worker",
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		logger:      logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-w.jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "webhook delivery failed",
					logger.String("delivery_id", j.DeliveryID),
					logger.String("callback_url", j.CallbackURL),
					logger.Int("attempts", j.Attempt),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// process tries one job up to maxAttempts times. j.Attempt is left at the
// number of the last attempt made.
func (w *InMemoryWorker) process(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		j.Attempt = attempt
		if err = w.deliverer.Deliver(ctx, j); err == nil {
			w.logger.Debug(ctx, "webhook delivered",
				logger.String("delivery_id", j.DeliveryID),
				logger.Int("attempt", attempt),
			)
			return nil
		}
		if errors.Is(err, ErrPermanent) || attempt == w.maxAttempts {
			break
		}
		w.logger.Warn(ctx, "webhook delivery attempt failed",
			logger.String("delivery_id", j.DeliveryID),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
		if werr := w.wait(ctx, time.Duration(attempt)*w.backoff); werr != nil {
			err = werr
			break
		}
	}

	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", "delivery_failed")
	return fmt.Errorf("deliver %s after %d attempt(s): %w", j.DeliveryID, j.Attempt, err)
}

func (w *InMemoryWorker) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	count     int
	queue     Queue
	deliverer Deliverer
	opts      []Option
	workers   []*InMemoryWorker
	logger    logger.Logger
}

// NewPool creates a worker pool. A non-positive count defaults to twice the
// CPU count. Options are applied to every worker.
func NewPool(workerCount int, q Queue, d Deliverer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	metrics.UpdateWorkerCount(workerCount)

	return &Pool{
		count:     workerCount,
		queue:     q,
		deliverer: d,
		opts:      opts,
		logger:    logger.Get().Named("worker-pool"),
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.count
}

// Start starts all workers on a single dequeue stream bound to ctx.
func (p *Pool) Start(ctx context.Context) {
	jobs := p.queue.Dequeue(ctx)
	p.workers = make([]*InMemoryWorker, 0, p.count)
	for i := 0; i < p.count; i++ {
		opts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, p.opts...)
		w := NewInMemoryWorker(jobs, p.deliverer, opts...)
		p.workers = append(p.workers, w)
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", p.count))
}

// Shutdown closes the queue and waits for workers to drain what is left.
// Jobs still queued when ctx expires are abandoned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			for _, rest := range p.workers[i:] {
				rest.shutdownOnce.Do(func() { close(rest.shutdown) })
			}
			return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
		}
	}
	p.logger.Info(ctx, "worker pool stopped")
	return nil
}
