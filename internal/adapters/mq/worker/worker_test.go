package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/replaytune/internal/adapters/mq/queue"
	worker "github.com/okian/replaytune/internal/adapters/mq/worker"
	model "github.com/okian/replaytune/internal/domain/model"
	logging "github.com/okian/replaytune/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// mockDeliverer fails the first failures[id] attempts of each job and records
// every attempt.
type mockDeliverer struct {
	mu        sync.Mutex
	failures  map[string]int
	permanent map[string]bool
	attempts  map[string][]int
	delivered chan string
}

func newMockDeliverer() *mockDeliverer {
	return &mockDeliverer{
		failures:  make(map[string]int),
		permanent: make(map[string]bool),
		attempts:  make(map[string][]int),
		delivered: make(chan string, 100),
	}
}

func (m *mockDeliverer) Deliver(_ context.Context, j model.DeliveryJob) error { //nolint:gocritic // matches the interface
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts[j.DeliveryID] = append(m.attempts[j.DeliveryID], j.Attempt)
	if m.permanent[j.DeliveryID] {
		return fmt.Errorf("callback rejected: %w", worker.ErrPermanent)
	}
	if m.failures[j.DeliveryID] >= j.Attempt {
		return errors.New("connection refused")
	}
	m.delivered <- j.DeliveryID
	return nil
}

func (m *mockDeliverer) attemptsFor(id string) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.attempts[id]...)
}

func job(id string) model.DeliveryJob {
	return model.DeliveryJob{DeliveryID: id, CallbackURL: "http://example.invalid/" + id, Payload: []byte(`{}`)}
}

func waitDelivered(d *mockDeliverer, n int) []string {
	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case id := <-d.delivered:
			got = append(got, id)
		case <-timeout:
			return got
		}
	}
	return got
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading from a job channel", t, func() {
		_ = logging.Init()

		jobs := make(chan model.DeliveryJob, 10)
		d := newMockDeliverer()
		w := worker.NewInMemoryWorker(jobs, d,
			worker.WithName("test-worker"),
			worker.WithMaxAttempts(3),
			worker.WithBackoff(time.Millisecond),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job succeeds first time", func() {
			jobs <- job("ok")
			got := waitDelivered(d, 1)

			convey.Convey("Then it is delivered once", func() {
				convey.So(got, convey.ShouldResemble, []string{"ok"})
				convey.So(d.attemptsFor("ok"), convey.ShouldResemble, []int{1})
			})
		})

		convey.Convey("When a job fails transiently", func() {
			d.failures["flaky"] = 2
			jobs <- job("flaky")
			got := waitDelivered(d, 1)

			convey.Convey("Then it is retried until it succeeds", func() {
				convey.So(got, convey.ShouldResemble, []string{"flaky"})
				convey.So(d.attemptsFor("flaky"), convey.ShouldResemble, []int{1, 2, 3})
			})
		})

		convey.Convey("When a job keeps failing", func() {
			d.failures["down"] = 10
			jobs <- job("down")
			jobs <- job("after")
			got := waitDelivered(d, 1)

			convey.Convey("Then it stops at the attempt limit and moves on", func() {
				convey.So(got, convey.ShouldResemble, []string{"after"})
				convey.So(d.attemptsFor("down"), convey.ShouldResemble, []int{1, 2, 3})
			})
		})

		convey.Convey("When a job fails permanently", func() {
			d.permanent["gone"] = true
			jobs <- job("gone")
			jobs <- job("next")
			waitDelivered(d, 1)

			convey.Convey("Then it is not retried", func() {
				convey.So(d.attemptsFor("gone"), convey.ShouldResemble, []int{1})
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
			defer stop()
			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it stops and a second call is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		_ = logging.Init()

		jobs := make(chan model.DeliveryJob)
		w := worker.NewInMemoryWorker(jobs, newMockDeliverer())
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		cancel()

		convey.Convey("Then Run returns", func() {
			select {
			case <-w.Done():
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("worker did not stop", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool over an in-memory queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(50))
		d := newMockDeliverer()

		convey.Convey("When created with a non-positive count", func() {
			p := worker.NewPool(0, q, d)

			convey.Convey("Then it falls back to a CPU-derived size", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When started and fed jobs", func() {
			p := worker.NewPool(4, q, d, worker.WithBackoff(time.Millisecond))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			p.Start(ctx)

			for i := 0; i < 20; i++ {
				convey.So(q.Enqueue(ctx, job(fmt.Sprintf("j%d", i))), convey.ShouldBeNil)
			}
			got := waitDelivered(d, 20)

			convey.Convey("Then every job is delivered exactly once", func() {
				convey.So(p.Size(), convey.ShouldEqual, 4)
				convey.So(len(got), convey.ShouldEqual, 20)
				seen := map[string]bool{}
				for _, id := range got {
					seen[id] = true
				}
				convey.So(len(seen), convey.ShouldEqual, 20)
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
				defer stop()
				err := p.Shutdown(shutdownCtx)

				convey.Convey("Then the queue is closed and workers exit", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(q.IsClosed(), convey.ShouldBeTrue)
					convey.So(q.Enqueue(ctx, job("late")), convey.ShouldEqual, queue.ErrQueueClosed)
				})
			})
		})

		convey.Convey("When shut down with jobs still queued", func() {
			p := worker.NewPool(1, q, d)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			convey.So(q.Enqueue(ctx, job("a")), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, job("b")), convey.ShouldBeNil)
			p.Start(ctx)

			shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
			defer stop()
			err := p.Shutdown(shutdownCtx)

			convey.Convey("Then the remaining jobs are drained first", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(waitDelivered(d, 2)), convey.ShouldEqual, 2)
			})
		})
	})
}
