package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vibingbhudha77/vibex/internal/adapters/mq/queue"
	"github.com/vibingbhudha77/vibex/internal/domain/model"
	"github.com/vibingbhudha77/vibex/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingDispatcher struct {
	mu    sync.Mutex
	seen  []Notification
	fail  bool
	ready chan struct{}
}

func newRecordingDispatcher(expect int) *recordingDispatcher {
	return &recordingDispatcher{ready: make(chan struct{}, expect)}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.mu.Lock()
	d.seen = append(d.seen, n)
	d.mu.Unlock()
	d.ready <- struct{}{}
	if d.fail {
		return errors.New("downstream unavailable")
	}
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

func waitFor(ch chan struct{}, n int) bool {
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			return false
		}
	}
	return true
}

func TestWorker(t *testing.T) {
	Convey("Given a worker draining a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		d := newRecordingDispatcher(4)
		w := NewWorker(q, d)

		go w.Run(ctx)

		Convey("When notifications are enqueued", func() {
			for i := 0; i < 3; i++ {
				ok := q.Enqueue(ctx, Notification{
					ID:      "n-" + string(rune('a'+i)),
					Type:    model.NotifySessionJoin,
					ActorID: "student-1",
				})
				So(ok, ShouldBeTrue)
			}

			Convey("Then each one is dispatched", func() {
				So(waitFor(d.ready, 3), ShouldBeTrue)
				So(d.count(), ShouldEqual, 3)
			})
		})

		Convey("When the dispatcher fails", func() {
			d.fail = true
			ok := q.Enqueue(ctx, Notification{ID: "n-fail", Type: model.NotifyVouchReceived})
			So(ok, ShouldBeTrue)

			Convey("Then the worker keeps running and processes later work", func() {
				So(waitFor(d.ready, 1), ShouldBeTrue)

				d.fail = false
				ok := q.Enqueue(ctx, Notification{ID: "n-after", Type: model.NotifySessionLeave})
				So(ok, ShouldBeTrue)
				So(waitFor(d.ready, 1), ShouldBeTrue)
				So(d.count(), ShouldEqual, 2)
			})
		})

		Convey("When the worker is shut down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			Convey("Then it stops cleanly", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		d := newRecordingDispatcher(32)
		p := NewPool(4, q, d)
		p.Start(ctx)

		Convey("When many notifications are enqueued", func() {
			for i := 0; i < 20; i++ {
				So(q.Enqueue(ctx, Notification{ID: "bulk", Type: model.NotifySessionJoin}), ShouldBeTrue)
			}

			Convey("Then all of them are dispatched across the pool", func() {
				So(waitFor(d.ready, 20), ShouldBeTrue)
				So(d.count(), ShouldEqual, 20)
			})
		})

		Convey("When the pool shuts down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()

			err := p.Shutdown(shutdownCtx)

			Convey("Then it closes the queue and drains", func() {
				So(err, ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
			})
		})

		Convey("A pool with a non-positive size defaults its worker count", func() {
			p2 := NewPool(0, q, d)
			So(len(p2.workers), ShouldBeGreaterThan, 0)
		})
	})
}
