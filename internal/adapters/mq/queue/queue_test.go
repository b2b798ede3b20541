package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		ctx := context.Background()

		So(q.Len(ctx), ShouldEqual, 0)
		So(q.Capacity(), ShouldEqual, 2)

		Convey("When jobs are enqueued", func() {
			So(q.Enqueue(ctx, Job{BatchID: "a"}), ShouldBeTrue)
			So(q.Enqueue(ctx, Job{BatchID: "b"}), ShouldBeTrue)

			Convey("Then a third job is rejected without blocking", func() {
				So(q.Enqueue(ctx, Job{BatchID: "c"}), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then jobs come out in submission order", func() {
				ch := q.Dequeue(ctx)
				So((<-ch).BatchID, ShouldEqual, "a")
				So((<-ch).BatchID, ShouldEqual, "b")
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, Job{BatchID: "a"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then new jobs are rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, Job{BatchID: "b"}), ShouldBeFalse)
			})

			Convey("Then queued jobs drain before the channel closes", func() {
				ch := q.Dequeue(ctx)
				j, ok := <-ch
				So(ok, ShouldBeTrue)
				So(j.BatchID, ShouldEqual, "a")
				_, ok = <-ch
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the enqueue context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(q.Enqueue(cctx, Job{BatchID: "a"}), ShouldBeFalse)
		})

		Convey("When the dequeue context is canceled", func() {
			dctx, cancel := context.WithCancel(ctx)
			ch := q.Dequeue(dctx)
			cancel()

			Convey("Then the channel closes", func() {
				select {
				case _, ok := <-ch:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So("dequeue channel still open", ShouldBeEmpty)
				}
			})
		})
	})
}

func TestInMemoryQueueConcurrentEnqueue(t *testing.T) {
	Convey("Given many concurrent producers", t, func() {
		q := NewInMemoryQueue(WithCapacity(10))
		ctx := context.Background()

		var wg sync.WaitGroup
		var mu sync.Mutex
		accepted := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if q.Enqueue(ctx, Job{BatchID: fmt.Sprintf("b%d", i)}) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()

		Convey("Then exactly the capacity is accepted", func() {
			So(accepted, ShouldEqual, 10)
			So(q.Len(ctx), ShouldEqual, 10)
		})
	})
}
