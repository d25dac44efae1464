package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a telemetry queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("When updates are enqueued and dequeued", func() {
			ok := q.Enqueue(ctx, queue.Update{MatchID: "m1", Snapshot: model.MatchSnapshot{OversDecimal: 5.5}})
			So(ok, ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 1)

			out := q.Dequeue(ctx)
			select {
			case u := <-out:
				So(u.MatchID, ShouldEqual, "m1")
				So(u.Snapshot.OversDecimal, ShouldEqual, 5.5)
			case <-time.After(time.Second):
				So("timeout", ShouldBeEmpty)
			}
		})

		Convey("When the buffer is full", func() {
			So(q.Enqueue(ctx, queue.Update{MatchID: "m1"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Update{MatchID: "m2"}), ShouldBeTrue)

			Convey("Then the overflow update is dropped", func() {
				So(q.Enqueue(ctx, queue.Update{MatchID: "m3"}), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the queue closes with buffered updates", func() {
			So(q.Enqueue(ctx, queue.Update{MatchID: "m1"}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueues are refused but the buffer drains", func() {
				So(q.Enqueue(ctx, queue.Update{MatchID: "m2"}), ShouldBeFalse)

				out := q.Dequeue(ctx)
				u, open := <-out
				So(open, ShouldBeTrue)
				So(u.MatchID, ShouldEqual, "m1")

				_, open = <-out
				So(open, ShouldBeFalse)
			})

			Convey("Then closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
