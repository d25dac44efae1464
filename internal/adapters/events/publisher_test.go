package events_test

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/crease/internal/adapters/events"
	"github.com/okian/crease/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryPublisher(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory publisher", t, func() {
		p := events.NewMemoryPublisher()

		Convey("When changes are published concurrently", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 16)
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- p.Publish(ctx, model.StatusChange{
						ContestID: "c1",
						OldStatus: model.StatusLive,
						NewStatus: model.StatusJoiningClosed,
						Reason:    "Toss completed - joining closed",
					})
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}

			Convey("Then every change is recorded", func() {
				So(p.Changes(), ShouldHaveLength, 16)
				So(p.Changes()[0].Reason, ShouldContainSubstring, "Toss completed")
			})
		})

		Convey("When the change list is read", func() {
			So(p.Publish(ctx, model.StatusChange{ContestID: "c1"}), ShouldBeNil)
			got := p.Changes()
			got[0].ContestID = "tampered"

			Convey("Then the caller's copy does not alias the store", func() {
				So(p.Changes()[0].ContestID, ShouldEqual, "c1")
			})
		})
	})
}
