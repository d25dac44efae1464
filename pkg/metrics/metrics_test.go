package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When created with defaults", func() {
			m := NewManager(WithRegistry(prometheus.NewRegistry()))

			Convey("Then it exposes a registry", func() {
				So(m, ShouldNotBeNil)
				So(m.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When created with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("contest"),
				WithHistogramBuckets([]float64{0.1, 1, 10}),
				WithRegistry(prometheus.NewRegistry()),
			)

			Convey("Then creation succeeds", func() {
				So(m, ShouldNotBeNil)
			})
		})
	})
}

func TestPackageHelpers(t *testing.T) {
	Convey("Given the default manager", t, func() {
		Convey("When recording every metric kind", func() {
			So(func() {
				RecordTransition("upcoming", "live")
				RecordTransitionConflict()
				RecordTelemetryUpdate()
				RecordTelemetryAnomaly("overs_balls")
				RecordSettlementRun("completed")
				RecordSettlementDuration(0.25)
				RecordAnswerKeyResolved()
				RecordAnswerKeyFailure()
				RecordSubmissionScored()
				RecordScoringFailure()
				RecordLeaderboardQuery()
				UpdateQueueSize(10)
				UpdateQueueCapacity(1000)
				RecordQueueDrop()
				UpdateWorkerCount(4)
				RecordWorkerApplyDuration(0.002)
				RecordHTTPRequest("leaderboard", "GET", "200")
				RecordHTTPRequestDuration("leaderboard", "GET", 0.01)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(42)
			}, ShouldNotPanic)
		})

		Convey("When gathering the registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then metric families are present", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
