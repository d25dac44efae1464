package telemetry_test

import (
	"testing"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/telemetry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given a raw feed payload", t, func() {
		raw := telemetry.RawSnapshot{
			MatchID:        "m1",
			MatchStatus:    "in_progress",
			TossCompleted:  true,
			CurrentInnings: "b_1",
			Overs:          "5.3",
			MatchFormat:    "T20",
			Data:           map[string]any{"winner": "home"},
		}

		Convey("When normalized", func() {
			snap, anomalies := telemetry.Normalize(raw)

			Convey("Then every field lands in canonical form", func() {
				So(anomalies, ShouldBeEmpty)
				So(snap.MatchID, ShouldEqual, "m1")
				So(snap.MatchStatus, ShouldEqual, model.MatchStarted)
				So(snap.CurrentInnings, ShouldEqual, model.Innings1)
				So(snap.OversDecimal, ShouldAlmostEqual, 5.5, 1e-9)
				So(snap.MatchFormat, ShouldEqual, model.FormatT20)
				So(snap.Raw["winner"], ShouldEqual, "home")
			})
		})

		Convey("When several fields are malformed", func() {
			raw.MatchStatus = "rain_delay"
			raw.Overs = "5.8"
			raw.MatchFormat = "hundred"
			snap, anomalies := telemetry.Normalize(raw)

			Convey("Then defaults apply and every anomaly is reported", func() {
				So(snap.MatchStatus, ShouldEqual, model.MatchNotStarted)
				So(snap.MatchFormat, ShouldEqual, model.FormatOther)
				So(anomalies, ShouldHaveLength, 3)
			})
		})
	})
}

func TestValidator(t *testing.T) {
	Convey("Given the snapshot contract", t, func() {
		v, err := telemetry.NewValidator()
		So(err, ShouldBeNil)

		Convey("Then a well-formed payload passes", func() {
			payload := []byte(`{
				"match_id": "m1",
				"match_status": "started",
				"toss_completed": true,
				"current_innings": "b_1",
				"overs": "5.3",
				"match_format": "t20",
				"data": {"winner": "home"}
			}`)
			So(v.Validate(payload), ShouldBeNil)
		})

		Convey("Then a payload without a match id is rejected", func() {
			So(v.Validate([]byte(`{"match_status": "started"}`)), ShouldNotBeNil)
		})

		Convey("Then mistyped fields are rejected", func() {
			So(v.Validate([]byte(`{"match_id": "m1", "match_status": "started", "overs": 5.3}`)), ShouldNotBeNil)
		})

		Convey("Then unknown fields are rejected", func() {
			So(v.Validate([]byte(`{"match_id": "m1", "match_status": "started", "surprise": 1}`)), ShouldNotBeNil)
		})

		Convey("Then invalid JSON is rejected", func() {
			So(v.Validate([]byte(`{`)), ShouldNotBeNil)
		})
	})
}
