package ranking_test

import (
	"testing"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRank(t *testing.T) {
	Convey("Given scored submissions", t, func() {
		subs := []model.Submission{
			{UserID: "u1", TotalScore: 30, MaxScore: 40, SubmittedAtEpoch: 300},
			{UserID: "u2", TotalScore: 50, MaxScore: 40, SubmittedAtEpoch: 200},
			{UserID: "u3", TotalScore: 50, MaxScore: 40, SubmittedAtEpoch: 100},
			{UserID: "u4", TotalScore: 10, MaxScore: 40, SubmittedAtEpoch: 50},
		}

		Convey("When the leaderboard is computed", func() {
			entries := ranking.Rank(subs)

			Convey("Then ranks run strictly from one with score ties broken by time", func() {
				So(entries, ShouldHaveLength, 4)
				So(entries[0].UserID, ShouldEqual, "u3")
				So(entries[1].UserID, ShouldEqual, "u2")
				So(entries[2].UserID, ShouldEqual, "u1")
				So(entries[3].UserID, ShouldEqual, "u4")
				for i, e := range entries {
					So(e.Rank, ShouldEqual, i+1)
					So(e.TotalParticipants, ShouldEqual, 4)
				}
			})

			Convey("Then percentage and percentile follow the formulas", func() {
				So(entries[0].Percentage, ShouldEqual, 125)
				So(entries[2].Percentage, ShouldEqual, 75)
				So(entries[0].Percentile, ShouldEqual, 100)
				So(entries[1].Percentile, ShouldEqual, 75)
				So(entries[3].Percentile, ShouldEqual, 25)
			})

			Convey("Then the input order is untouched", func() {
				So(subs[0].UserID, ShouldEqual, "u1")
				So(subs[3].UserID, ShouldEqual, "u4")
			})
		})

		Convey("When a single user's rank is computed directly", func() {
			Convey("Then it agrees with the bulk computation for every user", func() {
				entries := ranking.Rank(subs)
				for _, want := range entries {
					got, ok := ranking.UserRank(subs, want.UserID)
					So(ok, ShouldBeTrue)
					So(got, ShouldResemble, want)
				}
			})

			Convey("Then an unknown user is reported missing", func() {
				_, ok := ranking.UserRank(subs, "ghost")
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given two users tied on score", t, func() {
		subs := []model.Submission{
			{UserID: "late", TotalScore: 50, MaxScore: 100, SubmittedAtEpoch: 2},
			{UserID: "early", TotalScore: 50, MaxScore: 100, SubmittedAtEpoch: 1},
		}

		Convey("Then the earlier submission ranks first and ranks are never shared", func() {
			entries := ranking.Rank(subs)
			So(entries[0].UserID, ShouldEqual, "early")
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].UserID, ShouldEqual, "late")
			So(entries[1].Rank, ShouldEqual, 2)
		})
	})

	Convey("Given a submission with zero maximum score", t, func() {
		entries := ranking.Rank([]model.Submission{{UserID: "u1"}})

		Convey("Then the percentage defaults to zero", func() {
			So(entries[0].Percentage, ShouldEqual, 0)
			So(entries[0].Percentile, ShouldEqual, 100)
		})
	})

	Convey("Given no submissions", t, func() {
		So(ranking.Rank(nil), ShouldBeEmpty)
	})
}
