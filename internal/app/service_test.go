package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/crease/internal/adapters/events"
	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/adapters/repository"
	service "github.com/okian/crease/internal/app"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func waitForStatus(ctx context.Context, store repository.ContestStore, id string, want model.Status) bool {
	for i := 0; i < 150; i++ {
		c, err := store.Contest(ctx, id)
		if err == nil && c.Status == want {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func seedContest(store *repository.MemoryStore) {
	store.PutContest(model.Contest{
		ID: "c1", MatchID: "m1", RawCategory: "prematch", Status: model.StatusUpcoming,
	})
	store.PutQuestion(model.Question{ID: "q1", ContestID: "c1", DataPath: "winner"})
	store.PutQuestion(model.Question{ID: "q2", ContestID: "c1", DataPath: "mvp", Points: 3})
	store.PutSubmission(model.Submission{
		ID: "s1", ContestID: "c1", UserID: "u1", SubmittedAtEpoch: 100,
		Answers: []model.Answer{
			{QuestionID: "q1", SelectedKey: "home"},
			{QuestionID: "q2", SelectedKey: "kohli"},
		},
	})
	store.PutSubmission(model.Submission{
		ID: "s2", ContestID: "c1", UserID: "u2", SubmittedAtEpoch: 50,
		Answers: []model.Answer{
			{QuestionID: "q1", SelectedKey: "home"},
			{QuestionID: "q2", SelectedKey: "smith"},
		},
	})
}

func TestContestLifecycleEndToEnd(t *testing.T) {
	Convey("Given a running engine with a seeded prematch contest", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := repository.NewMemoryStore()
		publisher := events.NewMemoryPublisher()
		seedContest(store)

		svc := service.New(
			service.WithStore(store),
			service.WithPublisher(publisher),
			service.WithWorkerCount(2),
			service.WithRescanInterval(0),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		startEpoch := time.Now().Add(2 * time.Hour).Unix()

		Convey("When the match approaches, tosses, and completes", func() {
			So(svc.Apply(ctx, queue.Update{MatchID: "m1", Snapshot: model.MatchSnapshot{
				MatchID: "m1", MatchStatus: model.MatchNotStarted,
				MatchFormat: model.FormatT20, MatchStartEpoch: startEpoch,
			}}), ShouldBeNil)

			c, err := store.Contest(ctx, "c1")
			So(err, ShouldBeNil)
			So(c.Status, ShouldEqual, model.StatusLive)

			So(svc.Apply(ctx, queue.Update{MatchID: "m1", Snapshot: model.MatchSnapshot{
				MatchID: "m1", MatchStatus: model.MatchStarted, TossCompleted: true,
				MatchFormat: model.FormatT20, MatchStartEpoch: startEpoch,
			}}), ShouldBeNil)

			c, err = store.Contest(ctx, "c1")
			So(err, ShouldBeNil)
			So(c.Status, ShouldEqual, model.StatusJoiningClosed)

			So(svc.Apply(ctx, queue.Update{MatchID: "m1", Snapshot: model.MatchSnapshot{
				MatchID: "m1", MatchStatus: model.MatchCompleted, TossCompleted: true,
				CurrentInnings: model.Innings2Completed, OversDecimal: 19.3,
				MatchFormat: model.FormatT20, MatchStartEpoch: startEpoch,
				Raw: map[string]any{"winner": "home"},
			}}), ShouldBeNil)

			Convey("Then settlement completes the contest", func() {
				So(waitForStatus(ctx, store, "c1", model.StatusCompleted), ShouldBeTrue)

				Convey("And the resolvable answer key is persisted", func() {
					qs, err := store.QuestionsByContest(ctx, "c1")
					So(err, ShouldBeNil)
					So(qs[0].AnswerKey, ShouldNotBeNil)
					So(*qs[0].AnswerKey, ShouldEqual, "home")
					So(qs[1].AnswerKey, ShouldBeNil)
				})

				Convey("And submissions are scored against resolved keys only", func() {
					s1, err := store.SubmissionByUser(ctx, "c1", "u1")
					So(err, ShouldBeNil)
					So(s1.TotalScore, ShouldEqual, 1)
					So(s1.MaxScore, ShouldEqual, 1)
				})

				Convey("And ranks follow the earlier-submission tie-break", func() {
					s1, err := store.SubmissionByUser(ctx, "c1", "u1")
					So(err, ShouldBeNil)
					s2, err := store.SubmissionByUser(ctx, "c1", "u2")
					So(err, ShouldBeNil)
					So(s2.Rank, ShouldEqual, 1)
					So(s1.Rank, ShouldEqual, 2)
				})

				Convey("And every transition was published with a reason", func() {
					changes := publisher.Changes()
					So(len(changes), ShouldEqual, 4)
					So(changes[1].Reason, ShouldContainSubstring, "Toss completed")
					So(changes[3].NewStatus, ShouldEqual, model.StatusCompleted)
					for _, ch := range changes {
						So(ch.Reason, ShouldNotBeEmpty)
					}
				})

				Convey("And a duplicate completed snapshot changes nothing", func() {
					So(svc.Apply(ctx, queue.Update{MatchID: "m1", Snapshot: model.MatchSnapshot{
						MatchID: "m1", MatchStatus: model.MatchCompleted, TossCompleted: true,
						CurrentInnings: model.Innings2Completed, OversDecimal: 19.3,
						MatchFormat: model.FormatT20, MatchStartEpoch: startEpoch,
						Raw: map[string]any{"winner": "home"},
					}}), ShouldBeNil)

					s1, err := store.SubmissionByUser(ctx, "c1", "u1")
					So(err, ShouldBeNil)
					So(s1.TotalScore, ShouldEqual, 1)
					So(s1.Rank, ShouldEqual, 2)

					c, err := store.Contest(ctx, "c1")
					So(err, ShouldBeNil)
					So(c.Status, ShouldEqual, model.StatusCompleted)
				})
			})
		})

		Convey("When the match is abandoned mid-way", func() {
			So(svc.Apply(ctx, queue.Update{MatchID: "m1", Snapshot: model.MatchSnapshot{
				MatchID: "m1", MatchStatus: model.MatchAbandoned,
				MatchFormat: model.FormatT20, MatchStartEpoch: startEpoch,
			}}), ShouldBeNil)

			Convey("Then the contest cancels and the event says why", func() {
				c, err := store.Contest(ctx, "c1")
				So(err, ShouldBeNil)
				So(c.Status, ShouldEqual, model.StatusCancelled)

				changes := publisher.Changes()
				So(changes, ShouldNotBeEmpty)
				So(changes[len(changes)-1].Reason, ShouldContainSubstring, "abandoned")
			})
		})
	})
}

func TestPhaseContestThroughEngine(t *testing.T) {
	Convey("Given a running engine with a powerplay contest", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := repository.NewMemoryStore()
		store.PutContest(model.Contest{
			ID: "c2", MatchID: "m2", RawCategory: "powerplay1", Status: model.StatusUpcoming,
		})

		svc := service.New(
			service.WithStore(store),
			service.WithRescanInterval(0),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the contest is first seen mid-powerplay", func() {
			So(svc.Apply(ctx, queue.Update{MatchID: "m2", Snapshot: model.MatchSnapshot{
				MatchID: "m2", MatchStatus: model.MatchStarted, TossCompleted: true,
				CurrentInnings: model.Innings1, OversDecimal: 3.5,
				MatchFormat: model.FormatT20,
			}}), ShouldBeNil)

			Convey("Then joining closes without passing through live", func() {
				c, err := store.Contest(ctx, "c2")
				So(err, ShouldBeNil)
				So(c.Status, ShouldEqual, model.StatusJoiningClosed)
			})
		})

		Convey("When play moves past the window end", func() {
			So(svc.Apply(ctx, queue.Update{MatchID: "m2", Snapshot: model.MatchSnapshot{
				MatchID: "m2", MatchStatus: model.MatchStarted, TossCompleted: true,
				CurrentInnings: model.Innings1, OversDecimal: 3.5,
				MatchFormat: model.FormatT20,
			}}), ShouldBeNil)
			So(svc.Apply(ctx, queue.Update{MatchID: "m2", Snapshot: model.MatchSnapshot{
				MatchID: "m2", MatchStatus: model.MatchStarted, TossCompleted: true,
				CurrentInnings: model.Innings1, OversDecimal: 6.0,
				MatchFormat: model.FormatT20,
			}}), ShouldBeNil)

			Convey("Then the contest settles to completed", func() {
				So(waitForStatus(ctx, store, "c2", model.StatusCompleted), ShouldBeTrue)
			})
		})
	})
}

func TestLeaderboardReads(t *testing.T) {
	Convey("Given an engine over scored submissions", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := repository.NewMemoryStore()
		store.PutContest(model.Contest{
			ID: "c3", MatchID: "m3", RawCategory: "prematch", Status: model.StatusCompleted,
		})
		for i, user := range []string{"u1", "u2", "u3", "u4", "u5"} {
			store.PutSubmission(model.Submission{
				ID: "s" + user, ContestID: "c3", UserID: user,
				TotalScore: 10 * (5 - i), MaxScore: 50,
				SubmittedAtEpoch: int64(i),
			})
		}

		svc := service.New(service.WithStore(store), service.WithRescanInterval(0))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a page is requested", func() {
			entries, total, err := svc.Leaderboard(ctx, "c3", 2, 1)

			Convey("Then the page and total are correct", func() {
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 5)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].UserID, ShouldEqual, "u2")
				So(entries[0].Rank, ShouldEqual, 2)
				So(entries[1].UserID, ShouldEqual, "u3")
			})
		})

		Convey("When the offset is past the end", func() {
			entries, total, err := svc.Leaderboard(ctx, "c3", 10, 99)
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 5)
			So(entries, ShouldBeEmpty)
		})

		Convey("When one user's rank is requested", func() {
			entry, err := svc.UserRank(ctx, "c3", "u4")
			So(err, ShouldBeNil)
			So(entry.Rank, ShouldEqual, 4)
			So(entry.Percentage, ShouldEqual, 40)
		})

		Convey("When an unknown user is requested", func() {
			_, err := svc.UserRank(ctx, "c3", "ghost")
			So(err, ShouldNotBeNil)
		})
	})
}
