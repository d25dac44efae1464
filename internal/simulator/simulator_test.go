package simulator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/okian/crease/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestBuildMatchScript(t *testing.T) {
	Convey("Given a scripted T20 match", t, func() {
		script := buildMatchScript("t20", 1_700_000_000)

		Convey("Then it opens before the toss and ends completed", func() {
			So(script.Snapshots, ShouldNotBeEmpty)
			So(script.Snapshots[0].MatchStatus, ShouldEqual, "not_started")
			So(script.Snapshots[0].TossCompleted, ShouldBeFalse)

			last := script.Snapshots[len(script.Snapshots)-1]
			So(last.MatchStatus, ShouldEqual, "completed")
			So(last.CurrentInnings, ShouldEqual, "innings2_completed")
			So(last.Data["winner"], ShouldBeIn, "home", "away")
		})

		Convey("Then every snapshot carries the same match ID", func() {
			for _, snap := range script.Snapshots {
				So(snap.MatchID, ShouldEqual, script.MatchID)
			}
		})

		Convey("Then innings1 fully precedes innings2", func() {
			seenSecond := false
			for _, snap := range script.Snapshots {
				switch snap.CurrentInnings {
				case "innings2", "innings2_completed":
					seenSecond = true
				case "innings1":
					So(seenSecond, ShouldBeFalse)
				}
			}
			So(seenSecond, ShouldBeTrue)
		})
	})

	Convey("Given a scripted ODI match", t, func() {
		script := buildMatchScript("odi", 1_700_000_000)

		Convey("Then it runs the longer innings", func() {
			So(len(script.Snapshots), ShouldBeGreaterThan, 2*odiOvers)
			for _, snap := range script.Snapshots {
				So(snap.MatchFormat, ShouldEqual, "odi")
			}
		})
	})
}

func TestVerifyLeaderboard(t *testing.T) {
	Convey("Given leaderboard verification", t, func() {
		Convey("When the standings are consistent", func() {
			err := verifyLeaderboard([]Entry{
				{Rank: 1, UserID: "u1", TotalScore: 5, MaxScore: 5},
				{Rank: 2, UserID: "u2", TotalScore: 3, MaxScore: 5},
			})
			So(err, ShouldBeNil)
		})

		Convey("When ranks skip a position", func() {
			err := verifyLeaderboard([]Entry{
				{Rank: 1, UserID: "u1", TotalScore: 5},
				{Rank: 3, UserID: "u2", TotalScore: 3},
			})
			So(err, ShouldNotBeNil)
		})

		Convey("When a lower rank outscores a higher one", func() {
			err := verifyLeaderboard([]Entry{
				{Rank: 1, UserID: "u1", TotalScore: 3, MaxScore: 5},
				{Rank: 2, UserID: "u2", TotalScore: 5, MaxScore: 5},
			})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPlayScriptsAgainstStub(t *testing.T) {
	Convey("Given a stub engine", t, func() {
		var mu sync.Mutex
		received := make(map[string][]RawSnapshot)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz":
				w.WriteHeader(http.StatusOK)
			case "/telemetry":
				var snap RawSnapshot
				if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				mu.Lock()
				received[snap.MatchID] = append(received[snap.MatchID], snap)
				mu.Unlock()
				w.WriteHeader(http.StatusAccepted)
				_ = json.NewEncoder(w).Encode(AckResponse{Status: "accepted"})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		config := &Config{
			BaseURL: srv.URL,
			Matches: 2,
			Format:  "t20",
			Timeout: 5 * time.Second,
		}

		Convey("When two matches are replayed", func() {
			scripts := buildMatchScripts(config)
			stats := &Stats{}
			err := playScripts(context.Background(), config, scripts, stats)

			Convey("Then every snapshot lands, in order per match", func() {
				So(err, ShouldBeNil)
				So(stats.SnapshotsRejected, ShouldEqual, 0)
				So(received, ShouldHaveLength, 2)

				for _, script := range scripts {
					got := received[script.MatchID]
					So(got, ShouldHaveLength, len(script.Snapshots))
					So(got[0].MatchStatus, ShouldEqual, "not_started")
					So(got[len(got)-1].MatchStatus, ShouldEqual, "completed")
				}
				So(stats.SnapshotsAccepted, ShouldEqual, stats.SnapshotsSent)
			})
		})
	})
}
