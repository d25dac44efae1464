package simulator

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Overs bowled per innings by format.
const (
	t20Overs = 20
	odiOvers = 50
)

// Scripted match result fields kept in the final snapshot's data payload.
// Answer-key data paths point into this object.
var winners = []string{"home", "away"}

var topScorers = []string{"rohit", "kohli", "gill", "rahul", "pant", "jadeja"}

// matchScript is the ordered snapshot sequence for one simulated match.
type matchScript struct {
	MatchID   string
	Snapshots []RawSnapshot
}

// buildMatchScript scripts a full match: pre-toss, toss, both innings
// over by over, and completion with a result payload.
func buildMatchScript(format string, startEpoch int64) matchScript {
	matchID := uuid.New().String()
	maxOvers := t20Overs
	if format == "odi" {
		maxOvers = odiOvers
	}

	snapshots := make([]RawSnapshot, 0, 2*maxOvers+4)

	// Before the toss the feed only carries the schedule.
	snapshots = append(snapshots, RawSnapshot{
		MatchID:         matchID,
		MatchStatus:     "not_started",
		MatchFormat:     format,
		MatchStartEpoch: startEpoch,
	})

	// Toss completed, play about to begin.
	snapshots = append(snapshots, RawSnapshot{
		MatchID:         matchID,
		MatchStatus:     "started",
		TossCompleted:   true,
		MatchFormat:     format,
		MatchStartEpoch: startEpoch,
	})

	for _, innings := range []string{"innings1", "innings2"} {
		for over := 0; over < maxOvers; over++ {
			snapshots = append(snapshots, RawSnapshot{
				MatchID:         matchID,
				MatchStatus:     "started",
				TossCompleted:   true,
				CurrentInnings:  innings,
				Overs:           fmt.Sprintf("%d.%d", over, randomBall()),
				MatchFormat:     format,
				MatchStartEpoch: startEpoch,
			})
		}
		snapshots = append(snapshots, RawSnapshot{
			MatchID:         matchID,
			MatchStatus:     "started",
			TossCompleted:   true,
			CurrentInnings:  innings,
			Overs:           fmt.Sprintf("%d.0", maxOvers),
			MatchFormat:     format,
			MatchStartEpoch: startEpoch,
		})
	}

	// Final snapshot carries the result so settlement can resolve
	// answer keys from its data paths.
	snapshots = append(snapshots, RawSnapshot{
		MatchID:         matchID,
		MatchStatus:     "completed",
		TossCompleted:   true,
		CurrentInnings:  "innings2_completed",
		Overs:           fmt.Sprintf("%d.0", maxOvers),
		MatchFormat:     format,
		MatchStartEpoch: startEpoch,
		Data: map[string]any{
			"winner":     pick(winners),
			"top_scorer": pick(topScorers),
		},
	})

	return matchScript{MatchID: matchID, Snapshots: snapshots}
}

// buildMatchScripts scripts the configured number of matches, staggering
// their start epochs a minute apart.
func buildMatchScripts(config *Config) []matchScript {
	scripts := make([]matchScript, config.Matches)
	base := time.Now().Unix()
	for i := range scripts {
		scripts[i] = buildMatchScript(config.Format, base+int64(i)*60)
	}
	return scripts
}

// randomBall returns a ball count 0-5 using crypto/rand.
func randomBall() int {
	n, _ := rand.Int(rand.Reader, big.NewInt(6))
	return int(n.Int64())
}

func pick(options []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(options))))
	return options[n.Int64()]
}
