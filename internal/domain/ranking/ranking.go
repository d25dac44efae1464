// Package ranking produces deterministic, tie-broken leaderboards from
// a contest's scored submissions. Ranking is a pure read computation;
// it never mutates the submissions it is given.
package ranking

import (
	"math"
	"sort"

	"github.com/okian/crease/internal/domain/model"
)

// Entry is one leaderboard row. TotalParticipants repeats the field
// count so a single-user rank read is self-contained.
type Entry struct {
	Rank              int    `json:"rank"`
	UserID            string `json:"user_id"`
	TotalScore        int    `json:"total_score"`
	MaxScore          int    `json:"max_score"`
	Percentage        int    `json:"percentage"`
	Percentile        int    `json:"percentile"`
	TotalParticipants int    `json:"total_participants"`
}

// Rank orders submissions by total score descending, breaking ties by
// submission time ascending. Ranks are strict integers 1..N with no
// gaps and no sharing; the time tie-break makes equal rows impossible.
func Rank(subs []model.Submission) []Entry {
	sorted := make([]model.Submission, len(subs))
	copy(sorted, subs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TotalScore != sorted[j].TotalScore {
			return sorted[i].TotalScore > sorted[j].TotalScore
		}
		return sorted[i].SubmittedAtEpoch < sorted[j].SubmittedAtEpoch
	})

	total := len(sorted)
	entries := make([]Entry, total)
	for i, s := range sorted {
		rank := i + 1
		entries[i] = Entry{
			Rank:              rank,
			UserID:            s.UserID,
			TotalScore:        s.TotalScore,
			MaxScore:          s.MaxScore,
			Percentage:        percentage(s.TotalScore, s.MaxScore),
			Percentile:        percentile(rank, total),
			TotalParticipants: total,
		}
	}
	return entries
}

// UserRank computes a single user's entry directly, without ranking the
// whole set: the rank is one plus the number of submissions that score
// higher or score equal but arrived earlier. It agrees with Rank over
// the same data.
func UserRank(subs []model.Submission, userID string) (Entry, bool) {
	var mine *model.Submission
	for i := range subs {
		if subs[i].UserID == userID {
			mine = &subs[i]
			break
		}
	}
	if mine == nil {
		return Entry{}, false
	}

	rank := 1
	for i := range subs {
		s := &subs[i]
		if s.UserID == userID {
			continue
		}
		if s.TotalScore > mine.TotalScore ||
			(s.TotalScore == mine.TotalScore && s.SubmittedAtEpoch < mine.SubmittedAtEpoch) {
			rank++
		}
	}

	return Entry{
		Rank:              rank,
		UserID:            mine.UserID,
		TotalScore:        mine.TotalScore,
		MaxScore:          mine.MaxScore,
		Percentage:        percentage(mine.TotalScore, mine.MaxScore),
		Percentile:        percentile(rank, len(subs)),
		TotalParticipants: len(subs),
	}, true
}

func percentage(total, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(max) * 100))
}

func percentile(rank, participants int) int {
	if participants <= 0 {
		return 0
	}
	return int(math.Round(float64(participants-rank+1) / float64(participants) * 100))
}
