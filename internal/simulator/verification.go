package simulator

import "fmt"

// verifyLeaderboard checks the invariants a settled contest's
// standings must satisfy: strict 1..N ranks and descending scores.
func verifyLeaderboard(entries []Entry) error {
	for i, entry := range entries {
		if entry.Rank != i+1 {
			return fmt.Errorf("entry %d carries rank %d, want %d", i, entry.Rank, i+1)
		}
		if i > 0 && entry.TotalScore > entries[i-1].TotalScore {
			return fmt.Errorf("entry %d outscores entry %d but ranks below it", i, i-1)
		}
		if entry.MaxScore > 0 && entry.TotalScore > entry.MaxScore {
			return fmt.Errorf("entry %d scores %d out of a maximum of %d", i, entry.TotalScore, entry.MaxScore)
		}
	}
	return nil
}
