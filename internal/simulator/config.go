package simulator

import "time"

// Config holds configuration for a simulated match run.
type Config struct {
	BaseURL   string        // Base URL of the engine
	Matches   int           // Number of matches to simulate
	Format    string        // Match format: t20 or odi
	Interval  time.Duration // Pause between successive snapshots of one match
	Timeout   time.Duration // HTTP request timeout
	ContestID string        // Optional contest to inspect after the run
	TopN      int           // Number of leaderboard entries to fetch
	LogFile   string        // Log file for simulator output
	Verbose   bool          // Enable verbose logging
}

// RawSnapshot is the telemetry wire format the engine ingests.
type RawSnapshot struct {
	MatchID         string         `json:"match_id"`
	MatchStatus     string         `json:"match_status"`
	TossCompleted   bool           `json:"toss_completed,omitempty"`
	CurrentInnings  string         `json:"current_innings,omitempty"`
	Overs           string         `json:"overs,omitempty"`
	MatchFormat     string         `json:"match_format,omitempty"`
	MatchStartEpoch int64          `json:"match_start_epoch,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
}

// Entry is one leaderboard row as the engine serves it.
type Entry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	TotalScore int    `json:"total_score"`
	MaxScore   int    `json:"max_score"`
	Percentage int    `json:"percentage"`
	Percentile int    `json:"percentile"`
}

// LeaderboardResponse is the paginated leaderboard payload.
type LeaderboardResponse struct {
	Entries []Entry `json:"entries"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
	Total   int     `json:"total"`
}

// AckResponse is the response from snapshot submission.
type AckResponse struct {
	Status string `json:"status"`
}

// Stats holds simulation statistics.
type Stats struct {
	MatchesSimulated   int
	SnapshotsSent      int
	SnapshotsAccepted  int
	SnapshotsRejected  int
	SnapshotsThrottled int
	LeaderboardEntries int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
