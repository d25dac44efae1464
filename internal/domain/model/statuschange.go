package model

import "time"

// StatusChange is the notification payload emitted on every contest
// transition, consumed by notification dispatch and prize distribution.
type StatusChange struct {
	ContestID string    `json:"contest_id"`
	MatchID   string    `json:"match_id"`
	Category  string    `json:"category"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}
