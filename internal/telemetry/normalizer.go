// Package telemetry validates and normalizes raw match feed payloads
// into canonical snapshots. The engine never sees a feed field that has
// not passed through here.
package telemetry

import (
	"github.com/okian/crease/internal/domain/model"
)

// RawSnapshot is the wire shape of one feed update.
type RawSnapshot struct {
	MatchID         string         `json:"match_id"`
	MatchStatus     string         `json:"match_status"`
	TossCompleted   bool           `json:"toss_completed"`
	CurrentInnings  string         `json:"current_innings"`
	Overs           string         `json:"overs"`
	MatchFormat     string         `json:"match_format"`
	MatchStartEpoch int64          `json:"match_start_epoch,omitempty"`
	Data            map[string]any `json:"data,omitempty"`
}

// Normalize converts a raw feed payload into a canonical snapshot.
// Malformed fields never fail the update; they resolve to documented
// defaults and come back as anomalies for logging and metrics.
func Normalize(raw RawSnapshot) (model.MatchSnapshot, []model.Anomaly) {
	var anomalies []model.Anomaly

	status, a := model.ParseMatchStatus(raw.MatchStatus)
	anomalies = append(anomalies, a...)

	format, a := model.ParseFormat(raw.MatchFormat)
	anomalies = append(anomalies, a...)

	overs, a := model.ParseOvers(raw.Overs)
	anomalies = append(anomalies, a...)

	return model.MatchSnapshot{
		MatchID:         raw.MatchID,
		MatchStatus:     status,
		TossCompleted:   raw.TossCompleted,
		CurrentInnings:  model.NormalizeInnings(raw.CurrentInnings),
		OversDecimal:    overs,
		MatchFormat:     format,
		MatchStartEpoch: raw.MatchStartEpoch,
		Raw:             raw.Data,
	}, anomalies
}
