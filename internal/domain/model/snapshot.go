package model

import (
	"strconv"
	"strings"
)

// MatchStatus mirrors the upstream feed's match state.
type MatchStatus string

const (
	MatchNotStarted MatchStatus = "not_started"
	MatchStarted    MatchStatus = "started"
	MatchCompleted  MatchStatus = "completed"
	MatchCancelled  MatchStatus = "cancelled"
	MatchAbandoned  MatchStatus = "abandoned"
)

// Dead reports whether the match can no longer produce play.
func (s MatchStatus) Dead() bool {
	return s == MatchCancelled || s == MatchAbandoned
}

// Format is the canonical match format.
type Format string

const (
	FormatT20   Format = "t20"
	FormatODI   Format = "odi"
	FormatTest  Format = "test"
	FormatOther Format = "other"
)

// Canonical innings identifiers. The raw feed encodes innings as
// "<side>_<number>" (e.g. "b_1"); normalization keeps only the number.
const (
	Innings1          = "innings1"
	Innings2          = "innings2"
	Innings2Completed = "innings2_completed"
)

// ballsPerOver converts the ball component of an overs string.
const ballsPerOver = 6.0

// MatchSnapshot is one normalized observation of a live match. It is
// ephemeral; a new one arrives with every telemetry update.
type MatchSnapshot struct {
	MatchID         string
	MatchStatus     MatchStatus
	TossCompleted   bool
	CurrentInnings  string // "", "innings1", "innings2", or "innings2_completed"
	OversDecimal    float64
	MatchFormat     Format
	MatchStartEpoch int64 // seconds; zero when unknown

	// Raw is the feed payload the snapshot was built from, retained for
	// answer-key resolution via dotted data paths.
	Raw map[string]any
}

// Anomaly flags a telemetry field that needed a documented default.
type Anomaly struct {
	Kind   string
	Detail string
}

// Anomaly kinds.
const (
	AnomalyOversBalls     = "overs_balls"
	AnomalyOversMalformed = "overs_malformed"
	AnomalyUnknownFormat  = "unknown_format"
	AnomalyUnknownStatus  = "unknown_status"
)

// ParseOvers converts an "<overs>.<balls>" string to a decimal over
// count (balls are sixths: "5.3" -> 5.5). Balls of six or more signal
// an upstream data error; the value is computed as-is and reported as
// an anomaly rather than clamped silently.
func ParseOvers(raw string) (float64, []Anomaly) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	var anomalies []Anomaly
	parts := strings.SplitN(raw, ".", 2)

	overs, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, []Anomaly{{Kind: AnomalyOversMalformed, Detail: raw}}
	}

	balls := 0
	if len(parts) == 2 && parts[1] != "" {
		balls, err = strconv.Atoi(parts[1])
		if err != nil {
			return float64(overs), []Anomaly{{Kind: AnomalyOversMalformed, Detail: raw}}
		}
	}
	if balls >= int(ballsPerOver) {
		anomalies = append(anomalies, Anomaly{Kind: AnomalyOversBalls, Detail: raw})
	}

	return float64(overs) + float64(balls)/ballsPerOver, anomalies
}

// NormalizeInnings converts a feed innings tag like "b_1" to the
// canonical "innings1" form. Tags already canonical pass through.
func NormalizeInnings(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "innings") {
		return raw
	}
	if i := strings.LastIndex(raw, "_"); i >= 0 && i+1 < len(raw) {
		if _, err := strconv.Atoi(raw[i+1:]); err == nil {
			return "innings" + raw[i+1:]
		}
	}
	return raw
}

// ParseFormat maps a free-form feed format tag onto the canonical enum.
// Unknown tags fall back to FormatOther, which behaves like T20.
func ParseFormat(raw string) (Format, []Anomaly) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(normalized, "t20"), strings.Contains(normalized, "twenty"):
		return FormatT20, nil
	case strings.Contains(normalized, "odi"), strings.Contains(normalized, "oneday"):
		return FormatODI, nil
	case strings.Contains(normalized, "test"):
		return FormatTest, nil
	case normalized == "", normalized == "other":
		return FormatOther, nil
	}
	return FormatOther, []Anomaly{{Kind: AnomalyUnknownFormat, Detail: raw}}
}

// ParseMatchStatus maps feed status strings (including the aliases the
// feed is known to emit) onto the canonical enum.
func ParseMatchStatus(raw string) (MatchStatus, []Anomaly) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "not_started", "scheduled":
		return MatchNotStarted, nil
	case "started", "live", "in_progress":
		return MatchStarted, nil
	case "completed", "finished":
		return MatchCompleted, nil
	case "cancelled":
		return MatchCancelled, nil
	case "abandoned":
		return MatchAbandoned, nil
	}
	return MatchNotStarted, []Anomaly{{Kind: AnomalyUnknownStatus, Detail: raw}}
}

// MaxOvers returns the innings over cap for a format. Test matches have
// no practical cap; unknown formats use the conservative T20 cap.
func MaxOvers(f Format) float64 {
	switch f {
	case FormatODI:
		return 50
	case FormatTest:
		return 999
	default:
		return 20
	}
}
