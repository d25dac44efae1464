package model

import (
	"regexp"
	"strings"
)

// PhaseKind identifies the overs window a phase contest observes.
type PhaseKind int

const (
	// PhaseUnknown covers category tags with no recognized keyword.
	// Such contests observe the whole innings.
	PhaseUnknown PhaseKind = iota
	PhasePowerplay
	PhaseMiddle
	PhaseDeath
)

// String returns the lowercase keyword for the phase kind.
func (k PhaseKind) String() string {
	switch k {
	case PhasePowerplay:
		return "powerplay"
	case PhaseMiddle:
		return "middle"
	case PhaseDeath:
		return "death"
	default:
		return "unknown"
	}
}

// Category is the parsed form of a contest's free-form category tag.
// Parsing happens once when a contest is loaded, so the state machine
// never re-derives it from substring matching on every telemetry tick.
type Category struct {
	Prematch bool
	Kind     PhaseKind
	Innings  string // "innings1" or "innings2"; empty for prematch
}

var secondInningsPattern = regexp.MustCompile(`innings2|_2\b|2$`)

// ParseCategory parses a category tag case-insensitively. Keywords:
// prematch, powerplay, middle, death; an innings marker ("innings2",
// trailing "2", or "_2") selects the second innings, defaulting to the
// first. Tags with no recognized phase keyword parse to PhaseUnknown.
func ParseCategory(raw string) Category {
	normalized := strings.ToLower(strings.TrimSpace(raw))

	if strings.Contains(strings.ReplaceAll(normalized, "_", ""), "prematch") {
		return Category{Prematch: true}
	}

	c := Category{Innings: Innings1}
	switch {
	case strings.Contains(normalized, "powerplay"):
		c.Kind = PhasePowerplay
	case strings.Contains(normalized, "middle"):
		c.Kind = PhaseMiddle
	case strings.Contains(normalized, "death"):
		c.Kind = PhaseDeath
	default:
		c.Kind = PhaseUnknown
	}

	if secondInningsPattern.MatchString(normalized) {
		c.Innings = Innings2
	}
	return c
}
