// Package phase resolves the overs window a phase contest observes,
// keyed on the contest's parsed category and the match format.
package phase

import "github.com/okian/crease/internal/domain/model"

// Window is a closed overs interval within one innings.
type Window struct {
	Start float64
	End   float64
}

// Contains reports whether an over count falls inside the window.
func (w Window) Contains(overs float64) bool {
	return overs >= w.Start && overs <= w.End
}

// boundary rows per format. Formats without a row use the T20 boundaries.
var windows = map[model.Format]map[model.PhaseKind]Window{
	model.FormatT20: {
		model.PhasePowerplay: {Start: 0, End: 6},
		model.PhaseMiddle:    {Start: 7, End: 15},
		model.PhaseDeath:     {Start: 16, End: 20},
	},
	model.FormatODI: {
		model.PhasePowerplay: {Start: 0, End: 10},
		model.PhaseMiddle:    {Start: 11, End: 40},
		model.PhaseDeath:     {Start: 41, End: 50},
	},
}

// ResolveWindow returns the overs window for a phase kind under a match
// format. Unknown phase kinds observe the whole innings up to the
// format's over cap.
func ResolveWindow(kind model.PhaseKind, format model.Format) Window {
	if kind == model.PhaseUnknown {
		return Window{Start: 0, End: model.MaxOvers(format)}
	}
	byKind, ok := windows[format]
	if !ok {
		byKind = windows[model.FormatT20]
	}
	return byKind[kind]
}
