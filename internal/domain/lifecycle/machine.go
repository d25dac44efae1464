// Package lifecycle implements the contest status machine. Evaluate is
// a pure function of (current status, parsed category, match snapshot);
// all side effects of a transition (persistence, settlement triggers,
// notifications) belong to the caller.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/phase"
)

// Transition reasons surfaced on status-change events.
const (
	reasonPrematchLive   = "Contest now live - match start approaching"
	reasonTossCompleted  = "Toss completed - joining closed"
	reasonMatchCompleted = "Match completed - calculating results"
	reasonSecondInnings  = "Second innings completed - calculating results"
	reasonInningsSkipped = "Target innings already over - calculating results"
	reasonOversExhausted = "Innings overs exhausted - calculating results"
	reasonPhaseWaiting   = "Contest open - waiting for phase window"
	reasonPhaseStarted   = "Phase already started - joining closed"
	reasonWindowEnded    = "Phase window ended - calculating results"
)

// Decision is one computed transition with its human-readable reason.
type Decision struct {
	Next   model.Status
	Reason string
}

// Evaluate computes the next status for a contest against a fresh match
// snapshot. It returns false when no transition applies. A contest
// advances at most one state per evaluation, except the documented
// skip-ahead rules for phase contests whose observation window was
// missed entirely.
func Evaluate(current model.Status, cat model.Category, snap model.MatchSnapshot, now time.Time, prematchLead time.Duration) (Decision, bool) {
	if current.Terminal() {
		return Decision{}, false
	}

	// Cancellation dominates every other rule.
	if snap.MatchStatus.Dead() {
		return Decision{
			Next:   model.StatusCancelled,
			Reason: fmt.Sprintf("Match %s", snap.MatchStatus),
		}, true
	}

	if cat.Prematch {
		return evaluatePrematch(current, snap, now, prematchLead)
	}
	return evaluatePhase(current, cat, snap)
}

func evaluatePrematch(current model.Status, snap model.MatchSnapshot, now time.Time, lead time.Duration) (Decision, bool) {
	switch current {
	case model.StatusUpcoming:
		// A feed that never supplies the start time counts as already
		// inside the lead window.
		start := now
		if snap.MatchStartEpoch > 0 {
			start = time.Unix(snap.MatchStartEpoch, 0)
		}
		if !now.Before(start.Add(-lead)) {
			return Decision{Next: model.StatusLive, Reason: reasonPrematchLive}, true
		}

	case model.StatusLive:
		if snap.TossCompleted {
			return Decision{Next: model.StatusJoiningClosed, Reason: reasonTossCompleted}, true
		}

	case model.StatusJoiningClosed:
		if snap.MatchStatus == model.MatchCompleted {
			return Decision{Next: model.StatusCalculating, Reason: reasonMatchCompleted}, true
		}
		if snap.CurrentInnings == model.Innings2Completed {
			return Decision{Next: model.StatusCalculating, Reason: reasonSecondInnings}, true
		}
	}
	return Decision{}, false
}

func evaluatePhase(current model.Status, cat model.Category, snap model.MatchSnapshot) (Decision, bool) {
	window := phase.ResolveWindow(cat.Kind, snap.MatchFormat)
	maxOvers := model.MaxOvers(snap.MatchFormat)
	inTarget := snap.CurrentInnings == cat.Innings

	switch current {
	case model.StatusUpcoming:
		// Skip-ahead: the window was missed entirely; the contest must
		// not stay joinable for play that already happened.
		if d, ok := windowSkipped(cat, snap, maxOvers); ok {
			return d, true
		}
		if snap.TossCompleted && openBeforeWindow(cat, snap, window, inTarget) {
			return Decision{Next: model.StatusLive, Reason: reasonPhaseWaiting}, true
		}
		// Skip-ahead: the window already began before the contest went
		// live, so it closes without ever opening.
		if inTarget && snap.OversDecimal >= window.Start {
			return Decision{Next: model.StatusJoiningClosed, Reason: reasonPhaseStarted}, true
		}

	case model.StatusLive:
		if d, ok := windowSkipped(cat, snap, maxOvers); ok {
			return d, true
		}
		if snap.MatchStatus == model.MatchStarted && inTarget && snap.OversDecimal >= window.Start {
			return Decision{
				Next:   model.StatusJoiningClosed,
				Reason: fmt.Sprintf("First ball bowled at over %.1f - joining closed", snap.OversDecimal),
			}, true
		}

	case model.StatusJoiningClosed:
		if inTarget && snap.OversDecimal >= window.End {
			return Decision{Next: model.StatusCalculating, Reason: reasonWindowEnded}, true
		}
		if inningsIndex(snap.CurrentInnings) > inningsIndex(cat.Innings) {
			return Decision{Next: model.StatusCalculating, Reason: reasonInningsSkipped}, true
		}
		if snap.MatchStatus == model.MatchCompleted {
			return Decision{Next: model.StatusCalculating, Reason: reasonMatchCompleted}, true
		}
		if cat.Innings == model.Innings1 && snap.OversDecimal >= maxOvers {
			return Decision{Next: model.StatusCalculating, Reason: reasonOversExhausted}, true
		}
	}
	return Decision{}, false
}

// windowSkipped reports the upcoming/live skip-ahead into calculating:
// a first-innings contest whose innings is already over, either because
// play moved to the second innings or because the over cap was reached.
func windowSkipped(cat model.Category, snap model.MatchSnapshot, maxOvers float64) (Decision, bool) {
	if cat.Innings != model.Innings1 {
		return Decision{}, false
	}
	if inningsIndex(snap.CurrentInnings) >= inningsIndex(model.Innings2) {
		return Decision{Next: model.StatusCalculating, Reason: reasonInningsSkipped}, true
	}
	if snap.OversDecimal >= maxOvers {
		return Decision{Next: model.StatusCalculating, Reason: reasonOversExhausted}, true
	}
	return Decision{}, false
}

// openBeforeWindow reports whether a phase contest should sit in live:
// the match has not started, or play is in the target innings before
// the window's first over, or the contest targets the second innings
// while the first is still in progress.
func openBeforeWindow(cat model.Category, snap model.MatchSnapshot, w phase.Window, inTarget bool) bool {
	if snap.MatchStatus == model.MatchNotStarted {
		return true
	}
	if inTarget && snap.OversDecimal < w.Start {
		return true
	}
	return cat.Innings == model.Innings2 && inningsIndex(snap.CurrentInnings) <= inningsIndex(model.Innings1)
}

// inningsIndex orders innings tags so "past the target innings" is a
// plain comparison. The second-innings-completed marker sorts after the
// second innings itself.
func inningsIndex(innings string) int {
	switch innings {
	case model.Innings1:
		return 1
	case model.Innings2:
		return 2
	case model.Innings2Completed:
		return 3
	default:
		return 0
	}
}
