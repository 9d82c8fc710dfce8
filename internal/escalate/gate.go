// Package escalate gates finalization of high-risk evaluations behind an
// explicit professional acknowledgement.
package escalate

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/risk-cli/internal/model"
)

// Threshold is the weighted-sum value above which enhanced due diligence
// must be acknowledged before the evaluation finalizes.
const Threshold = 3.5

// State is the gate's position in its lifecycle.
type State int

// Gate states. NotRequired, Accepted and Aborted are terminal.
const (
	NotRequired State = iota
	PendingAcknowledgement
	Accepted
	Aborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case NotRequired:
		return "not_required"
	case PendingAcknowledgement:
		return "pending_acknowledgement"
	case Accepted:
		return "accepted"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Decision is a caller action on a pending gate.
type Decision int

// Decisions. Dismiss covers any non-confirmed dismissal (closing without
// choosing) and leaves the gate pending.
const (
	// Acknowledge is the explicit affirmative acceptance of the enhanced
	// due-diligence obligations.
	Acknowledge Decision = iota
	// CancelConfirmed is the explicit, confirmed cancellation; the whole
	// evaluation is discarded.
	CancelConfirmed
	// Dismiss re-enters PendingAcknowledgement.
	Dismiss
)

// Gate is the escalation state machine for one evaluation. It snapshots
// the score and band at construction so the declaration records the values
// that triggered it.
type Gate struct {
	state State
	score float64
	band  model.Band
	now   func() time.Time

	declaration *model.EscalationDeclaration
}

// NewGate builds the gate for a weighted sum. At or below the threshold
// the gate starts terminal (NotRequired); above it, acknowledgement is
// pending. A nil clock defaults to time.Now.
func NewGate(weightedSum float64, band model.Band, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	g := &Gate{
		state: NotRequired,
		score: weightedSum,
		band:  band,
		now:   now,
	}
	if weightedSum > Threshold {
		g.state = PendingAcknowledgement
	}
	return g
}

// State returns the current gate state.
func (g *Gate) State() State {
	return g.state
}

// Terminal reports whether the gate can no longer change.
func (g *Gate) Terminal() bool {
	return g.state != PendingAcknowledgement
}

// Declaration returns the acceptance record, nil unless the gate is
// Accepted.
func (g *Gate) Declaration() *model.EscalationDeclaration {
	return g.declaration
}

// Resolve applies a caller decision to a pending gate and returns the
// resulting state. Resolving a terminal gate is an error. Dismiss never
// finalizes: the gate stays pending until the caller decides.
func (g *Gate) Resolve(d Decision) (State, error) {
	if g.state != PendingAcknowledgement {
		return g.state, eris.Errorf("escalate: gate is %s, not pending", g.state)
	}

	switch d {
	case Acknowledge:
		g.state = Accepted
		g.declaration = &model.EscalationDeclaration{
			Accepted:          true,
			Timestamp:         g.now(),
			ScoreAtAcceptance: g.score,
			BandAtAcceptance:  g.band,
		}
	case CancelConfirmed:
		g.state = Aborted
	case Dismiss:
		// Stay pending.
	default:
		return g.state, eris.Errorf("escalate: unknown decision %d", d)
	}

	return g.state, nil
}
