package escalate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/risk-cli/internal/model"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
}

func TestNewGateThreshold(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected State
	}{
		{name: "well below", score: 1.88, expected: NotRequired},
		{name: "exactly at threshold", score: 3.5, expected: NotRequired},
		{name: "just above", score: 3.51, expected: PendingAcknowledgement},
		{name: "maximum", score: 4.0, expected: PendingAcknowledgement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.score, model.BandFor(tt.score), fixedClock)
			assert.Equal(t, tt.expected, g.State())
			assert.Equal(t, tt.expected != PendingAcknowledgement, g.Terminal())
		})
	}
}

func TestGateAcknowledge(t *testing.T) {
	g := NewGate(3.7, model.BandEnhanced, fixedClock)

	state, err := g.Resolve(Acknowledge)
	require.NoError(t, err)
	assert.Equal(t, Accepted, state)
	assert.True(t, g.Terminal())

	decl := g.Declaration()
	require.NotNil(t, decl)
	assert.True(t, decl.Accepted)
	assert.Equal(t, fixedClock(), decl.Timestamp)
	assert.InDelta(t, 3.7, decl.ScoreAtAcceptance, 1e-9)
	assert.Equal(t, model.BandEnhanced, decl.BandAtAcceptance)
}

func TestGateCancelConfirmed(t *testing.T) {
	g := NewGate(3.7, model.BandEnhanced, fixedClock)

	state, err := g.Resolve(CancelConfirmed)
	require.NoError(t, err)
	assert.Equal(t, Aborted, state)
	assert.True(t, g.Terminal())
	assert.Nil(t, g.Declaration())
}

func TestGateDismissStaysPending(t *testing.T) {
	g := NewGate(3.7, model.BandEnhanced, fixedClock)

	// Any number of dismissals leaves the decision open.
	for i := 0; i < 3; i++ {
		state, err := g.Resolve(Dismiss)
		require.NoError(t, err)
		assert.Equal(t, PendingAcknowledgement, state)
		assert.False(t, g.Terminal())
	}

	state, err := g.Resolve(Acknowledge)
	require.NoError(t, err)
	assert.Equal(t, Accepted, state)
}

func TestGateTerminalResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		gate func() *Gate
	}{
		{
			name: "not required",
			gate: func() *Gate {
				return NewGate(2.0, model.BandSimplified, fixedClock)
			},
		},
		{
			name: "accepted",
			gate: func() *Gate {
				g := NewGate(3.8, model.BandEnhanced, fixedClock)
				_, _ = g.Resolve(Acknowledge)
				return g
			},
		},
		{
			name: "aborted",
			gate: func() *Gate {
				g := NewGate(3.8, model.BandEnhanced, fixedClock)
				_, _ = g.Resolve(CancelConfirmed)
				return g
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.gate()
			before := g.State()
			state, err := g.Resolve(Acknowledge)
			assert.Error(t, err)
			assert.Equal(t, before, state)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "not_required", NotRequired.String())
	assert.Equal(t, "pending_acknowledgement", PendingAcknowledgement.String())
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "aborted", Aborted.String())
}
