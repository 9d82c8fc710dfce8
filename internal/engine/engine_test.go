package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/risk-cli/internal/config"
	"github.com/sells-group/risk-cli/internal/escalate"
	"github.com/sells-group/risk-cli/internal/model"
)

func testClock() time.Time {
	return time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
}

func testEngine() *Engine {
	return New(config.DefaultReference(), nil, testClock)
}

func amt(v float64) *float64 {
	return &v
}

// manualSection builds a section whose applicable factors carry the given
// levels.
func manualSection(name string, levels ...model.Level) model.ManualSection {
	sec := model.ManualSection{Name: name}
	for _, lvl := range levels {
		sec.Factors = append(sec.Factors, model.RiskFactor{Applicable: true, Level: lvl})
	}
	return sec
}

func standardInputs() model.EvaluationInputs {
	return model.EvaluationInputs{
		EvaluationDate:  "14/03/2025",
		Client:          "Esempio SRL",
		Service:         "Corporate consulting",
		Amount:          amt(80_000),
		NatureText:      "Intesa Sanpaolo",
		ClientArea:      "Milano",
		DestinationArea: "Genova",
		SectionsA: []model.ManualSection{
			manualSection("A.2 - Prevailing activity", 3, 3),
		},
		SectionsB: []model.ManualSection{
			manualSection("B.1 - Type of operation", 3, 3),
		},
	}
}

func TestEvaluateStandard(t *testing.T) {
	out, err := testEngine().Evaluate(standardInputs())
	require.NoError(t, err)

	r := out.Result()

	// Table A: nature 1 (registry match) + client area 4 + manual 3.0.
	assert.InDelta(t, 8.0, r.TotalA, 1e-9)
	assert.Equal(t, []float64{1, 4, 3}, r.SubAveragesA)

	// Table B: amount 80k -> 2 + destination 1 + manual 3.0.
	assert.InDelta(t, 6.0, r.TotalB, 1e-9)
	assert.Equal(t, []float64{2, 1, 3}, r.SubAveragesB)

	assert.InDelta(t, 1.4, r.SpecificRisk, 1e-9)
	assert.Equal(t, model.LevelSignificant, r.InherentRisk)
	assert.InDelta(t, 1.88, r.WeightedSum, 1e-9)
	assert.Equal(t, model.BandSimplified, r.Band)
	assert.False(t, r.TableAOnly)
	assert.Zero(t, r.CountA)

	assert.Equal(t, escalate.NotRequired, out.Gate().State())
	final, err := out.Final()
	require.NoError(t, err)
	assert.Nil(t, final.Escalation)
}

func TestEvaluateSectionBreakdown(t *testing.T) {
	out, err := testEngine().Evaluate(standardInputs())
	require.NoError(t, err)

	r := out.Result()
	require.Len(t, r.SectionsA, 3)

	// Automatic sections first, in derivation order.
	assert.Equal(t, "A.1 - Legal nature", r.SectionsA[0].Name)
	assert.True(t, r.SectionsA[0].Automatic)
	assert.Equal(t, "Intesa Sanpaolo", r.SectionsA[0].Value)

	assert.Equal(t, "A.4 - Client geographic area", r.SectionsA[1].Name)
	assert.Equal(t, "Milano", r.SectionsA[1].Value)

	assert.Equal(t, "A.2 - Prevailing activity", r.SectionsA[2].Name)
	assert.False(t, r.SectionsA[2].Automatic)
	assert.InDelta(t, 3.0, r.SectionsA[2].Score, 1e-9)

	require.Len(t, r.SectionsB, 3)
	assert.Equal(t, "B.3 - Operation amount", r.SectionsB[0].Name)
	assert.Equal(t, "80000.00 (50,000 - 250,000)", r.SectionsB[0].Value)
	assert.Equal(t, "B.6 - Destination geographic area", r.SectionsB[1].Name)
}

func TestEvaluateTableAOnly(t *testing.T) {
	in := standardInputs()
	in.Service = "Bookkeeping"
	in.SectionsA = []model.ManualSection{
		manualSection("A.2 - Prevailing activity", 2, 2),
		manualSection("A.3 - Behavior at engagement", 1),
	}
	in.SectionsB = nil

	out, err := testEngine().Evaluate(in)
	require.NoError(t, err)

	r := out.Result()
	assert.True(t, r.TableAOnly)

	// Nature 1 + area 4 + manual 2.0 + 1.0.
	assert.InDelta(t, 8.0, r.TotalA, 1e-9)

	// Two automatic sections plus the two configured manual definitions.
	assert.Equal(t, 4, r.CountA)
	assert.InDelta(t, 2.0, r.SpecificRisk, 1e-9)

	// The B side is never composed.
	assert.Zero(t, r.TotalB)
	assert.Nil(t, r.SectionsB)
	assert.Nil(t, r.SubAveragesB)

	// 3*0.3 + 2.0*0.7 = 2.3.
	assert.InDelta(t, 2.3, r.WeightedSum, 1e-9)
	assert.Equal(t, model.BandSimplified, r.Band)
}

func highRiskInputs() model.EvaluationInputs {
	return model.EvaluationInputs{
		EvaluationDate:  "14/03/2025",
		Client:          "Omega Anstalt",
		Service:         "Extraordinary finance operations",
		Amount:          amt(2_000_000),
		NatureText:      "Omega Trust Anstalt",
		ClientArea:      "Milano",
		DestinationArea: "Panama",
		SectionsA: []model.ManualSection{
			manualSection("A.2 - Prevailing activity", 4, 4),
			manualSection("A.3 - Behavior at engagement", 4),
		},
		SectionsB: []model.ManualSection{
			manualSection("B.1 - Type of operation", 4),
			manualSection("B.2 - Methods of execution", 4),
			manualSection("B.4 - Frequency and duration", 4),
			manualSection("B.5 - Reasonableness", 4),
		},
	}
}

func TestEvaluateEscalation(t *testing.T) {
	out, err := testEngine().Evaluate(highRiskInputs())
	require.NoError(t, err)

	r := out.Result()
	assert.InDelta(t, 16.0, r.TotalA, 1e-9)
	assert.InDelta(t, 24.0, r.TotalB, 1e-9)
	assert.InDelta(t, 4.0, r.SpecificRisk, 1e-9)
	assert.InDelta(t, 4.0, r.WeightedSum, 1e-9)
	assert.Equal(t, model.BandEnhanced, r.Band)
	assert.Nil(t, r.Escalation)

	// Finalization is blocked until the gate resolves.
	assert.Equal(t, escalate.PendingAcknowledgement, out.Gate().State())
	_, err = out.Final()
	assert.Error(t, err)

	state, err := out.Resolve(escalate.Acknowledge)
	require.NoError(t, err)
	assert.Equal(t, escalate.Accepted, state)

	final, err := out.Final()
	require.NoError(t, err)
	require.NotNil(t, final.Escalation)
	assert.True(t, final.Escalation.Accepted)
	assert.Equal(t, testClock(), final.Escalation.Timestamp)
	assert.InDelta(t, 4.0, final.Escalation.ScoreAtAcceptance, 1e-9)
	assert.Equal(t, model.BandEnhanced, final.Escalation.BandAtAcceptance)
}

func TestEvaluateEscalationAborted(t *testing.T) {
	out, err := testEngine().Evaluate(highRiskInputs())
	require.NoError(t, err)

	// An unconfirmed dismissal keeps the evaluation pending.
	state, err := out.Resolve(escalate.Dismiss)
	require.NoError(t, err)
	assert.Equal(t, escalate.PendingAcknowledgement, state)
	_, err = out.Final()
	assert.Error(t, err)

	state, err = out.Resolve(escalate.CancelConfirmed)
	require.NoError(t, err)
	assert.Equal(t, escalate.Aborted, state)

	_, err = out.Final()
	assert.Error(t, err)
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := testEngine()

	first, err := eng.Evaluate(standardInputs())
	require.NoError(t, err)
	second, err := eng.Evaluate(standardInputs())
	require.NoError(t, err)

	assert.Equal(t, first.Result(), second.Result())
}

func TestEvaluateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.EvaluationInputs)
		field  string
	}{
		{
			name:   "missing date",
			mutate: func(in *model.EvaluationInputs) { in.EvaluationDate = "" },
			field:  "evaluation_date",
		},
		{
			name:   "missing client",
			mutate: func(in *model.EvaluationInputs) { in.Client = "" },
			field:  "client",
		},
		{
			name:   "unknown service",
			mutate: func(in *model.EvaluationInputs) { in.Service = "Astrology" },
			field:  "service",
		},
		{
			name: "manual nature level out of range",
			mutate: func(in *model.EvaluationInputs) {
				in.NatureManualLevel = 7
			},
			field: "nature_manual_level",
		},
		{
			name: "applicable factor without a valid level",
			mutate: func(in *model.EvaluationInputs) {
				in.SectionsA[0].Factors[1].Level = 5
			},
			field: "sections_a[0].factors[1].level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := standardInputs()
			tt.mutate(&in)

			_, err := testEngine().Evaluate(in)
			require.Error(t, err)

			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestEvaluateValidationCollectsAllFailures(t *testing.T) {
	_, err := testEngine().Evaluate(model.EvaluationInputs{})
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestEvaluateNonApplicableFactorLevelIgnored(t *testing.T) {
	in := standardInputs()
	in.SectionsA[0].Factors = append(in.SectionsA[0].Factors, model.RiskFactor{
		Applicable: false,
		Level:      9,
	})

	out, err := testEngine().Evaluate(in)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, out.Result().TotalA, 1e-9)
}

func TestEvaluateDefaultNatureLevel(t *testing.T) {
	in := standardInputs()
	in.NatureText = "Mario Rossi"

	out, err := testEngine().Evaluate(in)
	require.NoError(t, err)

	r := out.Result()
	assert.InDelta(t, 3, r.SubAveragesA[0], 1e-9)
	assert.Contains(t, r.SectionsA[0].Value, "verify manually")
}

func TestEvaluateManualNatureLevel(t *testing.T) {
	in := standardInputs()
	in.NatureText = "Mario Rossi"
	in.NatureManualLevel = 2

	out, err := testEngine().Evaluate(in)
	require.NoError(t, err)

	r := out.Result()
	assert.InDelta(t, 2, r.SubAveragesA[0], 1e-9)
	assert.Equal(t, "Mario Rossi", r.SectionsA[0].Value)
}

func TestEvaluateUnknownGeographyFallsBack(t *testing.T) {
	in := standardInputs()
	in.ClientArea = "Atlantide"
	in.DestinationArea = ""

	out, err := testEngine().Evaluate(in)
	require.NoError(t, err)

	r := out.Result()
	// Unknown and empty places both score level 1.
	assert.InDelta(t, 1, r.SubAveragesA[1], 1e-9)
	assert.Equal(t, "Atlantide", r.SectionsA[1].Value)
	assert.InDelta(t, 1, r.SubAveragesB[1], 1e-9)
	assert.Equal(t, "not specified", r.SectionsB[1].Value)
}

func TestEvaluateUnspecifiedAmount(t *testing.T) {
	in := standardInputs()
	in.Amount = nil

	out, err := testEngine().Evaluate(in)
	require.NoError(t, err)

	r := out.Result()
	assert.Equal(t, model.LevelUnset, r.AmountBaseLevel)
	assert.InDelta(t, 0, r.SubAveragesB[0], 1e-9)
	assert.Equal(t, "not specified", r.SectionsB[0].Value)
	assert.NotEmpty(t, r.ThresholdNote)

	// Table B drops to destination 1 + manual 3.0.
	assert.InDelta(t, 4.0, r.TotalB, 1e-9)
	assert.InDelta(t, 1.2, r.SpecificRisk, 1e-9)
}

func TestEvaluateAggravatingFlagsDisplayOnly(t *testing.T) {
	in := standardInputs()
	in.Amount = amt(30_000)
	in.AmountFlags = model.AmountFlags{Incongruous: true, Splitting: true}

	out, err := testEngine().Evaluate(in)
	require.NoError(t, err)

	r := out.Result()
	assert.Equal(t, model.LevelNotSignificant, r.AmountBaseLevel)
	assert.Equal(t, model.LevelSignificant, r.AmountDisplayLevel)

	// The scored B total takes the unadjusted base level.
	assert.InDelta(t, 1, r.SubAveragesB[0], 1e-9)
	assert.InDelta(t, 5.0, r.TotalB, 1e-9)
}
