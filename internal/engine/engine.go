// Package engine composes the regulatory risk score for a client file:
// automatic section derivation, group aggregation, the weighted inherent/
// specific formula, and the escalation gate on the result.
package engine

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/risk-cli/internal/aggregate"
	"github.com/sells-group/risk-cli/internal/config"
	"github.com/sells-group/risk-cli/internal/escalate"
	"github.com/sells-group/risk-cli/internal/model"
	"github.com/sells-group/risk-cli/internal/registry"
)

// Automatic section names.
const (
	sectionNature      = "A.1 - Legal nature"
	sectionClientArea  = "A.4 - Client geographic area"
	sectionAmount      = "B.3 - Operation amount"
	sectionDestination = "B.6 - Destination geographic area"
)

// defaultNatureLevel applies when neither auto-detection nor the manual
// category produced a legal-nature level.
const defaultNatureLevel = model.LevelSignificant

// Engine runs one synchronous evaluation over an immutable inputs
// snapshot. It holds only read-only reference data, so evaluations are
// independent and idempotent.
type Engine struct {
	ref     *config.Reference
	matcher *registry.Matcher
	now     func() time.Time
}

// New builds an Engine. A nil matcher is constructed from the reference
// data; a nil clock defaults to time.Now.
func New(ref *config.Reference, matcher *registry.Matcher, now func() time.Time) *Engine {
	if matcher == nil {
		matcher = registry.NewMatcher(ref)
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{ref: ref, matcher: matcher, now: now}
}

// Matcher exposes the engine's matcher for search front-ends.
func (e *Engine) Matcher() *registry.Matcher {
	return e.matcher
}

// Outcome pairs the composed result with its escalation gate. The result
// is obtainable through Final only once the gate is terminal and not
// aborted.
type Outcome struct {
	result model.EvaluationResult
	gate   *escalate.Gate
}

// Gate returns the escalation gate.
func (o *Outcome) Gate() *escalate.Gate {
	return o.gate
}

// Result returns the composed result regardless of gate state, for
// display purposes. Exporters must use Final instead.
func (o *Outcome) Result() model.EvaluationResult {
	return o.result
}

// Resolve applies an escalation decision and, on acceptance, attaches the
// declaration to the result.
func (o *Outcome) Resolve(d escalate.Decision) (escalate.State, error) {
	state, err := o.gate.Resolve(d)
	if err != nil {
		return state, err
	}
	if state == escalate.Accepted {
		o.result.Escalation = o.gate.Declaration()
	}
	return state, nil
}

// Final returns the finalized, immutable result. A pending gate blocks
// finalization; an aborted gate discards the evaluation in full.
func (o *Outcome) Final() (*model.EvaluationResult, error) {
	switch o.gate.State() {
	case escalate.NotRequired, escalate.Accepted:
		r := o.result
		return &r, nil
	case escalate.PendingAcknowledgement:
		return nil, eris.New("engine: escalation acknowledgement pending")
	default:
		return nil, eris.New("engine: evaluation aborted, result discarded")
	}
}

// Evaluate validates the inputs snapshot and composes the risk score.
// Identical inputs produce identical results.
func (e *Engine) Evaluate(in model.EvaluationInputs) (*Outcome, error) {
	if err := e.validate(in); err != nil {
		return nil, err
	}

	svc, _ := e.ref.ServiceByName(in.Service)

	autoA := e.autoSectionsA(in)
	totalA, subA := aggregate.AggregateSections(in.SectionsA, autoA)

	result := model.EvaluationResult{
		EvaluationDate:      in.EvaluationDate,
		Client:              in.Client,
		BeneficialOwner:     in.BeneficialOwner,
		Purpose:             in.Purpose,
		ActivityDescription: in.ActivityDescription,
		Professional:        in.Professional,
		Service:             svc.Name,
		Amount:              in.Amount,
		TableAOnly:          svc.TableAOnly,
		TotalA:              totalA,
		SubAveragesA:        subA,
		SectionsA:           sectionResults(in.SectionsA, autoA),
		InherentRisk:        svc.BaselineLevel,
		ThresholdNote:       thresholdNote(in.Amount, e.ref.DueDiligenceThreshold),
	}

	if in.Amount != nil {
		result.AmountBaseLevel = LevelFromAmount(*in.Amount)
		result.AmountDisplayLevel = DisplayAmountLevel(result.AmountBaseLevel, in.AmountFlags)
	}

	if svc.TableAOnly {
		// The B side is never evaluated. The divisor counts A sections:
		// automatic ones plus the configured manual definitions.
		result.CountA = len(autoA) + len(e.ref.SectionsA)
		result.SpecificRisk = specificRiskTableAOnly(totalA, result.CountA)
	} else {
		autoB := e.autoSectionsB(in)
		totalB, subB := aggregate.AggregateSections(in.SectionsB, autoB)
		result.TotalB = totalB
		result.SubAveragesB = subB
		result.SectionsB = sectionResults(in.SectionsB, autoB)
		result.SpecificRisk = specificRiskStandard(totalA, totalB)
	}

	result.WeightedSum = weightedSum(result.InherentRisk, result.SpecificRisk)
	result.Band = model.BandFor(result.WeightedSum)

	gate := escalate.NewGate(result.WeightedSum, result.Band, e.now)

	zap.L().Info("engine: evaluation composed",
		zap.String("client", result.Client),
		zap.Bool("table_a_only", result.TableAOnly),
		zap.Float64("total_a", result.TotalA),
		zap.Float64("total_b", result.TotalB),
		zap.Float64("specific_risk", result.SpecificRisk),
		zap.Int("inherent_risk", int(result.InherentRisk)),
		zap.Float64("weighted_sum", result.WeightedSum),
		zap.String("gate", gate.State().String()),
	)

	return &Outcome{result: result, gate: gate}, nil
}

// validate reports every field failure at once, never an opaque error.
func (e *Engine) validate(in model.EvaluationInputs) error {
	verr := &model.ValidationError{}

	if in.EvaluationDate == "" {
		verr.Add("evaluation_date", "missing evaluation date")
	}
	if in.Client == "" {
		verr.Add("client", "missing client name")
	}
	if _, ok := e.ref.ServiceByName(in.Service); !ok {
		verr.Add("service", fmt.Sprintf("unknown professional service %q", in.Service))
	}
	if in.NatureManualLevel != model.LevelUnset && !in.NatureManualLevel.Valid() {
		verr.Add("nature_manual_level", fmt.Sprintf("level %d outside 1-4", in.NatureManualLevel))
	}
	validateSections(verr, "sections_a", in.SectionsA)
	validateSections(verr, "sections_b", in.SectionsB)

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validateSections(verr *model.ValidationError, field string, sections []model.ManualSection) {
	for i, sec := range sections {
		for j, f := range sec.Factors {
			if f.Applicable && !f.Level.Valid() {
				verr.Add(
					fmt.Sprintf("%s[%d].factors[%d].level", field, i, j),
					fmt.Sprintf("level %d outside 1-4", f.Level),
				)
			}
		}
	}
}

// autoSectionsA derives the automatic client-side sections: legal nature
// and client geography.
func (e *Engine) autoSectionsA(in model.EvaluationInputs) []model.AutoSection {
	nature := model.AutoSection{Name: sectionNature, Value: in.NatureText}
	if lvl, ok := e.matcher.DetectNatureLevel(in.NatureText); ok {
		nature.Level = lvl
	} else if in.NatureManualLevel.Valid() {
		nature.Level = in.NatureManualLevel
	} else {
		nature.Level = defaultNatureLevel
		nature.Value = in.NatureText + " (default level, verify manually)"
	}

	return []model.AutoSection{
		nature,
		geographySection(sectionClientArea, in.ClientArea, e.matcher),
	}
}

// autoSectionsB derives the automatic operation-side sections: amount and
// destination geography.
func (e *Engine) autoSectionsB(in model.EvaluationInputs) []model.AutoSection {
	amount := model.AutoSection{Name: sectionAmount, Value: "not specified", Level: model.LevelUnset}
	if in.Amount != nil {
		base := LevelFromAmount(*in.Amount)
		amount.Level = base
		amount.Value = fmt.Sprintf("%.2f (%s)", *in.Amount, amountRange(base))
	}

	return []model.AutoSection{
		amount,
		geographySection(sectionDestination, in.DestinationArea, e.matcher),
	}
}

// geographySection maps a free-text place to its automatic section. An
// empty or unmatched place falls back to level 1 so an unknown geography
// never blocks the evaluation.
func geographySection(name, place string, m *registry.Matcher) model.AutoSection {
	sec := model.AutoSection{Name: name, Value: "not specified", Level: model.LevelNotSignificant}
	if place == "" {
		return sec
	}
	sec.Value = place
	if lvl := m.LevelOf(place); lvl != model.LevelUnset {
		sec.Level = lvl
	}
	return sec
}

// sectionResults builds the per-section breakdown, automatic sections
// first, matching the sub-averages ordering.
func sectionResults(manual []model.ManualSection, auto []model.AutoSection) []model.SectionResult {
	out := make([]model.SectionResult, 0, len(auto)+len(manual))
	for _, sec := range auto {
		out = append(out, model.SectionResult{
			Name:      sec.Name,
			Value:     sec.Value,
			Score:     float64(sec.Level),
			Automatic: true,
		})
	}
	for _, sec := range manual {
		out = append(out, model.SectionResult{
			Name:  sec.Name,
			Score: aggregate.SectionAverage(sec),
		})
	}
	return out
}
