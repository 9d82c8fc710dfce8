package model

import "time"

// SectionResult is the per-section breakdown line of an evaluation.
// Value holds the matched text for automatic sections; Score is the
// section average for manual sections or the derived level for automatic
// ones, as it entered the group total.
type SectionResult struct {
	Name      string  `json:"name"`
	Value     string  `json:"value,omitempty"`
	Score     float64 `json:"score"`
	Automatic bool    `json:"automatic"`
}

// EscalationDeclaration records the professional's explicit acknowledgement
// of the enhanced-due-diligence obligations.
type EscalationDeclaration struct {
	Accepted          bool      `json:"accepted"`
	Timestamp         time.Time `json:"timestamp"`
	ScoreAtAcceptance float64   `json:"score_at_acceptance"`
	BandAtAcceptance  Band      `json:"band_at_acceptance"`
}

// EvaluationResult is the outcome of one evaluate call. It is deterministic
// for identical inputs: the escalation declaration is attached only when the
// gate is resolved, never during composition.
type EvaluationResult struct {
	EvaluationDate      string   `json:"evaluation_date"`
	Client              string   `json:"client"`
	BeneficialOwner     string   `json:"beneficial_owner"`
	Purpose             string   `json:"purpose"`
	ActivityDescription string   `json:"activity_description"`
	Professional        string   `json:"professional"`
	Service             string   `json:"service"`
	Amount              *float64 `json:"amount"`

	TableAOnly bool `json:"table_a_only"`
	// CountA is the A-section divisor in table-A-only mode, zero otherwise.
	CountA int `json:"count_a,omitempty"`

	TotalA        float64         `json:"total_a"`
	TotalB        float64         `json:"total_b"`
	SubAveragesA  []float64       `json:"sub_averages_a"`
	SubAveragesB  []float64       `json:"sub_averages_b"`
	SectionsA     []SectionResult `json:"sections_a"`
	SectionsB     []SectionResult `json:"sections_b"`
	SpecificRisk  float64         `json:"specific_risk"`
	InherentRisk  Level           `json:"inherent_risk"`
	WeightedSum   float64         `json:"weighted_sum"`
	Band          Band            `json:"band"`

	// AmountBaseLevel feeds the scored total; AmountDisplayLevel is the
	// informational base-plus-aggravators value capped at 4.
	AmountBaseLevel    Level `json:"amount_base_level"`
	AmountDisplayLevel Level `json:"amount_display_level"`

	// ThresholdNote is the due-diligence amount-threshold advisory.
	ThresholdNote string `json:"threshold_note,omitempty"`

	Escalation *EscalationDeclaration `json:"escalation,omitempty"`
}
