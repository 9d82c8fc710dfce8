package model

// AmountFlags are the three aggravating checks on the operation amount.
// They adjust the displayed B.3 level only; the scored total always uses
// the unadjusted amount-derived base level.
type AmountFlags struct {
	Incongruous bool `json:"incongruous" yaml:"incongruous"`
	Splitting   bool `json:"splitting" yaml:"splitting"`
	Other       bool `json:"other" yaml:"other"`
}

// Count returns how many aggravating flags are set.
func (f AmountFlags) Count() int {
	n := 0
	if f.Incongruous {
		n++
	}
	if f.Splitting {
		n++
	}
	if f.Other {
		n++
	}
	return n
}

// EvaluationInputs is the immutable snapshot of a client file at the moment
// the evaluation runs. The engine never mutates it.
type EvaluationInputs struct {
	EvaluationDate      string `json:"evaluation_date" yaml:"evaluation_date"`
	Client              string `json:"client" yaml:"client"`
	BeneficialOwner     string `json:"beneficial_owner" yaml:"beneficial_owner"`
	Purpose             string `json:"purpose" yaml:"purpose"`
	ActivityDescription string `json:"activity_description" yaml:"activity_description"`
	Professional        string `json:"professional" yaml:"professional"`

	// Service must name a configured ServicePrestation.
	Service string `json:"service" yaml:"service"`

	// Amount is nil when the operation amount was not specified.
	Amount      *float64    `json:"amount" yaml:"amount"`
	AmountFlags AmountFlags `json:"amount_flags" yaml:"amount_flags"`

	// NatureText is the free-text legal-nature input fed to the matcher.
	// NatureManualLevel is the fallback category level selected by hand
	// when auto-detection finds nothing (LevelUnset when none selected).
	NatureText        string `json:"nature_text" yaml:"nature_text"`
	NatureManualLevel Level  `json:"nature_manual_level" yaml:"nature_manual_level"`

	ClientArea      string `json:"client_area" yaml:"client_area"`
	DestinationArea string `json:"destination_area" yaml:"destination_area"`

	SectionsA []ManualSection `json:"sections_a" yaml:"sections_a"`
	SectionsB []ManualSection `json:"sections_b" yaml:"sections_b"`
}
