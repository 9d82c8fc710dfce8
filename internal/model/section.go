package model

// Group tags a section as client-related (A) or operation-related (B).
type Group string

// Section groups.
const (
	GroupClient    Group = "A"
	GroupOperation Group = "B"
)

// RiskFactor is one selectable factor inside a manual section. Level is
// meaningful only when Applicable is true.
type RiskFactor struct {
	Description string `json:"description" yaml:"description"`
	Applicable  bool   `json:"applicable" yaml:"applicable"`
	Level       Level  `json:"level" yaml:"level"`
}

// ManualSection is a named group of risk factors selected by the professional.
type ManualSection struct {
	Name    string       `json:"name" yaml:"name"`
	Factors []RiskFactor `json:"factors" yaml:"factors"`
}

// AutoSection is a section whose level was derived automatically from the
// inputs (legal nature, geography, amount).
type AutoSection struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
	Level Level  `json:"level" yaml:"level"`
}

// RegistryEntry is a legal-entity classification with a pre-assigned level.
type RegistryEntry struct {
	Name       string `json:"name" yaml:"name"`
	Level      Level  `json:"level" yaml:"level"`
	Descriptor string `json:"descriptor" yaml:"descriptor"`
}

// ServicePrestation is a professional service with its baseline (inherent)
// risk level. TableAOnly services skip the operation-side evaluation.
type ServicePrestation struct {
	Name          string `json:"name" yaml:"name"`
	BaselineLevel Level  `json:"baseline_level" yaml:"baseline_level"`
	TableAOnly    bool   `json:"table_a_only" yaml:"table_a_only"`
}

// NatureSuggestion is one ranked match from the legal-entity search.
// Level is LevelUnset for client-registry entries, which carry no
// pre-assigned classification.
type NatureSuggestion struct {
	Name             string `json:"name"`
	Level            Level  `json:"level"`
	Descriptor       string `json:"descriptor"`
	IsClientRegistry bool   `json:"is_client_registry"`
}

// LocationSuggestion is one ranked match from the geography search.
type LocationSuggestion struct {
	Name  string `json:"name"`
	Level Level  `json:"level"`
}
