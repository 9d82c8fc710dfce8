// Package model defines the shared data structures for AML risk profiling.
package model

import "fmt"

// Level is a risk level on the 1-4 regulatory scale. LevelUnset marks an
// amount or geography that could not be derived automatically.
type Level int

// Risk levels.
const (
	LevelUnset            Level = 0
	LevelNotSignificant   Level = 1
	LevelLowSignificance  Level = 2
	LevelSignificant      Level = 3
	LevelHighSignificance Level = 4
)

// Valid reports whether l is inside the 1-4 scale.
func (l Level) Valid() bool {
	return l >= LevelNotSignificant && l <= LevelHighSignificance
}

// String returns the regulatory label for the level.
func (l Level) String() string {
	switch l {
	case LevelNotSignificant:
		return "not significant"
	case LevelLowSignificance:
		return "low significance"
	case LevelSignificant:
		return "fairly significant"
	case LevelHighSignificance:
		return "very significant"
	default:
		return fmt.Sprintf("unset(%d)", int(l))
	}
}

// Band is the due-diligence tier mapped from the weighted sum.
type Band string

// Due-diligence bands, inclusive upper bounds 2.5 and 3.5.
const (
	BandSimplified Band = "NOT SIGNIFICANT - simplified due diligence"
	BandOrdinary   Band = "FAIRLY SIGNIFICANT - ordinary due diligence"
	BandEnhanced   Band = "VERY SIGNIFICANT - enhanced due diligence"
)

// BandFor maps a weighted sum to its due-diligence band.
func BandFor(weightedSum float64) Band {
	switch {
	case weightedSum <= 2.5:
		return BandSimplified
	case weightedSum <= 3.5:
		return BandOrdinary
	default:
		return BandEnhanced
	}
}
