package engine

import (
	"math"

	"github.com/sells-group/risk-cli/internal/model"
)

// standardDivisor is the maximum theoretical contribution across both
// groups. It is a fixed constant: the divisor never tracks how many
// sections are actually populated.
const standardDivisor = 10

// Weighting of the two risk components.
const (
	inherentWeight = 0.3
	specificWeight = 0.7
)

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// specificRiskStandard computes the specific risk in standard mode.
func specificRiskStandard(totalA, totalB float64) float64 {
	return round2((totalA + totalB) / standardDivisor)
}

// specificRiskTableAOnly computes the specific risk when the service is
// table-A-only. countA counts A sections (automatic plus manual
// definitions), not individual factors.
func specificRiskTableAOnly(totalA float64, countA int) float64 {
	return round2(totalA / float64(countA))
}

// weightedSum combines inherent and specific risk, rounding once after
// the weighted addition.
func weightedSum(inherent model.Level, specific float64) float64 {
	return round2(float64(inherent)*inherentWeight + specific*specificWeight)
}
