// Package aggregate computes section averages and group totals for the
// specific-risk tables.
package aggregate

import (
	"math"

	"github.com/sells-group/risk-cli/internal/model"
)

// SectionAverage returns the mean level of the factors marked applicable,
// rounded to one decimal place. A section with no applicable factor scores
// zero.
func SectionAverage(s model.ManualSection) float64 {
	var sum, n float64
	for _, f := range s.Factors {
		if !f.Applicable {
			continue
		}
		sum += float64(f.Level)
		n++
	}
	if n == 0 {
		return 0.0
	}
	return math.Round(sum/n*10) / 10
}

// AggregateSections merges the automatic section levels with the manual
// section averages of one group. The total is their sum; the returned
// sub-averages list automatic values first, then manual averages, each in
// input order.
func AggregateSections(manual []model.ManualSection, auto []model.AutoSection) (float64, []float64) {
	total := 0.0
	subAverages := make([]float64, 0, len(auto)+len(manual))

	for _, sec := range auto {
		v := float64(sec.Level)
		subAverages = append(subAverages, v)
		total += v
	}
	for _, sec := range manual {
		avg := SectionAverage(sec)
		subAverages = append(subAverages, avg)
		total += avg
	}

	return total, subAverages
}
