package engine

import (
	"fmt"

	"github.com/sells-group/risk-cli/internal/model"
)

// Amount band boundaries, lower bound inclusive of the higher band.
const (
	amountBand2 = 50_000
	amountBand3 = 250_000
	amountBand4 = 1_000_000
)

// LevelFromAmount maps an operation amount to its automatic risk level.
func LevelFromAmount(amount float64) model.Level {
	switch {
	case amount < amountBand2:
		return model.LevelNotSignificant
	case amount < amountBand3:
		return model.LevelLowSignificance
	case amount < amountBand4:
		return model.LevelSignificant
	default:
		return model.LevelHighSignificance
	}
}

// DisplayAmountLevel is the informational amount level shown to the
// professional: base plus one per aggravating flag, capped at 4. The
// scored total never uses this value; it always takes the unadjusted
// base from LevelFromAmount.
func DisplayAmountLevel(base model.Level, flags model.AmountFlags) model.Level {
	if base == model.LevelUnset {
		return model.LevelUnset
	}
	adjusted := base + model.Level(flags.Count())
	if adjusted > model.LevelHighSignificance {
		adjusted = model.LevelHighSignificance
	}
	return adjusted
}

// amountRange describes the band an amount falls in, for breakdown output.
func amountRange(lvl model.Level) string {
	switch lvl {
	case model.LevelNotSignificant:
		return "< 50,000"
	case model.LevelLowSignificance:
		return "50,000 - 250,000"
	case model.LevelSignificant:
		return "250,000 - 1,000,000"
	default:
		return "> 1,000,000"
	}
}

// thresholdNote returns the due-diligence threshold advisory for an
// unspecified amount; specified amounts carry no note.
func thresholdNote(amount *float64, threshold float64) string {
	if amount == nil {
		return fmt.Sprintf("amount not specified - no threshold anomaly against %.2f", threshold)
	}
	return ""
}
