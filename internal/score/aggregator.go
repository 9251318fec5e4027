// Package score computes the composite SoundScore from benefit signals.
package score

import (
	"math"

	"github.com/soundcu/benefit-engine/internal/model"
)

// Weights holds the max points per dimension. The stock configuration is
// 25 points each for a 100-point scale, but the split is configuration,
// not a constant.
type Weights struct {
	PerkUsage         int
	CardOptimization  int
	SpendingAwareness int
	BenefitDiscovery  int
}

// DefaultWeights returns the stock 25/25/25/25 split.
func DefaultWeights() Weights {
	return Weights{
		PerkUsage:         25,
		CardOptimization:  25,
		SpendingAwareness: 25,
		BenefitDiscovery:  25,
	}
}

// Inputs are the four dimension ratios, each meaningful on [0, 1].
// Out-of-range values are clamped, so callers may pass raw signals.
type Inputs struct {
	PerkUsage         float64
	CardOptimization  float64
	SpendingAwareness float64
	BenefitDiscovery  float64
}

// Aggregate converts dimension ratios into a 0-100 score with a breakdown.
// Monotonic: raising any input ratio never lowers the total.
func Aggregate(inputs Inputs, weights Weights) (int, []model.ScoreDimension) {
	breakdown := []model.ScoreDimension{
		dimension(model.DimensionPerkUsage, inputs.PerkUsage, weights.PerkUsage),
		dimension(model.DimensionCardOptimization, inputs.CardOptimization, weights.CardOptimization),
		dimension(model.DimensionSpendingAwareness, inputs.SpendingAwareness, weights.SpendingAwareness),
		dimension(model.DimensionBenefitDiscovery, inputs.BenefitDiscovery, weights.BenefitDiscovery),
	}

	total := 0
	for _, d := range breakdown {
		total += d.Points
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return total, breakdown
}

func dimension(name string, ratio float64, maxPoints int) model.ScoreDimension {
	ratio = clamp(ratio)
	return model.ScoreDimension{
		Name:      name,
		Points:    int(math.Round(ratio * float64(maxPoints))),
		MaxPoints: maxPoints,
		Status:    statusFor(ratio),
	}
}

func statusFor(ratio float64) model.DimensionStatus {
	switch {
	case ratio >= 0.8:
		return model.StatusGreat
	case ratio >= 0.6:
		return model.StatusGood
	default:
		return model.StatusNeedsWork
	}
}

func clamp(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// AwarenessRatio derives the spending-awareness signal from current-period
// spend versus the trailing average: spending at or below the average
// scores 1, double the average scores 0. With no trailing history the
// signal is neutral (1).
func AwarenessRatio(currentSpendMinorUnits, trailingAvgMinorUnits int64) float64 {
	if trailingAvgMinorUnits <= 0 {
		return 1
	}
	r := float64(currentSpendMinorUnits) / float64(trailingAvgMinorUnits)
	return clamp(2 - r)
}
