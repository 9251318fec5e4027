package model

import "time"

// Score dimension names shown in the breakdown.
const (
	DimensionPerkUsage         = "Perk Usage"
	DimensionCardOptimization  = "Card Optimization"
	DimensionSpendingAwareness = "Spending Awareness"
	DimensionBenefitDiscovery  = "Benefit Discovery"
)

// DimensionStatus buckets a dimension's ratio for display.
type DimensionStatus string

const (
	// StatusGreat means the dimension ratio is 0.8 or above.
	StatusGreat DimensionStatus = "great"
	// StatusGood means the dimension ratio is 0.6 or above.
	StatusGood DimensionStatus = "good"
	// StatusNeedsWork means the dimension ratio is below 0.6.
	StatusNeedsWork DimensionStatus = "needs-work"
)

// ScoreDimension is one line of the SoundScore breakdown.
type ScoreDimension struct {
	Name      string          `json:"name"`
	Status    DimensionStatus `json:"status"`
	Points    int             `json:"points"`
	MaxPoints int             `json:"max_points"`
}

// SoundScoreSnapshot is the composite 0-100 view of how well a member is
// exploiting their available benefits. Derived on demand, never persisted.
type SoundScoreSnapshot struct {
	AsOf                       time.Time        `json:"as_of"`
	MemberID                   string           `json:"member_id"`
	Grade                      string           `json:"grade"`
	Breakdown                  []ScoreDimension `json:"breakdown"`
	Score                      int              `json:"score"`
	RecoveredSavingsMinorUnits int64            `json:"recovered_savings_minor_units"` // acted alerts in the window
}

// GradeFor maps a composite score to its display grade.
func GradeFor(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Great"
	case score >= 70:
		return "Good"
	case score >= 60:
		return "Fair"
	default:
		return "Needs Work"
	}
}
