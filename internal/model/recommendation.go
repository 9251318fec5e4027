package model

// RecommendationResult compares the card a member uses for a category
// against the best card in their wallet. A value object: recomputed per
// query window, never stored or mutated.
type RecommendationResult struct {
	Category                  Category
	CurrentCardID             string
	CurrentCardName           string
	RecommendedCardID         string
	RecommendedCardName       string
	MonthlySpendMinorUnits    int64
	CurrentRewardMinorUnits   int64
	PotentialRewardMinorUnits int64
}

// DeltaMinorUnits is the additional reward available by switching cards.
// Never negative: the recommended card is at least as good as the current one.
func (r *RecommendationResult) DeltaMinorUnits() int64 {
	return r.PotentialRewardMinorUnits - r.CurrentRewardMinorUnits
}

// Optimized reports whether the category is already on the best card.
func (r *RecommendationResult) Optimized() bool {
	return r.DeltaMinorUnits() == 0
}

// CardComparison summarizes a card's effective cost over a window versus
// paying with a rewardless debit card.
type CardComparison struct {
	CardID                   string `json:"card_id"`
	CardName                 string `json:"card_name"`
	TotalSpentMinorUnits     int64  `json:"total_spent_minor_units"`
	RewardsEarnedMinorUnits  int64  `json:"rewards_earned_minor_units"`
	AnnualFeeMinorUnits      int64  `json:"annual_fee_minor_units"`
	EffectiveCostMinorUnits  int64  `json:"effective_cost_minor_units"`
	SavingsVsDebitMinorUnits int64  `json:"savings_vs_debit_minor_units"`
}
