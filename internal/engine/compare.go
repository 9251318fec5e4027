package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
)

// CompareCards replays the member's category spend over the trailing
// window through every registered card product and ranks them by
// effective cost against a rewardless debit baseline. Effective cost is
// spend minus rewards plus the prorated annual fee for the window.
func (e *Engine) CompareCards(ctx context.Context, memberID string, asOf time.Time) ([]model.CardComparison, error) {
	if memberID == "" {
		return nil, fmt.Errorf("%w: member id is required", common.ErrValidation)
	}

	start := asOf.Add(-e.cfg.Window)
	spend, err := e.store.GetCategorySpend(ctx, memberID, start, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load category spend: %w", err)
	}

	var total int64
	for _, amount := range spend {
		total += amount
	}

	windowFee := func(annual int64) int64 {
		// Prorate the annual fee to the comparison window.
		return annual * int64(e.cfg.Window/time.Hour) / (365 * 24)
	}

	comparisons := []model.CardComparison{{
		CardID:                  "debit",
		CardName:                "Debit Card",
		TotalSpentMinorUnits:    total,
		EffectiveCostMinorUnits: total,
	}}

	for _, product := range e.registry.Products() {
		var rewards int64
		for category, amount := range spend {
			if amount <= 0 {
				continue
			}
			reward, err := e.registry.RewardFor(product.ID, category, amount, asOf)
			if err != nil {
				return nil, err
			}
			rewards += reward
		}
		fee := windowFee(product.AnnualFeeMinorUnits)
		comparisons = append(comparisons, model.CardComparison{
			CardID:                   product.ID,
			CardName:                 product.Name,
			TotalSpentMinorUnits:     total,
			RewardsEarnedMinorUnits:  rewards,
			AnnualFeeMinorUnits:      fee,
			EffectiveCostMinorUnits:  total - rewards + fee,
			SavingsVsDebitMinorUnits: rewards - fee,
		})
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		if comparisons[i].EffectiveCostMinorUnits != comparisons[j].EffectiveCostMinorUnits {
			return comparisons[i].EffectiveCostMinorUnits < comparisons[j].EffectiveCostMinorUnits
		}
		return comparisons[i].CardName < comparisons[j].CardName
	})
	return comparisons, nil
}
