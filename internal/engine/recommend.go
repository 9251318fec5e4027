package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
)

// Recommend computes the best card per spend category over the trailing
// window ending at asOf. Categories with no spend in the window are
// omitted. Results follow the canonical category order so repeated calls
// over the same data produce the same slice.
func (e *Engine) Recommend(ctx context.Context, memberID string, asOf time.Time) ([]model.RecommendationResult, error) {
	if memberID == "" {
		return nil, fmt.Errorf("%w: member id is required", common.ErrValidation)
	}

	start := asOf.Add(-e.cfg.Window)

	spend, err := e.store.GetCategorySpend(ctx, memberID, start, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load category spend: %w", err)
	}
	if len(spend) == 0 {
		return nil, nil
	}

	linked, err := e.store.GetMemberCards(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member cards: %w", err)
	}

	var results []model.RecommendationResult
	for _, category := range model.AllCategories() {
		amount, ok := spend[category]
		if !ok || amount <= 0 {
			continue
		}

		currentCardID, err := e.currentCardFor(ctx, memberID, category, linked, start, asOf)
		if err != nil {
			return nil, err
		}

		result, err := e.bestCardFor(category, currentCardID, amount, linked, asOf)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// currentCardFor resolves the card the member currently puts a category
// on: an explicit designation wins, otherwise the card most used for that
// category in the window.
func (e *Engine) currentCardFor(ctx context.Context, memberID string, category model.Category, linked []model.MemberCard, start, end time.Time) (string, error) {
	for _, card := range linked {
		if card.DefaultCategory == category {
			return card.CardID, nil
		}
	}

	usage, err := e.store.GetCardUsageByCategory(ctx, memberID, category, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to load card usage: %w", err)
	}
	if len(usage) == 0 {
		return "", nil
	}
	// Usage is ordered by count, then recency, then card id.
	return usage[0].CardID, nil
}

// bestCardFor evaluates every candidate card for a category's spend. The
// current card is always a candidate, so the potential reward can never
// fall below the current one.
func (e *Engine) bestCardFor(category model.Category, currentCardID string, spend int64, linked []model.MemberCard, asOf time.Time) (model.RecommendationResult, error) {
	result := model.RecommendationResult{
		Category:               category,
		CurrentCardID:          currentCardID,
		MonthlySpendMinorUnits: spend,
	}

	if currentCardID != "" {
		reward, err := e.registry.RewardFor(currentCardID, category, spend, asOf)
		switch {
		case errors.Is(err, common.ErrUnknownCard):
			// A card outside the registry (a debit card, or one from
			// another institution) earns nothing we can model.
			common.LogWarn("Current card not in reward registry", common.Fields{
				"card_id":  currentCardID,
				"category": category,
			})
		case err != nil:
			return result, err
		default:
			result.CurrentRewardMinorUnits = reward
		}
		if product, err := e.registry.Product(currentCardID); err == nil {
			result.CurrentCardName = product.Name
		}
	}

	// Start from the current card so ties keep the member where they are.
	result.RecommendedCardID = currentCardID
	result.RecommendedCardName = result.CurrentCardName
	result.PotentialRewardMinorUnits = result.CurrentRewardMinorUnits

	for _, card := range linked {
		if card.CardID == currentCardID {
			continue
		}
		product, err := e.registry.Product(card.CardID)
		if errors.Is(err, common.ErrUnknownCard) {
			continue
		}
		if err != nil {
			return result, err
		}
		reward, err := e.registry.RewardFor(card.CardID, category, spend, asOf)
		if err != nil {
			return result, err
		}
		if e.betterCandidate(reward, product, &result) {
			result.RecommendedCardID = card.CardID
			result.RecommendedCardName = product.Name
			result.PotentialRewardMinorUnits = reward
		}
	}
	return result, nil
}

// betterCandidate decides whether a candidate beats the incumbent
// recommendation. Higher reward wins; on equal reward a lower annual fee
// wins; a remaining tie goes to the lexicographically smaller name so the
// ordering is stable.
func (e *Engine) betterCandidate(reward int64, product *model.CardProduct, incumbent *model.RecommendationResult) bool {
	if reward != incumbent.PotentialRewardMinorUnits {
		return reward > incumbent.PotentialRewardMinorUnits
	}
	if incumbent.RecommendedCardID == "" {
		return false
	}
	current, err := e.registry.Product(incumbent.RecommendedCardID)
	if err != nil {
		// The incumbent is unknown to the registry; any known card with
		// an equal reward is a safer recommendation.
		return true
	}
	if product.AnnualFeeMinorUnits != current.AnnualFeeMinorUnits {
		return product.AnnualFeeMinorUnits < current.AnnualFeeMinorUnits
	}
	return product.Name < current.Name
}
