package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
)

// DetectAlerts evaluates a single classified transaction for savings
// opportunities. A transaction can raise at most one alert per kind; a
// missed-card alert always precedes a missed-perk alert for the same
// transaction.
func (e *Engine) DetectAlerts(ctx context.Context, txn *model.Transaction) ([]model.Alert, error) {
	var alerts []model.Alert

	cardAlert, err := e.detectMissedCard(ctx, txn)
	if err != nil {
		return nil, err
	}
	if cardAlert != nil {
		alerts = append(alerts, *cardAlert)
	}

	perkAlert, err := e.detectMissedPerk(ctx, txn)
	if err != nil {
		return nil, err
	}
	if perkAlert != nil {
		alerts = append(alerts, *perkAlert)
	}

	if budgetAlert := e.detectBudgetWarning(txn); budgetAlert != nil {
		alerts = append(alerts, *budgetAlert)
	}

	return alerts, nil
}

// detectMissedCard compares the reward actually earned against the best
// a linked card would have earned on the same spend.
func (e *Engine) detectMissedCard(ctx context.Context, txn *model.Transaction) (*model.Alert, error) {
	linked, err := e.store.GetMemberCards(ctx, txn.MemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member cards: %w", err)
	}
	if len(linked) == 0 {
		return nil, nil
	}

	var actual int64
	actual, err = e.registry.RewardFor(txn.CardID, txn.Category, txn.AmountMinorUnits, txn.Date)
	if errors.Is(err, common.ErrUnknownCard) {
		// Debit cards and cards from other institutions earn nothing
		// we can model. The missed reward is the full best reward.
		common.LogWarn("Transaction card not in reward registry", common.Fields{
			"card_id":        txn.CardID,
			"transaction_id": txn.ID,
		})
		actual = 0
	} else if err != nil {
		return nil, err
	}

	bestCardName := ""
	best := actual
	for _, card := range linked {
		if card.CardID == txn.CardID {
			continue
		}
		product, err := e.registry.Product(card.CardID)
		if errors.Is(err, common.ErrUnknownCard) {
			continue
		}
		if err != nil {
			return nil, err
		}
		reward, err := e.registry.RewardFor(card.CardID, txn.Category, txn.AmountMinorUnits, txn.Date)
		if err != nil {
			return nil, err
		}
		if reward > best {
			best = reward
			bestCardName = product.Name
		}
	}

	if best <= actual {
		return nil, nil
	}

	return &model.Alert{
		ID:                         uuid.NewString(),
		MemberID:                   txn.MemberID,
		TransactionID:              txn.ID,
		Kind:                       model.AlertMissedCard,
		Status:                     model.StatusPending,
		CreatedAt:                  txn.Date,
		EstimatedSavingsMinorUnits: best - actual,
		Suggestion: fmt.Sprintf("Use %s for %s purchases like %s",
			bestCardName, txn.Category, txn.MerchantName),
	}, nil
}

// detectMissedPerk flags a transaction whose category has an eligible,
// unused perk. Only the most valuable such perk is surfaced; equal values
// break by perk id so repeated ingests of the same data pick the same perk.
func (e *Engine) detectMissedPerk(ctx context.Context, txn *model.Transaction) (*model.Alert, error) {
	if txn.Category == "" || txn.Category == model.CategoryOther {
		return nil, nil
	}

	unused, err := e.catalog.UnusedForCategory(ctx, txn.MemberID, txn.Category, txn.Date, e.cfg.StaleAfter)
	if err != nil {
		return nil, fmt.Errorf("failed to load unused perks: %w", err)
	}
	if len(unused) == 0 {
		return nil, nil
	}

	pick := unused[0]
	for _, perk := range unused[1:] {
		if perk.PointEstimate(e.cfg.EstimateMode) > pick.PointEstimate(e.cfg.EstimateMode) {
			pick = perk
		}
	}

	return &model.Alert{
		ID:                         uuid.NewString(),
		MemberID:                   txn.MemberID,
		TransactionID:              txn.ID,
		PerkID:                     pick.ID,
		Kind:                       model.AlertMissedPerk,
		Status:                     model.StatusPending,
		CreatedAt:                  txn.Date,
		EstimatedSavingsMinorUnits: pick.PointEstimate(e.cfg.EstimateMode),
		Suggestion: fmt.Sprintf("You have an unused benefit: %s (%s)",
			pick.Title, pick.SourceName),
	}, nil
}

// detectBudgetWarning flags a single transaction at or above the
// configured threshold. A zero threshold disables the check.
func (e *Engine) detectBudgetWarning(txn *model.Transaction) *model.Alert {
	threshold := e.cfg.BudgetWarnThresholdMinorUnits
	if threshold <= 0 || txn.AmountMinorUnits < threshold {
		return nil
	}
	return &model.Alert{
		ID:            uuid.NewString(),
		MemberID:      txn.MemberID,
		TransactionID: txn.ID,
		Kind:          model.AlertBudgetWarning,
		Status:        model.StatusPending,
		CreatedAt:     txn.Date,
		Suggestion: fmt.Sprintf("Large %s purchase at %s",
			txn.Category, txn.MerchantName),
	}
}
