// Package perks tracks a member's perk catalog and utilization.
package perks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
	"github.com/soundcu/benefit-engine/internal/service"
)

// Catalog answers perk eligibility and utilization questions over the
// append-only usage log.
type Catalog struct {
	store service.Storage
}

// NewCatalog creates a catalog backed by the given storage.
func NewCatalog(store service.Storage) *Catalog {
	return &Catalog{store: store}
}

// UnusedPerks returns the member's active perks with no usage event within
// staleAfter of asOf. Perks never used at all always qualify.
func (c *Catalog) UnusedPerks(ctx context.Context, memberID string, asOf time.Time, staleAfter time.Duration) ([]model.Perk, error) {
	perks, err := c.store.GetPerksByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load perks: %w", err)
	}

	lastUsed, err := c.store.GetPerkLastUsed(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load perk usage: %w", err)
	}

	cutoff := asOf.Add(-staleAfter)

	var unused []model.Perk
	for _, perk := range perks {
		if !perk.Active() {
			continue
		}
		last, ok := lastUsed[perk.ID]
		if !ok || last.Before(cutoff) {
			unused = append(unused, perk)
		}
	}

	sort.Slice(unused, func(i, j int) bool { return unused[i].ID < unused[j].ID })
	return unused, nil
}

// UnusedForCategory returns the member's unused perks applying to one
// spending category, for the alert detector.
func (c *Catalog) UnusedForCategory(ctx context.Context, memberID string, category model.Category, asOf time.Time, staleAfter time.Duration) ([]model.Perk, error) {
	unused, err := c.UnusedPerks(ctx, memberID, asOf, staleAfter)
	if err != nil {
		return nil, err
	}

	var matching []model.Perk
	for _, perk := range unused {
		if perk.Category == category {
			matching = append(matching, perk)
		}
	}
	return matching, nil
}

// UtilizationRate reports count(perks used in window) / count(eligible
// perks). By convention the rate is 0 when no perks are eligible, never
// NaN: an empty catalog means nothing is being utilized.
func (c *Catalog) UtilizationRate(ctx context.Context, memberID string, start, end time.Time) (float64, error) {
	perks, err := c.store.GetPerksByMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to load perks: %w", err)
	}

	eligible := 0
	for _, perk := range perks {
		if perk.Active() {
			eligible++
		}
	}
	if eligible == 0 {
		return 0, nil
	}

	used, err := c.store.GetPerkIDsUsedInWindow(ctx, memberID, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to load perk usage: %w", err)
	}

	return float64(len(used)) / float64(eligible), nil
}

// DiscoveryRate reports the fraction of the member's perks ever used at
// least once, distinct from current-window utilization. 0 when the member
// has no perks.
func (c *Catalog) DiscoveryRate(ctx context.Context, memberID string) (float64, error) {
	perks, err := c.store.GetPerksByMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to load perks: %w", err)
	}

	eligible := 0
	for _, perk := range perks {
		if perk.Active() {
			eligible++
		}
	}
	if eligible == 0 {
		return 0, nil
	}

	everUsed, err := c.store.GetPerkIDsEverUsed(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to load perk usage: %w", err)
	}

	return float64(len(everUsed)) / float64(eligible), nil
}

// RecordUsage appends a usage event for the perk. Idempotent: submitting
// the same (perkID, transactionID) pair twice changes nothing.
func (c *Catalog) RecordUsage(ctx context.Context, perkID string, timestamp time.Time, transactionID string) error {
	if perkID == "" {
		return fmt.Errorf("%w: perkID is required", common.ErrValidation)
	}
	if timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", common.ErrValidation)
	}

	if _, err := c.store.GetPerk(ctx, perkID); err != nil {
		return err
	}

	return c.store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID:        perkID,
		Timestamp:     timestamp,
		TransactionID: transactionID,
	})
}
