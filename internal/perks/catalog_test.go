package perks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
	"github.com/soundcu/benefit-engine/internal/storage"
)

var asOf = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

const staleAfter = 90 * 24 * time.Hour

func newTestCatalog(t *testing.T) (*Catalog, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(t.TempDir() + "/benefit.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return NewCatalog(store), store
}

func addPerk(t *testing.T, store *storage.SQLiteStorage, id string, category model.Category) {
	t.Helper()
	require.NoError(t, store.SavePerk(context.Background(), &model.Perk{
		ID:                  id,
		MemberID:            "member-1",
		Title:               "Perk " + id,
		SourceName:          "Sound Membership",
		Source:              model.PerkSourceMembership,
		Category:            category,
		ValueLowMinorUnits:  5000,
		ValueHighMinorUnits: 20000,
		CreatedAt:           asOf.AddDate(-1, 0, 0),
	}))
}

func TestUnusedPerks(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	addPerk(t, store, "perk-never", model.CategoryDining)
	addPerk(t, store, "perk-recent", model.CategoryDining)
	addPerk(t, store, "perk-stale", model.CategoryTravel)
	addPerk(t, store, "perk-retired", model.CategoryDining)

	require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID: "perk-recent", Timestamp: asOf.AddDate(0, 0, -7),
	}))
	require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID: "perk-stale", Timestamp: asOf.AddDate(0, -6, 0),
	}))
	require.NoError(t, store.RetirePerk(ctx, "perk-retired", asOf.AddDate(0, 0, -1)))

	unused, err := catalog.UnusedPerks(ctx, "member-1", asOf, staleAfter)
	require.NoError(t, err)
	require.Len(t, unused, 2)

	// Sorted by id: never-used and stale perks qualify, recently used and
	// retired ones do not.
	assert.Equal(t, "perk-never", unused[0].ID)
	assert.Equal(t, "perk-stale", unused[1].ID)
}

func TestUnusedForCategory(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	addPerk(t, store, "perk-dining", model.CategoryDining)
	addPerk(t, store, "perk-travel", model.CategoryTravel)

	matching, err := catalog.UnusedForCategory(ctx, "member-1", model.CategoryDining, asOf, staleAfter)
	require.NoError(t, err)
	require.Len(t, matching, 1)
	assert.Equal(t, "perk-dining", matching[0].ID)
}

func TestUtilizationRate(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	start := asOf.AddDate(0, 0, -30)

	// No perks at all reports zero, not NaN.
	rate, err := catalog.UtilizationRate(ctx, "member-1", start, asOf)
	require.NoError(t, err)
	assert.Zero(t, rate)

	addPerk(t, store, "perk-a", model.CategoryDining)
	addPerk(t, store, "perk-b", model.CategoryTravel)
	addPerk(t, store, "perk-c", model.CategoryGas)
	addPerk(t, store, "perk-d", model.CategoryGas)
	require.NoError(t, store.RetirePerk(ctx, "perk-d", asOf.AddDate(0, 0, -1)))

	require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID: "perk-a", Timestamp: asOf.AddDate(0, 0, -3),
	}))
	// Usage outside the window does not count toward utilization.
	require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID: "perk-b", Timestamp: asOf.AddDate(0, -3, 0),
	}))

	rate, err = catalog.UtilizationRate(ctx, "member-1", start, asOf)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, rate, 0.0001)
}

func TestDiscoveryRate(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	addPerk(t, store, "perk-a", model.CategoryDining)
	addPerk(t, store, "perk-b", model.CategoryTravel)

	rate, err := catalog.DiscoveryRate(ctx, "member-1")
	require.NoError(t, err)
	assert.Zero(t, rate)

	// Any historical usage counts for discovery, however old.
	require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID: "perk-a", Timestamp: asOf.AddDate(-1, 0, 0),
	}))

	rate, err = catalog.DiscoveryRate(ctx, "member-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, rate, 0.0001)
}

func TestRecordUsage(t *testing.T) {
	catalog, store := newTestCatalog(t)
	ctx := context.Background()

	addPerk(t, store, "perk-a", model.CategoryDining)

	require.NoError(t, catalog.RecordUsage(ctx, "perk-a", asOf, "txn-1"))
	require.NoError(t, catalog.RecordUsage(ctx, "perk-a", asOf, "txn-1"))

	lastUsed, err := store.GetPerkLastUsed(ctx, "member-1")
	require.NoError(t, err)
	assert.True(t, lastUsed["perk-a"].Equal(asOf))

	err = catalog.RecordUsage(ctx, "perk-missing", asOf, "")
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = catalog.RecordUsage(ctx, "", asOf, "")
	assert.ErrorIs(t, err, common.ErrValidation)

	err = catalog.RecordUsage(ctx, "perk-a", time.Time{}, "")
	assert.ErrorIs(t, err, common.ErrValidation)
}
