package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
)

func testPerk(id, memberID string) *model.Perk {
	return &model.Perk{
		ID:                  id,
		MemberID:            memberID,
		Title:               "Cell Phone Protection",
		SourceName:          "Sound Cash Back Card",
		Source:              model.PerkSourceCard,
		Category:            model.CategoryUtilities,
		ValueLowMinorUnits:  5000,
		ValueHighMinorUnits: 20000,
		CreatedAt:           testDate.AddDate(0, -6, 0),
	}
}

func TestSaveAndGetPerk(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SavePerk(ctx, testPerk("perk-1", "member-1")))

	perk, err := store.GetPerk(ctx, "perk-1")
	require.NoError(t, err)
	assert.Equal(t, "Cell Phone Protection", perk.Title)
	assert.Equal(t, model.PerkSourceCard, perk.Source)
	assert.Equal(t, int64(5000), perk.ValueLowMinorUnits)
	assert.True(t, perk.Active())
}

func TestSavePerkUpserts(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	perk := testPerk("perk-1", "member-1")
	require.NoError(t, store.SavePerk(ctx, perk))

	perk.Title = "Cell Phone Protection Plus"
	perk.ValueHighMinorUnits = 30000
	require.NoError(t, store.SavePerk(ctx, perk))

	saved, err := store.GetPerk(ctx, "perk-1")
	require.NoError(t, err)
	assert.Equal(t, "Cell Phone Protection Plus", saved.Title)
	assert.Equal(t, int64(30000), saved.ValueHighMinorUnits)

	perks, err := store.GetPerksByMember(ctx, "member-1")
	require.NoError(t, err)
	assert.Len(t, perks, 1)
}

func TestGetPerkNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetPerk(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRetirePerk(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SavePerk(ctx, testPerk("perk-1", "member-1")))
	require.NoError(t, store.RetirePerk(ctx, "perk-1", testDate))

	perk, err := store.GetPerk(ctx, "perk-1")
	require.NoError(t, err)
	assert.False(t, perk.Active())

	// Retiring again is a no-op, not an error.
	require.NoError(t, store.RetirePerk(ctx, "perk-1", testDate.Add(time.Hour)))
	perk, err = store.GetPerk(ctx, "perk-1")
	require.NoError(t, err)
	assert.True(t, perk.RetiredAt.Equal(testDate))

	// Retiring a missing perk reports not found.
	err = store.RetirePerk(ctx, "missing", testDate)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRecordPerkUsageIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SavePerk(ctx, testPerk("perk-1", "member-1")))

	event := model.PerkUsageEvent{
		PerkID:        "perk-1",
		TransactionID: "txn-1",
		Timestamp:     testDate,
	}
	require.NoError(t, store.RecordPerkUsage(ctx, event))

	// Exact resubmission is a no-op.
	require.NoError(t, store.RecordPerkUsage(ctx, event))

	// Same natural key with a different timestamp conflicts.
	event.Timestamp = testDate.Add(time.Hour)
	err := store.RecordPerkUsage(ctx, event)
	assert.ErrorIs(t, err, common.ErrConflict)

	lastUsed, err := store.GetPerkLastUsed(ctx, "member-1")
	require.NoError(t, err)
	assert.True(t, lastUsed["perk-1"].Equal(testDate))
}

func TestRecordPerkUsageManualEventsAccumulate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SavePerk(ctx, testPerk("perk-1", "member-1")))

	// Manual events carry no transaction id and are never deduplicated.
	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
			PerkID:    "perk-1",
			Timestamp: testDate.Add(time.Duration(i) * time.Hour),
		}))
	}

	lastUsed, err := store.GetPerkLastUsed(ctx, "member-1")
	require.NoError(t, err)
	assert.True(t, lastUsed["perk-1"].Equal(testDate.Add(2*time.Hour)))
}

func TestGetPerkIDsUsedInWindow(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SavePerk(ctx, testPerk("perk-recent", "member-1")))
	require.NoError(t, store.SavePerk(ctx, testPerk("perk-old", "member-1")))
	require.NoError(t, store.SavePerk(ctx, testPerk("perk-never", "member-1")))

	require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID: "perk-recent", Timestamp: testDate.AddDate(0, 0, -3),
	}))
	require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID: "perk-old", Timestamp: testDate.AddDate(0, -3, 0),
	}))

	used, err := store.GetPerkIDsUsedInWindow(ctx, "member-1", testDate.AddDate(0, 0, -30), testDate)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"perk-recent": {}}, used)

	ever, err := store.GetPerkIDsEverUsed(ctx, "member-1")
	require.NoError(t, err)
	assert.Len(t, ever, 2)
	assert.Contains(t, ever, "perk-old")
}

func TestPerkUsageScopedToMember(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SavePerk(ctx, testPerk("perk-1", "member-1")))
	require.NoError(t, store.SavePerk(ctx, testPerk("perk-2", "member-2")))
	require.NoError(t, store.RecordPerkUsage(ctx, model.PerkUsageEvent{
		PerkID: "perk-2", Timestamp: testDate,
	}))

	lastUsed, err := store.GetPerkLastUsed(ctx, "member-1")
	require.NoError(t, err)
	assert.Empty(t, lastUsed)
}
