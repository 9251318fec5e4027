package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundcu/benefit-engine/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testTransaction(id, memberID string, date time.Time, amount int64) model.Transaction {
	txn := model.Transaction{
		ID:               id,
		Date:             date,
		MemberID:         memberID,
		MerchantName:     "SAFEWAY #0441",
		MerchantLocation: "TACOMA WA",
		CardID:           "card-1",
		AmountMinorUnits: amount,
		Category:         model.CategoryGroceries,
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, ExpectedSchemaVersion, version)
}
