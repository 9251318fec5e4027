package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
	"github.com/soundcu/benefit-engine/internal/service"
)

// SaveTransactions saves transactions, deduplicating by id. Transactions
// are immutable so duplicates are ignored rather than overwritten. Returns
// the transactions that were actually inserted.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransactions(transactions); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, date, member_id, merchant_name, merchant_location,
			amount_minor, card_id, raw_category_hint, category
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var inserted []model.Transaction
	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		res, execErr := stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.Date.UTC(),
			txn.MemberID,
			txn.MerchantName,
			txn.MerchantLocation,
			txn.AmountMinorUnits,
			txn.CardID,
			txn.RawCategoryHint,
			string(txn.Category),
		)
		if execErr != nil {
			return nil, fmt.Errorf("failed to save transaction %s: %w", txn.ID, execErr)
		}

		rows, raErr := res.RowsAffected()
		if raErr != nil {
			return nil, fmt.Errorf("failed to check insert result: %w", raErr)
		}
		if rows > 0 {
			inserted = append(inserted, txn)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, nil
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, hash, date, member_id, merchant_name, merchant_location,
		       amount_minor, card_id, raw_category_hint, category
		FROM transactions WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetTransactions retrieves transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	if filter.MemberID != "" {
		conditions = append(conditions, "member_id = ?")
		args = append(args, filter.MemberID)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.EndDate.UTC())
	}

	query := `
		SELECT id, hash, date, member_id, merchant_name, merchant_location,
		       amount_minor, card_id, raw_category_hint, category
		FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// GetCategorySpend aggregates a member's spend by category over a window.
func (s *SQLiteStorage) GetCategorySpend(ctx context.Context, memberID string, start, end time.Time) (map[model.Category]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %v after %v", ErrInvalidDateRange, start, end)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount_minor)
		FROM transactions
		WHERE member_id = ? AND date >= ? AND date <= ? AND category != ''
		GROUP BY category
	`, memberID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query category spend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	spend := make(map[model.Category]int64)
	for rows.Next() {
		var category string
		var total int64
		if scanErr := rows.Scan(&category, &total); scanErr != nil {
			return nil, fmt.Errorf("failed to scan category spend: %w", scanErr)
		}
		spend[model.Category(category)] = total
	}
	return spend, rows.Err()
}

// GetCardUsageByCategory reports which cards a member used in a category,
// most used first, ties broken by most recent use.
func (s *SQLiteStorage) GetCardUsageByCategory(ctx context.Context, memberID string, category model.Category, start, end time.Time) ([]service.CardUsage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT card_id, COUNT(*), MAX(date)
		FROM transactions
		WHERE member_id = ? AND category = ? AND date >= ? AND date <= ? AND card_id != ''
		GROUP BY card_id
		ORDER BY COUNT(*) DESC, MAX(date) DESC, card_id
	`, memberID, string(category), start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query card usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var usage []service.CardUsage
	for rows.Next() {
		var u service.CardUsage
		if scanErr := rows.Scan(&u.CardID, &u.Count, &u.LastUsed); scanErr != nil {
			return nil, fmt.Errorf("failed to scan card usage: %w", scanErr)
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}

// GetTotalSpend sums a member's spend over a window.
func (s *SQLiteStorage) GetTotalSpend(ctx context.Context, memberID string, start, end time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return 0, err
	}

	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(amount_minor) FROM transactions
		WHERE member_id = ? AND date >= ? AND date <= ?
	`, memberID, start.UTC(), end.UTC()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to query total spend: %w", err)
	}
	return total.Int64, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var category string
	if err := row.Scan(
		&txn.ID,
		&txn.Hash,
		&txn.Date,
		&txn.MemberID,
		&txn.MerchantName,
		&txn.MerchantLocation,
		&txn.AmountMinorUnits,
		&txn.CardID,
		&txn.RawCategoryHint,
		&category,
	); err != nil {
		return nil, err
	}
	txn.Category = model.Category(category)
	return &txn, nil
}
