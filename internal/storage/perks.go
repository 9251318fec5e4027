package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
)

// SavePerk inserts or updates a perk definition.
func (s *SQLiteStorage) SavePerk(ctx context.Context, perk *model.Perk) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePerk(perk); err != nil {
		return err
	}

	createdAt := perk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var retiredAt any
	if !perk.RetiredAt.IsZero() {
		retiredAt = perk.RetiredAt.UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO perks (id, member_id, title, description, source, source_name,
			category, value_low_minor, value_high_minor, created_at, retired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			value_low_minor = excluded.value_low_minor,
			value_high_minor = excluded.value_high_minor,
			retired_at = excluded.retired_at
	`, perk.ID, perk.MemberID, perk.Title, perk.Description, string(perk.Source),
		perk.SourceName, string(perk.Category), perk.ValueLowMinorUnits,
		perk.ValueHighMinorUnits, createdAt, retiredAt)
	if err != nil {
		return fmt.Errorf("failed to save perk: %w", err)
	}
	return nil
}

// GetPerk retrieves a perk by id.
func (s *SQLiteStorage) GetPerk(ctx context.Context, perkID string) (*model.Perk, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(perkID, "perkID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, member_id, title, description, source, source_name,
		       category, value_low_minor, value_high_minor, created_at, retired_at
		FROM perks WHERE id = ?
	`, perkID)

	perk, err := scanPerk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: perk %s", common.ErrNotFound, perkID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get perk: %w", err)
	}
	return perk, nil
}

// GetPerksByMember returns all perks defined for a member, including
// retired ones; callers filter on Active as needed.
func (s *SQLiteStorage) GetPerksByMember(ctx context.Context, memberID string) ([]model.Perk, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, member_id, title, description, source, source_name,
		       category, value_low_minor, value_high_minor, created_at, retired_at
		FROM perks WHERE member_id = ?
		ORDER BY created_at, id
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query perks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var perks []model.Perk
	for rows.Next() {
		perk, scanErr := scanPerk(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan perk: %w", scanErr)
		}
		perks = append(perks, *perk)
	}
	return perks, rows.Err()
}

// RetirePerk marks a perk as retired when its card or membership link is
// removed. Retiring an already-retired perk is a no-op.
func (s *SQLiteStorage) RetirePerk(ctx context.Context, perkID string, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(perkID, "perkID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE perks SET retired_at = ? WHERE id = ? AND retired_at IS NULL
	`, at.UTC(), perkID)
	if err != nil {
		return fmt.Errorf("failed to retire perk: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check retire result: %w", err)
	}
	if rows == 0 {
		// Distinguish missing from already retired.
		if _, getErr := s.GetPerk(ctx, perkID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// RecordPerkUsage appends a usage event. The log is append-only and
// deduplicated on (perk_id, transaction_id): an identical resubmission is
// a no-op, while the same key with a different timestamp is a conflict.
func (s *SQLiteStorage) RecordPerkUsage(ctx context.Context, event model.PerkUsageEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(event.PerkID, "perkID"); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidPerk)
	}

	var txnID any
	if event.TransactionID != "" {
		txnID = event.TransactionID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO perk_usage_events (perk_id, transaction_id, used_at)
		VALUES (?, ?, ?)
	`, event.PerkID, txnID, event.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to record perk usage: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check usage insert: %w", err)
	}
	if rows > 0 || event.TransactionID == "" {
		return nil
	}

	// Ignored insert: natural key already present. Identical timestamps
	// make the retry idempotent; differing ones signal conflicting data.
	var existing time.Time
	err = s.db.QueryRowContext(ctx, `
		SELECT used_at FROM perk_usage_events
		WHERE perk_id = ? AND transaction_id = ?
	`, event.PerkID, event.TransactionID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check existing usage: %w", err)
	}

	if !existing.Equal(event.Timestamp.UTC()) {
		return fmt.Errorf("%w: usage for perk %s transaction %s already recorded at %v",
			common.ErrConflict, event.PerkID, event.TransactionID, existing)
	}
	return nil
}

// GetPerkLastUsed maps a member's perk ids to their most recent usage time.
func (s *SQLiteStorage) GetPerkLastUsed(ctx context.Context, memberID string) (map[string]time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.perk_id, MAX(e.used_at)
		FROM perk_usage_events e
		JOIN perks p ON p.id = e.perk_id
		WHERE p.member_id = ?
		GROUP BY e.perk_id
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query perk usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	lastUsed := make(map[string]time.Time)
	for rows.Next() {
		var perkID string
		var usedAt time.Time
		if scanErr := rows.Scan(&perkID, &usedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan perk usage: %w", scanErr)
		}
		lastUsed[perkID] = usedAt
	}
	return lastUsed, rows.Err()
}

// GetPerkIDsUsedInWindow returns the member's perks with at least one
// usage event inside the window.
func (s *SQLiteStorage) GetPerkIDsUsedInWindow(ctx context.Context, memberID string, start, end time.Time) (map[string]struct{}, error) {
	return s.queryPerkIDs(ctx, memberID, `
		SELECT DISTINCT e.perk_id
		FROM perk_usage_events e
		JOIN perks p ON p.id = e.perk_id
		WHERE p.member_id = ? AND e.used_at >= ? AND e.used_at <= ?
	`, memberID, start.UTC(), end.UTC())
}

// GetPerkIDsEverUsed returns the member's perks with any usage event at all.
func (s *SQLiteStorage) GetPerkIDsEverUsed(ctx context.Context, memberID string) (map[string]struct{}, error) {
	return s.queryPerkIDs(ctx, memberID, `
		SELECT DISTINCT e.perk_id
		FROM perk_usage_events e
		JOIN perks p ON p.id = e.perk_id
		WHERE p.member_id = ?
	`, memberID)
}

func (s *SQLiteStorage) queryPerkIDs(ctx context.Context, memberID, query string, args ...any) (map[string]struct{}, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query perk ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan perk id: %w", scanErr)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func scanPerk(row rowScanner) (*model.Perk, error) {
	var perk model.Perk
	var source, category string
	var description, sourceName sql.NullString
	var retiredAt sql.NullTime
	if err := row.Scan(
		&perk.ID,
		&perk.MemberID,
		&perk.Title,
		&description,
		&source,
		&sourceName,
		&category,
		&perk.ValueLowMinorUnits,
		&perk.ValueHighMinorUnits,
		&perk.CreatedAt,
		&retiredAt,
	); err != nil {
		return nil, err
	}
	perk.Description = description.String
	perk.SourceName = sourceName.String
	perk.Source = model.PerkSource(source)
	perk.Category = model.Category(category)
	if retiredAt.Valid {
		perk.RetiredAt = retiredAt.Time
	}
	return &perk, nil
}
