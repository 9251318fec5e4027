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

// SaveAlerts persists a batch of new alerts.
func (s *SQLiteStorage) SaveAlerts(ctx context.Context, alerts []model.Alert) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(alerts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alerts (id, member_id, transaction_id, perk_id, kind,
			suggestion, estimated_savings_minor, status, created_at, acted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range alerts {
		alert := &alerts[i]
		if err := validateAlert(alert); err != nil {
			return err
		}

		var perkID any
		if alert.PerkID != "" {
			perkID = alert.PerkID
		}

		if _, execErr := stmt.ExecContext(ctx,
			alert.ID,
			alert.MemberID,
			alert.TransactionID,
			perkID,
			string(alert.Kind),
			alert.Suggestion,
			alert.EstimatedSavingsMinorUnits,
			string(alert.Status),
			alert.CreatedAt.UTC(),
		); execErr != nil {
			return fmt.Errorf("failed to save alert %s: %w", alert.ID, execErr)
		}
	}

	return tx.Commit()
}

// GetAlert retrieves an alert by id.
func (s *SQLiteStorage) GetAlert(ctx context.Context, alertID string) (*model.Alert, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(alertID, "alertID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, member_id, transaction_id, perk_id, kind, suggestion,
		       estimated_savings_minor, status, created_at, acted_at
		FROM alerts WHERE id = ?
	`, alertID)

	alert, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: alert %s", common.ErrNotFound, alertID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

// GetAlertsByMember returns a member's alerts created at or after since,
// newest first. Alerts from one transaction share a created_at, so the
// tiebreak follows the detector's emission order: missed card, then
// missed perk, then budget warning.
func (s *SQLiteStorage) GetAlertsByMember(ctx context.Context, memberID string, since time.Time) ([]model.Alert, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, member_id, transaction_id, perk_id, kind, suggestion,
		       estimated_savings_minor, status, created_at, acted_at
		FROM alerts
		WHERE member_id = ? AND created_at >= ?
		ORDER BY created_at DESC,
			CASE kind
				WHEN 'MISSED_CARD' THEN 0
				WHEN 'MISSED_PERK' THEN 1
				ELSE 2
			END,
			id
	`, memberID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []model.Alert
	for rows.Next() {
		alert, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", scanErr)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// MarkAlertActed transitions a PENDING alert to ACTED. The update is
// guarded on status so an alert already in a terminal state reports a
// conflict instead of being moved.
func (s *SQLiteStorage) MarkAlertActed(ctx context.Context, alertID string, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(alertID, "alertID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET status = ?, acted_at = ?
		WHERE id = ? AND status = ?
	`, string(model.StatusActed), at.UTC(), alertID, string(model.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to act on alert: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows > 0 {
		return nil
	}

	alert, err := s.GetAlert(ctx, alertID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: alert %s is already %s", common.ErrConflict, alertID, alert.Status)
}

// GetPendingAlertsBefore returns PENDING alerts created before the cutoff,
// oldest first, for the expiry sweep.
func (s *SQLiteStorage) GetPendingAlertsBefore(ctx context.Context, cutoff time.Time) ([]model.Alert, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, member_id, transaction_id, perk_id, kind, suggestion,
		       estimated_savings_minor, status, created_at, acted_at
		FROM alerts
		WHERE status = ? AND created_at < ?
		ORDER BY created_at, id
	`, string(model.StatusPending), cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query pending alerts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var alerts []model.Alert
	for rows.Next() {
		alert, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", scanErr)
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// MarkAlertMissed transitions a PENDING alert to MISSED. Idempotent: the
// guarded update makes re-running the sweep on a terminal alert a no-op.
func (s *SQLiteStorage) MarkAlertMissed(ctx context.Context, alertID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(alertID, "alertID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE alerts SET status = ?
		WHERE id = ? AND status = ?
	`, string(model.StatusMissed), alertID, string(model.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark alert missed: %w", err)
	}
	return nil
}

// GetRecoveredSavings sums the estimated savings of alerts the member
// acted on inside the window.
func (s *SQLiteStorage) GetRecoveredSavings(ctx context.Context, memberID string, start, end time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return 0, err
	}

	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(estimated_savings_minor) FROM alerts
		WHERE member_id = ? AND status = ? AND acted_at >= ? AND acted_at <= ?
	`, memberID, string(model.StatusActed), start.UTC(), end.UTC()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to query recovered savings: %w", err)
	}
	return total.Int64, nil
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var alert model.Alert
	var kind, status string
	var perkID, suggestion sql.NullString
	var actedAt sql.NullTime
	if err := row.Scan(
		&alert.ID,
		&alert.MemberID,
		&alert.TransactionID,
		&perkID,
		&kind,
		&suggestion,
		&alert.EstimatedSavingsMinorUnits,
		&status,
		&alert.CreatedAt,
		&actedAt,
	); err != nil {
		return nil, err
	}
	alert.PerkID = perkID.String
	alert.Suggestion = suggestion.String
	alert.Kind = model.AlertKind(kind)
	alert.Status = model.AlertStatus(status)
	if actedAt.Valid {
		alert.ActedAt = actedAt.Time
	}
	return &alert, nil
}
