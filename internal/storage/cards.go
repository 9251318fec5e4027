package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/soundcu/benefit-engine/internal/model"
)

// LinkCard records that a member holds a card product, optionally with a
// default-category designation. Re-linking updates the designation.
func (s *SQLiteStorage) LinkCard(ctx context.Context, card *model.MemberCard) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if card == nil {
		return fmt.Errorf("%w: card", ErrNilParameter)
	}
	if err := validateString(card.MemberID, "memberID"); err != nil {
		return err
	}
	if err := validateString(card.CardID, "cardID"); err != nil {
		return err
	}

	linkedAt := card.LinkedAt
	if linkedAt.IsZero() {
		linkedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO member_cards (member_id, card_id, default_category, linked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(member_id, card_id)
		DO UPDATE SET default_category = excluded.default_category
	`, card.MemberID, card.CardID, string(card.DefaultCategory), linkedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to link card: %w", err)
	}
	return nil
}

// GetMemberCards returns the cards linked to a member, oldest link first.
func (s *SQLiteStorage) GetMemberCards(ctx context.Context, memberID string) ([]model.MemberCard, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(memberID, "memberID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT member_id, card_id, default_category, linked_at
		FROM member_cards
		WHERE member_id = ?
		ORDER BY linked_at, card_id
	`, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query member cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []model.MemberCard
	for rows.Next() {
		var card model.MemberCard
		var category string
		if scanErr := rows.Scan(&card.MemberID, &card.CardID, &category, &card.LinkedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan member card: %w", scanErr)
		}
		card.DefaultCategory = model.Category(category)
		cards = append(cards, card)
	}
	return cards, rows.Err()
}
