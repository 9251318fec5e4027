// Package storage provides the data persistence layer for the benefit engine.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/soundcu/benefit-engine/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPerk        = errors.New("invalid perk")
	ErrInvalidAlert       = errors.New("invalid alert")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTransaction)
	}
	if txn.MemberID == "" {
		return fmt.Errorf("%w: missing member id", ErrInvalidTransaction)
	}
	if txn.MerchantName == "" {
		return fmt.Errorf("%w: missing merchant name", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AmountMinorUnits < 0 {
		return fmt.Errorf("%w: negative amount", ErrInvalidTransaction)
	}
	return nil
}

// validatePerk validates a perk before persisting it.
func validatePerk(perk *model.Perk) error {
	if perk == nil {
		return fmt.Errorf("%w: perk", ErrNilParameter)
	}
	if perk.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPerk)
	}
	if perk.MemberID == "" {
		return fmt.Errorf("%w: missing member id", ErrInvalidPerk)
	}
	if perk.Title == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidPerk)
	}
	if perk.ValueLowMinorUnits < 0 || perk.ValueHighMinorUnits < perk.ValueLowMinorUnits {
		return fmt.Errorf("%w: bad value range", ErrInvalidPerk)
	}
	return nil
}

// validateAlert validates an alert before persisting it.
func validateAlert(alert *model.Alert) error {
	if alert.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidAlert)
	}
	if alert.MemberID == "" {
		return fmt.Errorf("%w: missing member id", ErrInvalidAlert)
	}
	if alert.TransactionID == "" {
		return fmt.Errorf("%w: missing transaction id", ErrInvalidAlert)
	}
	if alert.EstimatedSavingsMinorUnits < 0 {
		return fmt.Errorf("%w: negative savings estimate", ErrInvalidAlert)
	}
	if alert.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing created_at", ErrInvalidAlert)
	}
	return nil
}
