// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single financial transaction supplied by an
// upstream account-linking collaborator. Transactions are immutable once
// ingested; a reversal is represented by a correction record, never an edit.
type Transaction struct {
	Date             time.Time
	ID               string
	MemberID         string
	MerchantName     string // Cleaned merchant name
	MerchantLocation string
	CardID           string
	RawCategoryHint  string // Category hint from the source, if any
	Hash             string
	AmountMinorUnits int64 // Always cents; never a float

	// Category assigned by the classifier. Empty until classification.
	Category Category
}

// GenerateHash fingerprints the transaction's content. Not an identity:
// two distinct purchases can legitimately share a hash (same merchant,
// amount, and day). Ingestion deduplicates by id; the hash only helps
// spot likely re-imports across statement files.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%d:%s:%s:%s",
		t.Date.UTC().Format("2006-01-02"),
		t.AmountMinorUnits,
		t.MerchantName,
		t.CardID,
		t.MemberID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
