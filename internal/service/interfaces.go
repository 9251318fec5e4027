// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/soundcu/benefit-engine/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	MemberID  string
	Limit     int
	Offset    int
}

// CardUsage summarizes how often a member used one card in a category.
type CardUsage struct {
	LastUsed time.Time
	CardID   string
	Count    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations. SaveTransactions is idempotent by id and
	// returns only the transactions actually inserted, so callers can
	// detect alerts for new records without re-alerting on duplicates.
	SaveTransactions(ctx context.Context, transactions []model.Transaction) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetCategorySpend(ctx context.Context, memberID string, start, end time.Time) (map[model.Category]int64, error)
	GetCardUsageByCategory(ctx context.Context, memberID string, category model.Category, start, end time.Time) ([]CardUsage, error)
	GetTotalSpend(ctx context.Context, memberID string, start, end time.Time) (int64, error)

	// Member card operations
	LinkCard(ctx context.Context, card *model.MemberCard) error
	GetMemberCards(ctx context.Context, memberID string) ([]model.MemberCard, error)

	// Perk operations
	SavePerk(ctx context.Context, perk *model.Perk) error
	GetPerk(ctx context.Context, perkID string) (*model.Perk, error)
	GetPerksByMember(ctx context.Context, memberID string) ([]model.Perk, error)
	RetirePerk(ctx context.Context, perkID string, at time.Time) error

	// Perk usage log. RecordPerkUsage is append-only and idempotent on
	// (perkID, transactionID); an identical resubmission is a no-op while
	// the same key with a different timestamp reports a conflict.
	RecordPerkUsage(ctx context.Context, event model.PerkUsageEvent) error
	GetPerkLastUsed(ctx context.Context, memberID string) (map[string]time.Time, error)
	GetPerkIDsUsedInWindow(ctx context.Context, memberID string, start, end time.Time) (map[string]struct{}, error)
	GetPerkIDsEverUsed(ctx context.Context, memberID string) (map[string]struct{}, error)

	// Alert operations. Status transitions are guarded so concurrent
	// idempotent retries never move an alert out of a terminal state.
	SaveAlerts(ctx context.Context, alerts []model.Alert) error
	GetAlert(ctx context.Context, alertID string) (*model.Alert, error)
	GetAlertsByMember(ctx context.Context, memberID string, since time.Time) ([]model.Alert, error)
	MarkAlertActed(ctx context.Context, alertID string, at time.Time) error
	GetPendingAlertsBefore(ctx context.Context, cutoff time.Time) ([]model.Alert, error)
	MarkAlertMissed(ctx context.Context, alertID string) error
	GetRecoveredSavings(ctx context.Context, memberID string, start, end time.Time) (int64, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// IngestStats shows the results of an ingestion run.
type IngestStats struct {
	Duration       time.Duration
	TotalReceived  int
	NewlyIngested  int
	Duplicates     int
	AlertsEmitted  int
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}
