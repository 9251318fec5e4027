// Package engine orchestrates classification, reward evaluation, perk
// tracking, and alerting into the benefit-optimization engine.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundcu/benefit-engine/internal/classification"
	"github.com/soundcu/benefit-engine/internal/config"
	"github.com/soundcu/benefit-engine/internal/model"
	"github.com/soundcu/benefit-engine/internal/perks"
	"github.com/soundcu/benefit-engine/internal/rewards"
	"github.com/soundcu/benefit-engine/internal/score"
	"github.com/soundcu/benefit-engine/internal/service"
)

// MetricsRecorder receives engine events for instrumentation. A nil
// recorder disables instrumentation.
type MetricsRecorder interface {
	TransactionsIngested(count, duplicates int)
	AlertEmitted(kind model.AlertKind)
	AlertsSwept(count int)
	ScoreComputed(score int)
	IngestDuration(d time.Duration)
}

// Engine is the core benefit-optimization engine. Queries are pure
// computations over the storage snapshot; the only mutations are
// ingestion, the perk usage log, and alert state transitions.
type Engine struct {
	store      service.Storage
	classifier *classification.Classifier
	registry   *rewards.Registry
	catalog    *perks.Catalog
	metrics    MetricsRecorder
	cfg        config.Engine
}

// New creates an engine with the given dependencies.
func New(store service.Storage, classifier *classification.Classifier, registry *rewards.Registry, cfg config.Engine) *Engine {
	return &Engine{
		store:      store,
		classifier: classifier,
		registry:   registry,
		catalog:    perks.NewCatalog(store),
		cfg:        cfg,
	}
}

// WithMetrics attaches a metrics recorder.
func (e *Engine) WithMetrics(m MetricsRecorder) *Engine {
	e.metrics = m
	return e
}

// Catalog exposes the perk catalog built over the engine's storage.
func (e *Engine) Catalog() *perks.Catalog {
	return e.catalog
}

// IngestTransactions classifies and stores a batch of transactions, then
// runs the savings detector over the newly inserted ones. Idempotent by
// transaction id: duplicates are dropped and never re-alerted.
func (e *Engine) IngestTransactions(ctx context.Context, transactions []model.Transaction) (service.IngestStats, error) {
	start := time.Now()
	stats := service.IngestStats{TotalReceived: len(transactions)}

	if len(transactions) == 0 {
		return stats, nil
	}

	classified := make([]model.Transaction, len(transactions))
	for i, txn := range transactions {
		txn.Category = e.classifier.Classify(txn)
		if txn.Category == model.CategoryOther && txn.MerchantName != "" {
			slog.Debug("Transaction not matched by any pattern",
				"transaction_id", txn.ID,
				"merchant", txn.MerchantName)
		}
		classified[i] = txn
	}

	inserted, err := e.store.SaveTransactions(ctx, classified)
	if err != nil {
		return stats, fmt.Errorf("failed to save transactions: %w", err)
	}

	stats.NewlyIngested = len(inserted)
	stats.Duplicates = stats.TotalReceived - stats.NewlyIngested

	var alerts []model.Alert
	for _, txn := range inserted {
		txnAlerts, detectErr := e.DetectAlerts(ctx, &txn)
		if detectErr != nil {
			// Detection failures never abort the rest of the batch.
			slog.Error("Alert detection failed",
				"transaction_id", txn.ID,
				"error", detectErr)
			continue
		}
		alerts = append(alerts, txnAlerts...)
	}

	if len(alerts) > 0 {
		if err := e.store.SaveAlerts(ctx, alerts); err != nil {
			return stats, fmt.Errorf("failed to save alerts: %w", err)
		}
	}
	stats.AlertsEmitted = len(alerts)
	stats.Duration = time.Since(start)

	if e.metrics != nil {
		e.metrics.TransactionsIngested(stats.NewlyIngested, stats.Duplicates)
		for _, alert := range alerts {
			e.metrics.AlertEmitted(alert.Kind)
		}
		e.metrics.IngestDuration(stats.Duration)
	}

	slog.Info("Ingested transactions",
		"received", stats.TotalReceived,
		"new", stats.NewlyIngested,
		"duplicates", stats.Duplicates,
		"alerts", stats.AlertsEmitted)

	return stats, nil
}

// UnusedPerks returns the member's perks unused within staleAfter of asOf.
func (e *Engine) UnusedPerks(ctx context.Context, memberID string, asOf time.Time, staleAfter time.Duration) ([]model.Perk, error) {
	if staleAfter <= 0 {
		staleAfter = e.cfg.StaleAfter
	}
	return e.catalog.UnusedPerks(ctx, memberID, asOf, staleAfter)
}

// RecordPerkUsage appends a perk usage event.
func (e *Engine) RecordPerkUsage(ctx context.Context, perkID string, timestamp time.Time, transactionID string) error {
	return e.catalog.RecordUsage(ctx, perkID, timestamp, transactionID)
}

// Alerts returns the member's alerts created at or after since.
func (e *Engine) Alerts(ctx context.Context, memberID string, since time.Time) ([]model.Alert, error) {
	return e.store.GetAlertsByMember(ctx, memberID, since)
}

// ActOnAlert transitions a pending alert to acted. Reports a conflict if
// the alert is already terminal.
func (e *Engine) ActOnAlert(ctx context.Context, alertID string, timestamp time.Time) error {
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	return e.store.MarkAlertActed(ctx, alertID, timestamp)
}

// SweepAlerts expires pending alerts older than the action window. The
// sweep is idempotent: terminal alerts are untouched, and a failure on one
// alert never aborts the batch.
func (e *Engine) SweepAlerts(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-e.cfg.ActionWindow)

	pending, err := e.store.GetPendingAlertsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending alerts: %w", err)
	}

	swept := 0
	for _, alert := range pending {
		if err := e.store.MarkAlertMissed(ctx, alert.ID); err != nil {
			slog.Error("Failed to expire alert",
				"alert_id", alert.ID,
				"error", err)
			continue
		}
		swept++
	}

	if swept > 0 {
		slog.Info("Expired unactioned alerts", "count", swept, "cutoff", cutoff)
	}
	if e.metrics != nil {
		e.metrics.AlertsSwept(swept)
	}
	return swept, nil
}

// Score computes the member's SoundScore as of the given instant.
func (e *Engine) Score(ctx context.Context, memberID string, asOf time.Time) (*model.SoundScoreSnapshot, error) {
	windowStart := asOf.Add(-e.cfg.Window)
	trailingStart := asOf.Add(-2 * e.cfg.Window)

	perkUsage, err := e.catalog.UtilizationRate(ctx, memberID, windowStart, asOf)
	if err != nil {
		return nil, err
	}

	discovery, err := e.catalog.DiscoveryRate(ctx, memberID)
	if err != nil {
		return nil, err
	}

	results, err := e.Recommend(ctx, memberID, asOf)
	if err != nil {
		return nil, err
	}
	cardOpt := optimizationRatio(results)

	currentSpend, err := e.store.GetTotalSpend(ctx, memberID, windowStart, asOf)
	if err != nil {
		return nil, err
	}
	trailingSpend, err := e.store.GetTotalSpend(ctx, memberID, trailingStart, windowStart)
	if err != nil {
		return nil, err
	}
	awareness := score.AwarenessRatio(currentSpend, trailingSpend)

	recovered, err := e.store.GetRecoveredSavings(ctx, memberID, windowStart, asOf)
	if err != nil {
		return nil, err
	}

	weights := score.Weights{
		PerkUsage:         e.cfg.PerkUsagePoints,
		CardOptimization:  e.cfg.CardOptimizationPoints,
		SpendingAwareness: e.cfg.SpendingAwarenessPoints,
		BenefitDiscovery:  e.cfg.BenefitDiscoveryPoints,
	}
	total, breakdown := score.Aggregate(score.Inputs{
		PerkUsage:         perkUsage,
		CardOptimization:  cardOpt,
		SpendingAwareness: awareness,
		BenefitDiscovery:  discovery,
	}, weights)

	if e.metrics != nil {
		e.metrics.ScoreComputed(total)
	}

	return &model.SoundScoreSnapshot{
		MemberID:                   memberID,
		AsOf:                       asOf,
		Score:                      total,
		Grade:                      model.GradeFor(total),
		Breakdown:                  breakdown,
		RecoveredSavingsMinorUnits: recovered,
	}, nil
}

// optimizationRatio is the fraction of spend categories already on the
// best card. With no spend at all there is nothing misallocated, so the
// ratio is 1.
func optimizationRatio(results []model.RecommendationResult) float64 {
	if len(results) == 0 {
		return 1
	}
	optimized := 0
	for i := range results {
		if results[i].Optimized() {
			optimized++
		}
	}
	return float64(optimized) / float64(len(results))
}
