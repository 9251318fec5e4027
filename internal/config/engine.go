package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/soundcu/benefit-engine/internal/model"
)

// Engine holds the tunable knobs of the benefit engine. The fixture values
// (25 points per score dimension, 24h action window, midpoint estimates)
// are defaults, not constants.
type Engine struct {
	// Window is the trailing period recommendations and scores cover.
	Window time.Duration
	// ActionWindow is how long an alert stays PENDING before the sweep
	// marks it MISSED.
	ActionWindow time.Duration
	// StaleAfter is how long without usage before a perk counts as unused.
	StaleAfter time.Duration
	// EstimateMode resolves perk value ranges to a point estimate.
	EstimateMode model.EstimateMode
	// BudgetWarnThresholdMinorUnits triggers a budget warning for any
	// single transaction at or above this amount. 0 disables the check.
	BudgetWarnThresholdMinorUnits int64
	// Score max points per dimension; the total score is clamped to [0,100].
	PerkUsagePoints         int
	CardOptimizationPoints  int
	SpendingAwarenessPoints int
	BenefitDiscoveryPoints  int
}

// DefaultEngine returns the default engine configuration.
func DefaultEngine() Engine {
	return Engine{
		Window:                  30 * 24 * time.Hour,
		ActionWindow:            24 * time.Hour,
		StaleAfter:              30 * 24 * time.Hour,
		EstimateMode:            model.EstimateMidpoint,
		PerkUsagePoints:         25,
		CardOptimizationPoints:  25,
		SpendingAwarenessPoints: 25,
		BenefitDiscoveryPoints:  25,
	}
}

// EngineFromViper builds the engine configuration from the loaded config
// file and environment, falling back to defaults for unset keys.
func EngineFromViper() Engine {
	cfg := DefaultEngine()

	if v := viper.GetDuration("engine.window"); v > 0 {
		cfg.Window = v
	}
	if v := viper.GetDuration("alerts.action_window"); v > 0 {
		cfg.ActionWindow = v
	}
	if v := viper.GetDuration("perks.stale_after"); v > 0 {
		cfg.StaleAfter = v
	}
	switch model.EstimateMode(viper.GetString("alerts.estimate")) {
	case model.EstimateLow:
		cfg.EstimateMode = model.EstimateLow
	case model.EstimateMidpoint:
		cfg.EstimateMode = model.EstimateMidpoint
	}
	if v := viper.GetInt64("alerts.budget_warn_threshold_minor_units"); v > 0 {
		cfg.BudgetWarnThresholdMinorUnits = v
	}
	if v := viper.GetInt("score.perk_usage_points"); v > 0 {
		cfg.PerkUsagePoints = v
	}
	if v := viper.GetInt("score.card_optimization_points"); v > 0 {
		cfg.CardOptimizationPoints = v
	}
	if v := viper.GetInt("score.spending_awareness_points"); v > 0 {
		cfg.SpendingAwarenessPoints = v
	}
	if v := viper.GetInt("score.benefit_discovery_points"); v > 0 {
		cfg.BenefitDiscoveryPoints = v
	}

	return cfg
}
