package model

import "time"

// AlertKind identifies what savings opportunity an alert describes.
type AlertKind string

const (
	// AlertMissedCard means a better card existed for the transaction.
	AlertMissedCard AlertKind = "MISSED_CARD"
	// AlertMissedPerk means an eligible, unused perk applied to the transaction.
	AlertMissedPerk AlertKind = "MISSED_PERK"
	// AlertBudgetWarning flags unusually high spend in a category.
	AlertBudgetWarning AlertKind = "BUDGET_WARNING"
)

// AlertStatus tracks the alert lifecycle. PENDING is the only non-terminal
// state; transitions are PENDING -> ACTED or PENDING -> MISSED.
type AlertStatus string

const (
	// StatusPending means the member has not yet responded to the alert.
	StatusPending AlertStatus = "PENDING"
	// StatusActed means the member acted within the action window.
	StatusActed AlertStatus = "ACTED"
	// StatusMissed means the action window expired without a response.
	StatusMissed AlertStatus = "MISSED"
)

// Terminal reports whether the status permits no further transitions.
func (s AlertStatus) Terminal() bool {
	return s == StatusActed || s == StatusMissed
}

// Alert is a missed-savings notification tied to a specific transaction.
type Alert struct {
	CreatedAt                  time.Time   `json:"created_at"`
	ActedAt                    time.Time   `json:"acted_at"` // zero unless status is ACTED
	ID                         string      `json:"id"`
	MemberID                   string      `json:"member_id"`
	TransactionID              string      `json:"transaction_id"`
	PerkID                     string      `json:"perk_id,omitempty"` // MISSED_PERK alerts only
	Suggestion                 string      `json:"suggestion"`
	Kind                       AlertKind   `json:"kind"`
	Status                     AlertStatus `json:"status"`
	EstimatedSavingsMinorUnits int64       `json:"estimated_savings_minor_units"`
}
