package model

import "time"

// PerkSource indicates where a perk's eligibility comes from.
type PerkSource string

const (
	// PerkSourceCard indicates the perk is attached to a card product.
	PerkSourceCard PerkSource = "CARD"
	// PerkSourceMembership indicates the perk comes with credit-union membership.
	PerkSourceMembership PerkSource = "MEMBERSHIP"
)

// Perk is a non-monetary or discount benefit tied to a card or membership,
// separate from cash-back rewards. Created when the card or membership is
// linked; retired when the link is removed.
type Perk struct {
	CreatedAt           time.Time  `json:"created_at"`
	RetiredAt           time.Time  `json:"retired_at"` // zero while the perk is active
	ID                  string     `json:"id"`
	MemberID            string     `json:"member_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	SourceName          string     `json:"source_name"` // e.g. "Sound Cash Back Card"
	Source              PerkSource `json:"source"`
	Category            Category   `json:"category,omitempty"`
	ValueLowMinorUnits  int64      `json:"value_low_minor_units"` // estimated value range, e.g. $50-200/use
	ValueHighMinorUnits int64      `json:"value_high_minor_units"`
}

// Active reports whether the perk is currently eligible.
func (p *Perk) Active() bool {
	return p.RetiredAt.IsZero()
}

// EstimateMode selects how a perk's value range resolves to a single
// comparable number. The prototype data carries ranges with no canonical
// point value, so the convention is configuration, not a constant.
type EstimateMode string

const (
	// EstimateMidpoint values a perk at the midpoint of its range.
	EstimateMidpoint EstimateMode = "midpoint"
	// EstimateLow values a perk at the low end of its range.
	EstimateLow EstimateMode = "low"
)

// PointEstimate resolves the perk's value range to minor units under the
// given mode. Unknown modes fall back to the low end.
func (p *Perk) PointEstimate(mode EstimateMode) int64 {
	if mode == EstimateMidpoint && p.ValueHighMinorUnits > p.ValueLowMinorUnits {
		return (p.ValueLowMinorUnits + p.ValueHighMinorUnits) / 2
	}
	return p.ValueLowMinorUnits
}

// PerkUsageEvent records one use of a perk. Append-only; the latest event
// per perk determines "last used". Deduplicated by (PerkID, TransactionID).
type PerkUsageEvent struct {
	Timestamp     time.Time
	PerkID        string
	TransactionID string // optional; empty for manually reported usage
}
