package model

import "time"

// RuleKind identifies how a reward rule converts spend into reward value.
type RuleKind string

const (
	// RuleFlat applies a single rate to all spend in the category.
	RuleFlat RuleKind = "flat"
	// RuleBonusCapped applies a bonus rate up to a monthly reward cap;
	// spend beyond the cap earns the card's base rate.
	RuleBonusCapped RuleKind = "bonus_capped"
	// RuleRotating applies a bonus rate only inside an active window.
	RuleRotating RuleKind = "rotating"
)

// RewardRule is a card product's formula for one category. Rates are
// expressed in basis points (300 = 3%) so reward math stays integral.
type RewardRule struct {
	ActiveFrom           time.Time // rotating rules only
	ActiveUntil          time.Time // rotating rules only; exclusive
	Kind                 RuleKind
	RateBasisPoints      int64
	MonthlyCapMinorUnits int64 // bonus_capped rules only; 0 means uncapped
}

// CardProduct describes a card's reward structure. Owned by the reward
// registry; read-only at evaluation time.
type CardProduct struct {
	Rules               map[Category]RewardRule
	ID                  string
	Name                string
	AnnualFeeMinorUnits int64
	BaseRateBasisPoints int64 // applied to categories without a rule
}

// MemberCard links a member to a card product, optionally designating the
// card as the member's default for a category.
type MemberCard struct {
	LinkedAt        time.Time
	MemberID        string
	CardID          string
	DefaultCategory Category // empty when no designation
}
