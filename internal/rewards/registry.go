// Package rewards holds card products and evaluates their reward rules.
package rewards

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/soundcu/benefit-engine/internal/common"
	"github.com/soundcu/benefit-engine/internal/model"
)

// Registry holds the card products known to the engine. Read-only at
// evaluation time; products change only through Load.
type Registry struct {
	products map[string]model.CardProduct
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{products: make(map[string]model.CardProduct)}
}

// Load replaces the registry contents with the given products.
func (r *Registry) Load(products []model.CardProduct) error {
	next := make(map[string]model.CardProduct, len(products))

	for _, p := range products {
		if err := validateProduct(&p); err != nil {
			return err
		}
		if _, exists := next[p.ID]; exists {
			return fmt.Errorf("%w: card %q defined twice", common.ErrInvalidConfig, p.ID)
		}
		next[p.ID] = p
	}

	r.mu.Lock()
	r.products = next
	r.mu.Unlock()

	return nil
}

func validateProduct(p *model.CardProduct) error {
	if p.ID == "" {
		return fmt.Errorf("%w: card product missing id", common.ErrInvalidConfig)
	}
	if p.BaseRateBasisPoints < 0 {
		return fmt.Errorf("%w: card %q has negative base rate", common.ErrInvalidRule, p.ID)
	}
	if p.AnnualFeeMinorUnits < 0 {
		return fmt.Errorf("%w: card %q has negative annual fee", common.ErrInvalidRule, p.ID)
	}

	for category, rule := range p.Rules {
		if rule.RateBasisPoints < 0 {
			return fmt.Errorf("%w: card %q category %q has negative rate", common.ErrInvalidRule, p.ID, category)
		}
		if rule.MonthlyCapMinorUnits < 0 {
			return fmt.Errorf("%w: card %q category %q has negative cap", common.ErrInvalidRule, p.ID, category)
		}
		switch rule.Kind {
		case model.RuleFlat, model.RuleBonusCapped:
		case model.RuleRotating:
			if rule.ActiveUntil.IsZero() || !rule.ActiveUntil.After(rule.ActiveFrom) {
				return fmt.Errorf("%w: card %q category %q rotating rule has no active window", common.ErrInvalidRule, p.ID, category)
			}
		default:
			return fmt.Errorf("%w: card %q category %q has unknown kind %q", common.ErrInvalidRule, p.ID, category, rule.Kind)
		}
	}

	return nil
}

// Product returns the card product for the given id.
func (r *Registry) Product(cardID string) (*model.CardProduct, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[cardID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownCard, cardID)
	}
	return &p, nil
}

// Products returns all registered products sorted by name.
func (r *Registry) Products() []model.CardProduct {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]model.CardProduct, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products
}

// RewardFor computes the reward in minor units for the given spend in a
// category on one card. An unregistered cardID is reported to the caller:
// it signals a data-integrity problem upstream and must not be defaulted.
func (r *Registry) RewardFor(cardID string, category model.Category, spendMinorUnits int64, asOf time.Time) (int64, error) {
	if spendMinorUnits < 0 {
		return 0, fmt.Errorf("%w: negative spend %d", common.ErrValidation, spendMinorUnits)
	}

	product, err := r.Product(cardID)
	if err != nil {
		return 0, err
	}

	rule, ok := product.Rules[category]
	if !ok {
		return applyRate(product.BaseRateBasisPoints, spendMinorUnits), nil
	}

	switch rule.Kind {
	case model.RuleFlat:
		return applyRate(rule.RateBasisPoints, spendMinorUnits), nil

	case model.RuleBonusCapped:
		bonus := applyRate(rule.RateBasisPoints, spendMinorUnits)
		cap := rule.MonthlyCapMinorUnits
		if cap == 0 || bonus <= cap {
			return bonus, nil
		}
		// Reward is capped at the monthly ceiling; spend beyond the cap
		// earns the card's base rate instead of nothing.
		cappedSpend := cap * 10000 / rule.RateBasisPoints
		excessSpend := spendMinorUnits - cappedSpend
		if excessSpend < 0 {
			excessSpend = 0
		}
		return cap + applyRate(product.BaseRateBasisPoints, excessSpend), nil

	case model.RuleRotating:
		if !asOf.Before(rule.ActiveFrom) && asOf.Before(rule.ActiveUntil) {
			return applyRate(rule.RateBasisPoints, spendMinorUnits), nil
		}
		return applyRate(product.BaseRateBasisPoints, spendMinorUnits), nil

	default:
		// Unknown kinds are rejected at load time; degrade to base rate
		// rather than failing the whole request if one slips through.
		common.LogWarn("Unknown reward rule kind, using base rate",
			common.Fields{"card": cardID, "category": category, "kind": rule.Kind})
		return applyRate(product.BaseRateBasisPoints, spendMinorUnits), nil
	}
}

// applyRate converts spend to reward at a basis-point rate, rounding to
// the nearest minor unit.
func applyRate(basisPoints, spendMinorUnits int64) int64 {
	return (spendMinorUnits*basisPoints + 5000) / 10000
}
