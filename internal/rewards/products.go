package rewards

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/soundcu/benefit-engine/internal/model"
)

// productFile mirrors the YAML layout of a card products file:
//
//	products:
//	  - id: platinum-rewards-visa
//	    name: Platinum Rewards Visa
//	    annual_fee_minor_units: 0
//	    base_rate_basis_points: 100
//	    rules:
//	      Gas: {kind: flat, rate_basis_points: 300}
//	      Groceries: {kind: bonus_capped, rate_basis_points: 200, monthly_cap_minor_units: 5000}
type productFile struct {
	Products []productSpec `mapstructure:"products"`
}

type productSpec struct {
	Rules               map[string]ruleSpec `mapstructure:"rules"`
	ID                  string              `mapstructure:"id"`
	Name                string              `mapstructure:"name"`
	AnnualFeeMinorUnits int64               `mapstructure:"annual_fee_minor_units"`
	BaseRateBasisPoints int64               `mapstructure:"base_rate_basis_points"`
}

type ruleSpec struct {
	Kind                 string `mapstructure:"kind"`
	ActiveFrom           string `mapstructure:"active_from"`
	ActiveUntil          string `mapstructure:"active_until"`
	RateBasisPoints      int64  `mapstructure:"rate_basis_points"`
	MonthlyCapMinorUnits int64  `mapstructure:"monthly_cap_minor_units"`
}

// LoadFile reads a YAML card products file into the registry, replacing
// its contents. This is the explicit registry reload the product data
// model requires.
func (r *Registry) LoadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read products file: %w", err)
	}

	var file productFile
	if err := v.Unmarshal(&file); err != nil {
		return fmt.Errorf("failed to parse products file: %w", err)
	}

	products := make([]model.CardProduct, 0, len(file.Products))
	for _, spec := range file.Products {
		product, err := spec.toProduct()
		if err != nil {
			return err
		}
		products = append(products, product)
	}

	return r.Load(products)
}

func (s *productSpec) toProduct() (model.CardProduct, error) {
	product := model.CardProduct{
		ID:                  s.ID,
		Name:                s.Name,
		AnnualFeeMinorUnits: s.AnnualFeeMinorUnits,
		BaseRateBasisPoints: s.BaseRateBasisPoints,
		Rules:               make(map[model.Category]model.RewardRule, len(s.Rules)),
	}

	for category, rs := range s.Rules {
		rule := model.RewardRule{
			Kind:                 model.RuleKind(rs.Kind),
			RateBasisPoints:      rs.RateBasisPoints,
			MonthlyCapMinorUnits: rs.MonthlyCapMinorUnits,
		}
		if rs.ActiveFrom != "" {
			from, err := time.Parse(time.RFC3339, rs.ActiveFrom)
			if err != nil {
				return product, fmt.Errorf("card %q: bad active_from: %w", s.ID, err)
			}
			rule.ActiveFrom = from
		}
		if rs.ActiveUntil != "" {
			until, err := time.Parse(time.RFC3339, rs.ActiveUntil)
			if err != nil {
				return product, fmt.Errorf("card %q: bad active_until: %w", s.ID, err)
			}
			rule.ActiveUntil = until
		}
		product.Rules[model.Category(category)] = rule
	}

	return product, nil
}

// DefaultProducts returns the credit union's current card lineup. Used
// when no products file is configured, and as a test fixture.
func DefaultProducts() []model.CardProduct {
	return []model.CardProduct{
		{
			ID:                  "platinum-rewards-visa",
			Name:                "Platinum Rewards Visa",
			BaseRateBasisPoints: 100, // 1% on everything else
			Rules: map[model.Category]model.RewardRule{
				model.CategoryGas:       {Kind: model.RuleFlat, RateBasisPoints: 300},
				model.CategoryGroceries: {Kind: model.RuleFlat, RateBasisPoints: 200},
			},
		},
		{
			ID:                  "cash-back-visa",
			Name:                "Cash Back Visa",
			BaseRateBasisPoints: 150, // 1.5% flat
			Rules:               map[model.Category]model.RewardRule{},
		},
		{
			ID:                  "secured-visa",
			Name:                "Secured Visa",
			BaseRateBasisPoints: 0,
			Rules:               map[model.Category]model.RewardRule{},
		},
		{
			ID:                  "classic-visa",
			Name:                "Classic Visa",
			BaseRateBasisPoints: 0,
			Rules:               map[model.Category]model.RewardRule{},
		},
	}
}
