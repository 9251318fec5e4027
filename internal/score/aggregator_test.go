package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundcu/benefit-engine/internal/model"
)

func TestAggregate_FixtureBreakdown(t *testing.T) {
	// 22 + 18 + 20 + 18 = 78, the dashboard's reference member.
	inputs := Inputs{
		PerkUsage:         0.88,
		CardOptimization:  0.72,
		SpendingAwareness: 0.80,
		BenefitDiscovery:  0.72,
	}

	total, breakdown := Aggregate(inputs, DefaultWeights())

	assert.Equal(t, 78, total)
	assert.Len(t, breakdown, 4)

	assert.Equal(t, model.DimensionPerkUsage, breakdown[0].Name)
	assert.Equal(t, 22, breakdown[0].Points)
	assert.Equal(t, model.StatusGreat, breakdown[0].Status)

	assert.Equal(t, model.DimensionCardOptimization, breakdown[1].Name)
	assert.Equal(t, 18, breakdown[1].Points)
	assert.Equal(t, model.StatusGood, breakdown[1].Status)

	assert.Equal(t, 20, breakdown[2].Points)
	assert.Equal(t, 18, breakdown[3].Points)

	for _, d := range breakdown {
		assert.Equal(t, 25, d.MaxPoints)
	}
}

func TestAggregate_Monotonic(t *testing.T) {
	weights := DefaultWeights()
	base := Inputs{PerkUsage: 0.4, CardOptimization: 0.5, SpendingAwareness: 0.5, BenefitDiscovery: 0.5}
	baseTotal, _ := Aggregate(base, weights)

	// Raising perk utilization from 0.4 to 0.8 never decreases the score.
	raised := base
	raised.PerkUsage = 0.8
	raisedTotal, _ := Aggregate(raised, weights)
	assert.GreaterOrEqual(t, raisedTotal, baseTotal)

	// Same property across every dimension at fine increments.
	for _, bump := range []func(*Inputs, float64){
		func(i *Inputs, v float64) { i.PerkUsage = v },
		func(i *Inputs, v float64) { i.CardOptimization = v },
		func(i *Inputs, v float64) { i.SpendingAwareness = v },
		func(i *Inputs, v float64) { i.BenefitDiscovery = v },
	} {
		prev := -1
		for v := 0.0; v <= 1.0; v += 0.05 {
			in := base
			bump(&in, v)
			total, _ := Aggregate(in, weights)
			assert.GreaterOrEqual(t, total, prev)
			prev = total
		}
	}
}

func TestAggregate_Bounds(t *testing.T) {
	weights := DefaultWeights()

	total, _ := Aggregate(Inputs{}, weights)
	assert.Equal(t, 0, total)

	total, _ = Aggregate(Inputs{PerkUsage: 1, CardOptimization: 1, SpendingAwareness: 1, BenefitDiscovery: 1}, weights)
	assert.Equal(t, 100, total)

	// Out-of-range inputs clamp instead of distorting the scale.
	total, _ = Aggregate(Inputs{PerkUsage: 7.5, CardOptimization: -3, SpendingAwareness: 1, BenefitDiscovery: 1}, weights)
	assert.Equal(t, 75, total)
}

func TestAggregate_ConfigurableWeights(t *testing.T) {
	weights := Weights{PerkUsage: 40, CardOptimization: 30, SpendingAwareness: 20, BenefitDiscovery: 10}

	total, breakdown := Aggregate(Inputs{PerkUsage: 0.5, CardOptimization: 1, SpendingAwareness: 1, BenefitDiscovery: 1}, weights)
	assert.Equal(t, 20+30+20+10, total)
	assert.Equal(t, 40, breakdown[0].MaxPoints)
}

func TestAwarenessRatio(t *testing.T) {
	tests := []struct {
		name     string
		current  int64
		trailing int64
		want     float64
	}{
		{name: "no history is neutral", current: 5000, trailing: 0, want: 1},
		{name: "at average", current: 10000, trailing: 10000, want: 1},
		{name: "below average", current: 5000, trailing: 10000, want: 1},
		{name: "fifty percent over", current: 15000, trailing: 10000, want: 0.5},
		{name: "double average", current: 20000, trailing: 10000, want: 0},
		{name: "way over", current: 50000, trailing: 10000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AwarenessRatio(tt.current, tt.trailing), 1e-9)
		})
	}
}

func TestGradeFor(t *testing.T) {
	assert.Equal(t, "Excellent", model.GradeFor(95))
	assert.Equal(t, "Great", model.GradeFor(85))
	assert.Equal(t, "Good", model.GradeFor(78))
	assert.Equal(t, "Fair", model.GradeFor(60))
	assert.Equal(t, "Needs Work", model.GradeFor(42))
}
