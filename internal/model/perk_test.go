package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPointEstimate(t *testing.T) {
	perk := Perk{ValueLowMinorUnits: 5000, ValueHighMinorUnits: 20000}

	assert.Equal(t, int64(12500), perk.PointEstimate(EstimateMidpoint))
	assert.Equal(t, int64(5000), perk.PointEstimate(EstimateLow))
	// Unknown modes fall back to the low end.
	assert.Equal(t, int64(5000), perk.PointEstimate("high"))

	// A fixed-value perk has no range to split.
	fixed := Perk{ValueLowMinorUnits: 7500, ValueHighMinorUnits: 7500}
	assert.Equal(t, int64(7500), fixed.PointEstimate(EstimateMidpoint))
}

func TestPerkActive(t *testing.T) {
	perk := Perk{ID: "perk-1"}
	assert.True(t, perk.Active())

	perk.RetiredAt = time.Now()
	assert.False(t, perk.Active())
}
