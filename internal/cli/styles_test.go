package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		minorUnits int64
		want       string
	}{
		{minorUnits: 12550, want: "$125.50"},
		{minorUnits: 100, want: "$1.00"},
		{minorUnits: 5, want: "$0.05"},
		{minorUnits: 0, want: "$0.00"},
		{minorUnits: -9500, want: "-$95.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCents(tt.minorUnits))
	}
}
