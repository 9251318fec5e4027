package classification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundcu/benefit-engine/internal/model"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewDefault()

	tests := []struct {
		name     string
		merchant string
		hint     string
		want     model.Category
	}{
		{name: "grocery store", merchant: "Whole Foods Market #123", want: model.CategoryGroceries},
		{name: "trader joes apostrophe", merchant: "TRADER JOE'S SEATTLE", want: model.CategoryGroceries},
		{name: "gas station", merchant: "Shell Oil 5742", want: model.CategoryGas},
		{name: "costco warehouse", merchant: "COSTCO WHSE #0110", want: model.CategoryGroceries},
		{name: "costco fuel outranks groceries", merchant: "COSTCO GAS #0110", want: model.CategoryGas},
		{name: "dining", merchant: "CHIPOTLE 1234", want: model.CategoryDining},
		{name: "airline", merchant: "DELTA AIRLINES ATL", want: model.CategoryTravel},
		{name: "rideshare", merchant: "UBER *TRIP", want: model.CategoryTravel},
		{name: "streaming", merchant: "Netflix.com", want: model.CategoryEntertainment},
		{name: "pharmacy", merchant: "CVS PHARMACY #7215", want: model.CategoryPharmacy},
		{name: "utility", merchant: "COMCAST CABLE COMM", want: model.CategoryUtilities},
		{name: "gym", merchant: "24 HOUR FITNESS USA", want: model.CategoryFitness},
		{name: "hardware", merchant: "THE HOME DEPOT #4721", want: model.CategoryHomeImprovement},
		{name: "online retail", merchant: "AMZN Mktp US*1A2B3", hint: "", want: model.CategoryOther},
		{name: "amazon full name", merchant: "AMAZON.COM*ORDER", want: model.CategoryShopping},
		{name: "unknown merchant", merchant: "ZZZ UNKNOWN LLC", want: model.CategoryOther},
		{name: "empty merchant", merchant: "", want: model.CategoryOther},
		{name: "whitespace merchant", merchant: "   ", want: model.CategoryOther},
		{name: "valid hint wins", merchant: "ZZZ UNKNOWN LLC", hint: "Dining", want: model.CategoryDining},
		{name: "garbage hint ignored", merchant: "Shell Oil", hint: "not-a-category", want: model.CategoryGas},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.Transaction{MerchantName: tt.merchant, RawCategoryHint: tt.hint}
			got := classifier.Classify(txn)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	classifier := NewDefault()
	txn := model.Transaction{MerchantName: "Safeway Fuel Station 1520"}

	first := classifier.Classify(txn)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, classifier.Classify(txn))
	}
}

func TestClassifier_Total(t *testing.T) {
	classifier := NewDefault()

	// Malformed merchant data must still land in a category.
	malformed := []model.Transaction{
		{},
		{MerchantName: "\x00\xff"},
		{MerchantName: "((("},
		{RawCategoryHint: "((("},
	}
	for _, txn := range malformed {
		got := classifier.Classify(txn)
		assert.True(t, got.Valid(), "got %q", got)
	}
}

func TestClassifier_UpdatePatterns(t *testing.T) {
	classifier := NewDefault()

	err := classifier.UpdatePatterns([]Pattern{
		{Name: "Credit Union Cafe", Category: model.CategoryDining, Regex: `\bCU\s*CAFE\b`, Priority: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, classifier.PatternCount())

	got := classifier.Classify(model.Transaction{MerchantName: "CU CAFE LOBBY"})
	assert.Equal(t, model.CategoryDining, got)

	// Old patterns are gone.
	got = classifier.Classify(model.Transaction{MerchantName: "Shell Oil"})
	assert.Equal(t, model.CategoryOther, got)
}

func TestClassifier_UpdatePatternsInvalidRegex(t *testing.T) {
	classifier := NewDefault()
	before := classifier.PatternCount()

	err := classifier.UpdatePatterns([]Pattern{
		{Name: "Broken", Category: model.CategoryOther, Regex: `([`, Priority: 1},
	})
	require.Error(t, err)
	assert.Equal(t, before, classifier.PatternCount())
}

func TestDefaultPatterns_Compile(t *testing.T) {
	_, err := New(DefaultPatterns())
	require.NoError(t, err)
}
