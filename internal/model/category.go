package model

// Category is a spending classification bucket assigned to a transaction.
type Category string

// Spending categories recognized by the classifier.
const (
	CategoryDining          Category = "Dining"
	CategoryGroceries       Category = "Groceries"
	CategoryGas             Category = "Gas"
	CategoryTravel          Category = "Travel"
	CategoryEntertainment   Category = "Entertainment"
	CategoryShopping        Category = "Shopping"
	CategoryPharmacy        Category = "Pharmacy"
	CategoryUtilities       Category = "Utilities"
	CategoryFitness         Category = "Fitness"
	CategoryHomeImprovement Category = "Home Improvement"
	// CategoryOther is the fallback for transactions no pattern matches.
	CategoryOther Category = "Other"
)

// AllCategories lists every category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryDining,
		CategoryGroceries,
		CategoryGas,
		CategoryTravel,
		CategoryEntertainment,
		CategoryShopping,
		CategoryPharmacy,
		CategoryUtilities,
		CategoryFitness,
		CategoryHomeImprovement,
		CategoryOther,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}
