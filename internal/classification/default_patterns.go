package classification

import "github.com/soundcu/benefit-engine/internal/model"

// DefaultPatterns returns the built-in merchant classification patterns.
// Derived from the credit union's observed merchant mix.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Gas before groceries: several grocers also sell fuel, and the
		// fuel station names are the more specific signal.
		{
			Name:     "Gas Stations",
			Category: model.CategoryGas,
			Regex:    `\b(SHELL|CHEVRON|ARCO|EXXON|MOBIL|76|TEXACO|COSTCO\s*GAS|SAFEWAY\s*FUEL|FUEL|GAS\s*STATION)\b`,
			Priority: 90,
		},
		{
			Name:     "Grocery Stores",
			Category: model.CategoryGroceries,
			Regex:    `\b(WHOLE\s*FOODS|TRADER\s*JOE'?S|SAFEWAY|COSTCO|KROGER|ALBERTSONS|QFC|FRED\s*MEYER|WINCO|GROCERY|SUPERMARKET)\b`,
			Priority: 80,
		},
		{
			Name:     "Restaurants",
			Category: model.CategoryDining,
			Regex:    `\b(CHIPOTLE|STARBUCKS|MCDONALD'?S|OLIVE\s*GARDEN|SUBWAY|PANERA|PIZZA|RESTAURANT|CAFE|COFFEE|DINER|GRILL|TAQUERIA|DOORDASH|GRUBHUB|UBER\s*EATS)\b`,
			Priority: 75,
		},
		{
			Name:     "Air Travel and Lodging",
			Category: model.CategoryTravel,
			Regex:    `\b(DELTA|UNITED|ALASKA\s*AIR|SOUTHWEST|AMERICAN\s*AIR|MARRIOTT|HILTON|HYATT|AIRBNB|AIRLINES?|HOTEL|MOTEL)\b`,
			Priority: 85,
		},
		{
			Name:     "Rideshare",
			Category: model.CategoryTravel,
			Regex:    `\b(UBER|LYFT)\b`,
			Priority: 70,
		},
		{
			Name:     "Streaming and Entertainment",
			Category: model.CategoryEntertainment,
			Regex:    `\b(NETFLIX|SPOTIFY|HULU|DISNEY\+?|AMC|CINEMA|THEATERS?|PLAYSTATION|XBOX|NINTENDO|STEAM)\b`,
			Priority: 75,
		},
		{
			Name:     "Pharmacies",
			Category: model.CategoryPharmacy,
			Regex:    `\b(CVS|WALGREENS|RITE\s*AID|PHARMACY|DRUG\s*STORE)\b`,
			Priority: 85,
		},
		{
			Name:     "Utilities",
			Category: model.CategoryUtilities,
			Regex:    `\b(PG&E|PSE|COMCAST|XFINITY|AT&T|VERIZON|T-MOBILE|CENTURYLINK|ELECTRIC|WATER\s*DIST|UTILITY)\b`,
			Priority: 85,
		},
		{
			Name:     "Gyms and Fitness",
			Category: model.CategoryFitness,
			Regex:    `\b(24\s*HOUR\s*FITNESS|PLANET\s*FITNESS|LA\s*FITNESS|YMCA|GYM|YOGA|CROSSFIT|PILATES)\b`,
			Priority: 75,
		},
		{
			Name:     "Home Improvement",
			Category: model.CategoryHomeImprovement,
			Regex:    `\b(HOME\s*DEPOT|LOWE'?S|ACE\s*HARDWARE|MENARDS|HARDWARE)\b`,
			Priority: 80,
		},
		// General retail last: the broadest match with the weakest signal.
		{
			Name:     "General Retail",
			Category: model.CategoryShopping,
			Regex:    `\b(AMAZON|WALMART|TARGET|BEST\s*BUY|MACY'?S|NORDSTROM|EBAY|ETSY)\b`,
			Priority: 60,
		},
	}
}
