package models

// Category constants
const (
	CatFood          = "food"
	CatTransport     = "transport"
	CatBills         = "bills"
	CatShopping      = "shopping"
	CatEntertainment = "entertainment"
	CatOther         = "other"

	// CatUncategorized marks a queued transaction nobody has categorized yet.
	CatUncategorized = "uncategorized"
)

// Categories lists the categories a ledger transaction may carry.
var Categories = []string{
	CatFood,
	CatTransport,
	CatBills,
	CatShopping,
	CatEntertainment,
	CatOther,
}

// ValidCategory reports whether c is a ledger category.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
