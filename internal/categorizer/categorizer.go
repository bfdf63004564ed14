package categorizer

import (
	"strings"

	"paisometer/internal/models"
	"paisometer/internal/utils"
)

// Keyword tables, checked in order. The first table with a hit decides.
var (
	foodKeywords = []string{
		"swiggy", "zomato", "domino", "kfc", "pizza", "burger", "mcdonald",
		"cafe", "coffee", "tea ", "restaurant", "biryani", "kitchen", "bar ",
		"starbucks", "chai",
	}
	transportKeywords = []string{
		"uber", "ola", "rapido", "petrol", "fuel", "shell", "hp petrol",
		"indian oil", "metro", "irctc", "rail", "auto", "fastag",
	}
	shoppingKeywords = []string{
		"amazon", "flipkart", "myntra", "ajio", "dmart", "blinkit", "zepto",
		"store", "mart", "shop", "bigbasket",
	}
	entertainmentKeywords = []string{
		"netflix", "spotify", "hotstar", "prime", "youtube", "cinema",
		"movie", "pvr", "inox", "bookmyshow",
	}
	billsKeywords = []string{
		"jio", "airtel", "vodafone", "bescom", "electricity", "water", "gas",
		"bill", "recharge", "broadband",
	}
)

// Categorizer handles transaction categorization
type Categorizer struct{}

// New creates a new Categorizer instance
func New() *Categorizer {
	return &Categorizer{}
}

// Categorize guesses a ledger category from the merchant and note. It never
// returns uncategorized; anything unrecognized is "other".
func (c *Categorizer) Categorize(merchant, note string) string {
	cleanMerchant := utils.CleanPayeeName(merchant)
	if cleanMerchant == models.UnknownMerchant {
		cleanMerchant = ""
	}
	// Padded so keywords ending in a space also match at the end.
	text := strings.ToLower(cleanMerchant+" "+note) + " "

	switch {
	case utils.Contains(text, foodKeywords...):
		return models.CatFood
	case utils.Contains(text, transportKeywords...):
		return models.CatTransport
	case utils.Contains(text, shoppingKeywords...):
		return models.CatShopping
	case utils.Contains(text, entertainmentKeywords...):
		return models.CatEntertainment
	case utils.Contains(text, billsKeywords...):
		return models.CatBills
	default:
		return models.CatOther
	}
}
