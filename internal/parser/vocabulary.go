package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds every word list the matchers work from. The lists are data,
// so they can be extended from a YAML file without touching the matchers.
type Vocabulary struct {
	Triggers       []string `yaml:"triggers"`
	DebitWords     []string `yaml:"debit_words"`
	CreditWords    []string `yaml:"credit_words"`
	Connectors     []string `yaml:"connectors"`
	StopWords      []string `yaml:"stop_words"`
	Brands         []string `yaml:"brands"`
	BankingJargon  []string `yaml:"banking_jargon"`
	CurrencyTokens []string `yaml:"currency_tokens"`
}

// DefaultVocabulary returns the built-in tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Triggers: []string{
			"debited", "credited", "spent", "paid", "received", "deposited",
			"sent", "transferred", "txn", "purchase", "payment", "withdrawn",
		},
		DebitWords:  []string{"debited", "spent", "paid", "sent", "transferred"},
		CreditWords: []string{"credited", "received", "deposited"},
		// Order matters: the first connector that yields a merchant wins.
		Connectors: []string{"at", "to", "via", "by", "for", "on"},
		// A merchant run captured after a connector ends at any of these.
		StopWords: []string{
			"at", "to", "via", "by", "for", "on", "from", "with", "using",
			"ref", "refno", "avl", "bal", "info", "txn", "upi", "dated",
		},
		Brands: []string{
			"gpay", "phonepe", "paytm", "swiggy", "zomato", "amazon", "flipkart",
			"uber", "ola", "truecaller", "netflix", "spotify", "apple", "google",
		},
		BankingJargon: []string{
			"INR", "SMS", "NEFT", "IMPS", "UPI", "DEBITED", "CREDITED",
			"RS", "BAL", "ACCT", "BANK", "INFO",
		},
		CurrencyTokens: []string{"₹", "INR", "Rs"},
	}
}

// LoadVocabulary reads a YAML file and overlays every non-empty list onto the defaults.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()

	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return v, fmt.Errorf("failed to parse vocabulary file %q: %w", path, err)
	}

	overlay(&v.Triggers, override.Triggers)
	overlay(&v.DebitWords, override.DebitWords)
	overlay(&v.CreditWords, override.CreditWords)
	overlay(&v.Connectors, override.Connectors)
	overlay(&v.StopWords, override.StopWords)
	overlay(&v.Brands, override.Brands)
	overlay(&v.BankingJargon, override.BankingJargon)
	overlay(&v.CurrencyTokens, override.CurrencyTokens)

	return v, nil
}

func overlay(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}
