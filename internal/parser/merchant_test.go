package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paisometer/internal/models"
)

func TestMerchantExtractor_Extract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"connector run ends at stop word", "Rs 500 debited at Swiggy on 12-01-24", "Swiggy"},
		{"digits in a name are kept", "Rs 500 spent at Studio 54", "Studio 54"},
		{"phone number payee", "Rs 500 sent to 9876543210", "9876543210"},
		{"rail prefix stripped", "Rs 75 paid to UPI-Rahul", "Rahul"},
		{"jargon after connector rejected", "Rs 80 paid to BANK", models.UnknownMerchant},
		{"brand without connector", "Rs 649 debited, netflix autopay", "Netflix"},
		{"capitalized phrase skips jargon", "Rs 80 debited, INFO: Meena Stores", "Meena Stores"},
		{"capitalized phrase at start rejected", "Cred Rs 300 debited", models.UnknownMerchant},
		{"nothing usable", "rs 300 debited", models.UnknownMerchant},
		{"long names truncated", "Rs 9 paid at Abcdefghij Klmnopqrst Uvwxyzabcd Efghij", "Abcdefghij Klmnopqrst Uvwxyzab"},
	}

	e := NewMerchantExtractor(DefaultVocabulary())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text))
		})
	}
}

func TestMerchantExtractor_CapitalizedOffset(t *testing.T) {
	e := NewMerchantExtractor(DefaultVocabulary())
	e.MinCapitalizedOffset = -1
	assert.Equal(t, "Cred", e.Extract("Cred Rs 300 debited"))

	p := New(DefaultVocabulary(), WithMinCapitalizedOffset(-1))
	txn, ok := p.Parse("Cred Rs 300 debited")
	assert.True(t, ok)
	assert.Equal(t, "Cred", txn.Merchant)
}
