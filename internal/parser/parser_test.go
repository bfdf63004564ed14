package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paisometer/internal/models"
)

var fixedNow = time.Date(2024, 1, 12, 10, 30, 0, 0, time.UTC)

func newTestParser() *Parser {
	return New(DefaultVocabulary(), WithClock(func() time.Time { return fixedNow }))
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		amount   string
		merchant string
		txnType  models.TransactionType
	}{
		{
			name:     "debit with prefix amount and at-merchant",
			text:     "HDFC Bank: Rs. 1,500.00 debited from your account at Swiggy on 12-01-24",
			amount:   "1500",
			merchant: "Swiggy",
			txnType:  models.TypeExpense,
		},
		{
			name:     "credit falls through to capitalized phrase",
			text:     "You have received Rs 2000 via UPI from Amit",
			amount:   "2000",
			merchant: "Amit",
			txnType:  models.TypeIncome,
		},
		{
			name:     "suffix amount",
			text:     "500/- spent at Amazon",
			amount:   "500",
			merchant: "Amazon",
			txnType:  models.TypeExpense,
		},
		{
			name:     "rupee symbol and paid to",
			text:     "₹250.50 paid to Rahul Kumar. Ref 44120",
			amount:   "250.5",
			merchant: "Rahul Kumar",
			txnType:  models.TypeExpense,
		},
		{
			name:     "debit wins over credit",
			text:     "INR 300 debited, you received cashback later",
			amount:   "300",
			merchant: models.UnknownMerchant,
			txnType:  models.TypeExpense,
		},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, ok := p.Parse(tt.text)
			require.True(t, ok)

			assert.True(t, decimal.RequireFromString(tt.amount).Equal(txn.Amount), "amount = %s", txn.Amount)
			assert.Equal(t, tt.merchant, txn.Merchant)
			assert.Equal(t, tt.txnType, txn.Type)
			assert.Equal(t, fixedNow.UnixMilli(), txn.Timestamp)
			assert.Empty(t, txn.Note)
			assert.NotEmpty(t, txn.ID)
		})
	}
}

func TestParser_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no trigger word", "Your OTP is 482910"},
		{"trigger but no direction", "Txn alert: Rs 500 on card XX12"},
		{"no amount", "Amount debited from your account"},
		{"zero amount", "Rs 0.00 debited at Swiggy"},
		{"empty", ""},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := p.Parse(tt.text)
			assert.False(t, ok)
		})
	}
}

func TestParser_ParseIDs(t *testing.T) {
	p := newTestParser()
	text := "Rs 99 paid at Zomato"

	live1, ok := p.Parse(text)
	require.True(t, ok)
	live2, ok := p.Parse(text)
	require.True(t, ok)
	assert.NotEqual(t, live1.ID, live2.ID, "live detections get fresh IDs")

	at := time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC)
	replay1, ok := p.ParseAt(text, at)
	require.True(t, ok)
	replay2, ok := p.ParseAt(text, at)
	require.True(t, ok)
	assert.Equal(t, replay1.ID, replay2.ID, "replayed messages get stable IDs")
	assert.Equal(t, at.UnixMilli(), replay1.Timestamp)

	other, ok := p.ParseAt(text, at.Add(time.Second))
	require.True(t, ok)
	assert.NotEqual(t, replay1.ID, other.ID)
}

func TestParser_MerchantInvariant(t *testing.T) {
	p := newTestParser()
	texts := []string{
		"Rs 1200 debited at THE VERY LONG MERCHANT NAME PRIVATE LIMITED BANGALORE INDIA",
		"INR 75 spent",
		"Payment of Rs 10 received",
	}
	for _, text := range texts {
		txn, ok := p.Parse(text)
		require.True(t, ok, text)
		assert.NotEmpty(t, txn.Merchant)
		assert.LessOrEqual(t, len(txn.Merchant), 30)
		assert.True(t, txn.Amount.IsPositive())
	}
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brands:\n  - bigbasket\n"), 0644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bigbasket"}, v.Brands)
	assert.Equal(t, DefaultVocabulary().Triggers, v.Triggers, "unset lists keep defaults")

	p := New(v)
	txn, ok := p.Parse("rs 640 paid, order from bigbasket")
	require.True(t, ok)
	assert.Equal(t, "Bigbasket", txn.Merchant)
}

func TestLoadVocabulary_Errors(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brands: [unclosed"), 0644))
	_, err = LoadVocabulary(path)
	assert.Error(t, err)
}
