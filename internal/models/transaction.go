package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are stored as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// TransactionType is the direction of money as the ledger sees it.
type TransactionType string

// TransactionType constants
const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

// UnknownMerchant is used when no merchant heuristic matches.
const UnknownMerchant = "Unknown"

// ParsedTransaction is the parser's output for one notification
type ParsedTransaction struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Merchant  string          `json:"merchant"`
	Type      TransactionType `json:"type"`
	Timestamp int64           `json:"timestamp"` // epoch millis of detection
	Note      string          `json:"note,omitempty"`
}

// Time returns the detection instant.
func (t ParsedTransaction) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// QueuedTransaction is a parsed transaction waiting in the pending queue
type QueuedTransaction struct {
	ParsedTransaction
	Category string `json:"category"`
}

// NewQueued tags a parsed transaction with the default queue category.
func NewQueued(txn ParsedTransaction) QueuedTransaction {
	return QueuedTransaction{
		ParsedTransaction: txn,
		Category:          CatUncategorized,
	}
}

// LedgerTransaction is the long-lived, user-visible record
type LedgerTransaction struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Type      TransactionType `json:"type"`
	Category  string          `json:"category"`
	Timestamp int64           `json:"timestamp"`
	Note      string          `json:"note,omitempty"`
	Merchant  string          `json:"merchant,omitempty"`
}

// Time returns the transaction instant.
func (t LedgerTransaction) Time() time.Time {
	return time.UnixMilli(t.Timestamp)
}
