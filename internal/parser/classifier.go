package parser

import (
	"strings"

	"paisometer/internal/utils"
)

// Direction is the raw money direction read from a message.
type Direction int

const (
	Unknown Direction = iota
	Debit
	Credit
)

func (d Direction) String() string {
	switch d {
	case Debit:
		return "DEBIT"
	case Credit:
		return "CREDIT"
	default:
		return "UNKNOWN"
	}
}

// Classifier decides whether text is a transaction and which way the money went
type Classifier struct {
	triggers    []string
	debitWords  []string
	creditWords []string
}

// NewClassifier creates a Classifier from the vocabulary trigger tables.
func NewClassifier(v Vocabulary) *Classifier {
	return &Classifier{
		triggers:    v.Triggers,
		debitWords:  v.DebitWords,
		creditWords: v.CreditWords,
	}
}

// LooksLikeTransaction is the cheap pre-check: some trigger word must be present.
func (c *Classifier) LooksLikeTransaction(text string) bool {
	return utils.Contains(strings.ToLower(text), c.triggers...)
}

// Classify returns Debit, Credit or Unknown. Debit words are checked first,
// so a message carrying both kinds counts as an expense.
func (c *Classifier) Classify(text string) Direction {
	lower := strings.ToLower(text)
	switch {
	case utils.Contains(lower, c.debitWords...):
		return Debit
	case utils.Contains(lower, c.creditWords...):
		return Credit
	default:
		return Unknown
	}
}
