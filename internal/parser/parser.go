package parser

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"paisometer/internal/models"
)

// replayNamespace seeds deterministic IDs for re-ingested messages.
var replayNamespace = uuid.MustParse("6f1c2a52-8a4e-4d1b-9a57-2f0b8c7e3d14")

// Parser turns raw notification text into a ParsedTransaction
type Parser struct {
	classifier *Classifier
	amounts    *AmountExtractor
	merchants  *MerchantExtractor
	now        func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the wall clock used to stamp live detections.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithMinCapitalizedOffset tunes the capitalized-phrase start exclusion.
func WithMinCapitalizedOffset(offset int) Option {
	return func(p *Parser) { p.merchants.MinCapitalizedOffset = offset }
}

// New creates a new Parser instance
func New(v Vocabulary, opts ...Option) *Parser {
	p := &Parser{
		classifier: NewClassifier(v),
		amounts:    NewAmountExtractor(v.CurrencyTokens),
		merchants:  NewMerchantExtractor(v),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a live message. The detection time is the wall clock and the
// ID is random.
func (p *Parser) Parse(text string) (models.ParsedTransaction, bool) {
	txn, ok := p.parse(text, p.now())
	if !ok {
		return models.ParsedTransaction{}, false
	}
	txn.ID = uuid.NewString()
	return txn, true
}

// ParseAt parses a historical message detected at the given instant. The ID is
// derived from timestamp, amount and merchant, so parsing the same message
// again yields the same ID.
func (p *Parser) ParseAt(text string, at time.Time) (models.ParsedTransaction, bool) {
	txn, ok := p.parse(text, at)
	if !ok {
		return models.ParsedTransaction{}, false
	}
	key := fmt.Sprintf("%d|%s|%s", txn.Timestamp, txn.Amount.String(), txn.Merchant)
	txn.ID = uuid.NewSHA1(replayNamespace, []byte(key)).String()
	return txn, true
}

func (p *Parser) parse(text string, at time.Time) (models.ParsedTransaction, bool) {
	if !p.classifier.LooksLikeTransaction(text) {
		return models.ParsedTransaction{}, false
	}

	direction := p.classifier.Classify(text)
	if direction == Unknown {
		return models.ParsedTransaction{}, false
	}

	amount, ok := p.amounts.Extract(text)
	if !ok || !amount.IsPositive() {
		return models.ParsedTransaction{}, false
	}

	txnType := models.TypeExpense
	if direction == Credit {
		txnType = models.TypeIncome
	}

	// Note stays empty: the raw message body is never stored.
	return models.ParsedTransaction{
		Amount:    amount,
		Merchant:  p.merchants.Extract(text),
		Type:      txnType,
		Timestamp: at.UnixMilli(),
	}, true
}
