package dedup

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"paisometer/internal/models"
	"paisometer/internal/store"
)

// Storage keys for the last accepted transaction.
const (
	KeyLastAmount    = "dedup_last_amount"
	KeyLastTimestamp = "dedup_last_timestamp"
)

// DefaultWindow is how close two equal amounts must be to count as one event.
const DefaultWindow = 5 * time.Second

// Gate suppresses the second of two notifications describing the same
// transaction, e.g. the bank SMS and the payment app push for one payment.
// Only the most recent accepted transaction is remembered.
type Gate struct {
	kv     store.KV
	window time.Duration
	log    zerolog.Logger

	mu            sync.Mutex
	restored      bool
	lastAmount    decimal.Decimal
	lastTimestamp int64
	hasLast       bool

	// state before the last acceptance, for Forget
	prevAmount    decimal.Decimal
	prevTimestamp int64
	prevHas       bool
}

// New creates a gate persisting its state in kv. A non-positive window uses DefaultWindow.
func New(kv store.KV, window time.Duration, log zerolog.Logger) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{
		kv:     kv,
		window: window,
		log:    log.With().Str("component", "dedup").Logger(),
	}
}

// IsDuplicate reports whether txn repeats the last accepted transaction: same
// amount and detected less than the window apart. A transaction that is not
// a duplicate becomes the new last transaction, persisted before returning.
func (g *Gate) IsDuplicate(ctx context.Context, txn models.ParsedTransaction) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.restore(ctx)

	if g.hasLast && txn.Amount.Equal(g.lastAmount) && absMillis(txn.Timestamp-g.lastTimestamp) < g.window.Milliseconds() {
		g.log.Debug().
			Str("amount", txn.Amount.String()).
			Int64("delta_ms", txn.Timestamp-g.lastTimestamp).
			Msg("duplicate transaction suppressed")
		return true
	}

	g.prevAmount, g.prevTimestamp, g.prevHas = g.lastAmount, g.lastTimestamp, g.hasLast
	g.lastAmount = txn.Amount
	g.lastTimestamp = txn.Timestamp
	g.hasLast = true
	g.persist(ctx)
	return false
}

// Forget withdraws the acceptance of txn when it is still the last accepted
// transaction, e.g. because it could not be queued. A redelivery of the same
// notification is then accepted again.
func (g *Gate) Forget(ctx context.Context, txn models.ParsedTransaction) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.hasLast || !g.lastAmount.Equal(txn.Amount) || g.lastTimestamp != txn.Timestamp {
		return
	}

	g.lastAmount, g.lastTimestamp, g.hasLast = g.prevAmount, g.prevTimestamp, g.prevHas
	g.prevAmount, g.prevTimestamp, g.prevHas = decimal.Zero, 0, false
	g.persist(ctx)
}

// restore loads the last transaction once per process. Unreadable state is
// treated as no history.
func (g *Gate) restore(ctx context.Context) {
	if g.restored {
		return
	}
	g.restored = true

	rawAmount, foundAmount, err := g.kv.Get(ctx, KeyLastAmount)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to read dedup amount, starting without history")
		return
	}
	rawTS, foundTS, err := g.kv.Get(ctx, KeyLastTimestamp)
	if err != nil {
		g.log.Error().Err(err).Msg("failed to read dedup timestamp, starting without history")
		return
	}
	if !foundAmount || !foundTS || rawAmount == "" || rawTS == "" {
		return
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		g.log.Warn().Str("value", rawAmount).Msg("ignoring malformed dedup amount")
		return
	}
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		g.log.Warn().Str("value", rawTS).Msg("ignoring malformed dedup timestamp")
		return
	}

	g.lastAmount = amount
	g.lastTimestamp = ts
	g.hasLast = true
}

// persist stores the last transaction; with none, both keys are blanked.
func (g *Gate) persist(ctx context.Context) {
	amount, ts := "", ""
	if g.hasLast {
		amount = g.lastAmount.String()
		ts = strconv.FormatInt(g.lastTimestamp, 10)
	}
	if err := g.kv.Set(ctx, KeyLastAmount, amount); err != nil {
		g.log.Error().Err(err).Msg("failed to persist dedup amount")
		return
	}
	if err := g.kv.Set(ctx, KeyLastTimestamp, ts); err != nil {
		g.log.Error().Err(err).Msg("failed to persist dedup timestamp")
	}
}

func absMillis(d int64) int64 {
	if d < 0 {
		return -d
	}
	return d
}
