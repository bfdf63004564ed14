package alerts

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"paisometer/internal/models"
	"paisometer/internal/store"
)

// Budget context keys.
const (
	KeyDailyLimit   = "budget_daily_limit"
	KeyCurrentSpent = "budget_current_spent"
)

var (
	cautionRatio = decimal.NewFromFloat(0.7)
	limitRatio   = decimal.NewFromInt(1)
)

// Level says which threshold an expense crossed.
type Level int

const (
	Caution Level = iota + 1
	LimitReached
	Overdraft
)

func (l Level) String() string {
	switch l {
	case Caution:
		return "caution"
	case LimitReached:
		return "limit_reached"
	case Overdraft:
		return "overdraft"
	default:
		return "none"
	}
}

// Alert is one budget warning.
type Alert struct {
	Level   Level           `json:"level"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Spent   decimal.Decimal `json:"spent"`
	Limit   decimal.Decimal `json:"limit"`
}

// Notifier delivers alerts to the user.
type Notifier interface {
	Notify(ctx context.Context, alert Alert)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, alert Alert)

func (f NotifierFunc) Notify(ctx context.Context, alert Alert) { f(ctx, alert) }

// Budget is the daily limit and what has been spent against it so far.
type Budget struct {
	Limit decimal.Decimal `json:"limit"`
	Spent decimal.Decimal `json:"spent"`
}

// Monitor checks each new expense against the stored budget context.
type Monitor struct {
	kv       store.KV
	notifier Notifier
	log      zerolog.Logger

	// mu serializes the read-add-write of the spent total.
	mu sync.Mutex
}

// NewMonitor creates a monitor. notifier may be nil, in which case alerts are only logged.
func NewMonitor(kv store.KV, notifier Notifier, log zerolog.Logger) *Monitor {
	return &Monitor{
		kv:       kv,
		notifier: notifier,
		log:      log.With().Str("component", "alerts").Logger(),
	}
}

// SetBudget stores the budget context.
func (m *Monitor) SetBudget(ctx context.Context, b Budget) error {
	if b.Limit.IsNegative() || b.Spent.IsNegative() {
		return fmt.Errorf("budget values must not be negative")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.kv.Set(ctx, KeyDailyLimit, b.Limit.String()); err != nil {
		return fmt.Errorf("failed to store daily limit: %w", err)
	}
	if err := m.kv.Set(ctx, KeyCurrentSpent, b.Spent.String()); err != nil {
		return fmt.Errorf("failed to store current spent: %w", err)
	}
	return nil
}

// Budget reads the stored budget context. ok is false when no limit is set.
func (m *Monitor) Budget(ctx context.Context) (Budget, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.budget(ctx)
}

func (m *Monitor) budget(ctx context.Context) (Budget, bool, error) {
	limit, ok, err := m.readDecimal(ctx, KeyDailyLimit)
	if err != nil || !ok {
		return Budget{}, false, err
	}
	spent, _, err := m.readDecimal(ctx, KeyCurrentSpent)
	if err != nil {
		return Budget{}, false, err
	}
	return Budget{Limit: limit, Spent: spent}, true, nil
}

// Evaluate adds an expense to the spent total and raises an alert when the
// spend ratio crosses 70% or 100% of the daily limit, or on every expense
// once the limit is already exceeded. Income and missing budget context are
// ignored. Returns the alert raised, if any.
func (m *Monitor) Evaluate(ctx context.Context, txn models.ParsedTransaction) (Alert, bool) {
	if txn.Type != models.TypeExpense {
		return Alert{}, false
	}

	alert, raised := m.record(ctx, txn)
	if raised && m.notifier != nil {
		m.notifier.Notify(ctx, alert)
	}
	return alert, raised
}

// record adds txn to the spent total and reports the threshold it crossed.
func (m *Monitor) record(ctx context.Context, txn models.ParsedTransaction) (Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok, err := m.budget(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to read budget context")
		return Alert{}, false
	}
	if !ok || !b.Limit.IsPositive() {
		return Alert{}, false
	}

	after := b.Spent.Add(txn.Amount)
	oldRatio := b.Spent.Div(b.Limit)
	ratio := after.Div(b.Limit)

	if err := m.kv.Set(ctx, KeyCurrentSpent, after.String()); err != nil {
		m.log.Error().Err(err).Msg("failed to update current spent")
	}

	level := crossed(oldRatio, ratio)
	if level == 0 {
		return Alert{}, false
	}

	m.log.Warn().
		Str("level", level.String()).
		Str("spent", after.String()).
		Str("limit", b.Limit.String()).
		Msg("budget threshold crossed")
	return build(level, after, b.Limit), true
}

// crossed picks the most severe threshold between the two ratios.
func crossed(oldRatio, ratio decimal.Decimal) Level {
	switch {
	case ratio.GreaterThan(limitRatio) && oldRatio.GreaterThanOrEqual(limitRatio):
		return Overdraft
	case ratio.GreaterThanOrEqual(limitRatio) && oldRatio.LessThan(limitRatio):
		return LimitReached
	case ratio.GreaterThanOrEqual(cautionRatio) && oldRatio.LessThan(cautionRatio):
		return Caution
	default:
		return 0
	}
}

func build(level Level, spent, limit decimal.Decimal) Alert {
	a := Alert{Level: level, Spent: spent, Limit: limit}
	switch level {
	case Caution:
		a.Title = "Caution: 70% of today's budget spent"
		a.Message = fmt.Sprintf("Only ₹%s left for today.", limit.Sub(spent).StringFixed(0))
	case LimitReached:
		a.Title = "Daily limit reached"
		a.Message = "Nothing left in today's budget."
	case Overdraft:
		a.Title = "Over budget"
		a.Message = fmt.Sprintf("You are ₹%s over today's limit.", spent.Sub(limit).StringFixed(0))
	}
	return a
}

func (m *Monitor) readDecimal(ctx context.Context, key string) (decimal.Decimal, bool, error) {
	raw, found, err := m.kv.Get(ctx, key)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !found || raw == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("malformed %s %q: %w", key, raw, err)
	}
	return d, true, nil
}
