package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"paisometer/internal/alerts"
	"paisometer/internal/models"
	"paisometer/internal/notify"
)

// Outcome is what happened to one notification.
type Outcome int

const (
	Filtered Outcome = iota
	Empty
	NoMatch
	Duplicate
	QueueFailed
	Queued
)

func (o Outcome) String() string {
	switch o {
	case Filtered:
		return "filtered"
	case Empty:
		return "empty"
	case NoMatch:
		return "no_match"
	case Duplicate:
		return "duplicate"
	case QueueFailed:
		return "queue_failed"
	case Queued:
		return "queued"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome name in JSON responses.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Parser extracts a transaction from message text.
type Parser interface {
	Parse(text string) (models.ParsedTransaction, bool)
	ParseAt(text string, at time.Time) (models.ParsedTransaction, bool)
}

// Deduper suppresses repeated notifications for one event.
type Deduper interface {
	IsDuplicate(ctx context.Context, txn models.ParsedTransaction) bool
	Forget(ctx context.Context, txn models.ParsedTransaction)
}

// Appender stages a transaction durably.
type Appender interface {
	Append(ctx context.Context, txn models.ParsedTransaction) error
}

// BudgetWatcher checks a queued expense against the budget.
type BudgetWatcher interface {
	Evaluate(ctx context.Context, txn models.ParsedTransaction) (alerts.Alert, bool)
}

// Result reports the handling of one notification.
type Result struct {
	Outcome Outcome                   `json:"outcome"`
	Txn     *models.ParsedTransaction `json:"transaction,omitempty"`
	// Prompt is set for queued expenses, which the user is asked to categorize.
	Prompt bool          `json:"prompt"`
	Alert  *alerts.Alert `json:"alert,omitempty"`
}

// Ingestor runs one notification through filter, parser, dedup gate and queue.
type Ingestor struct {
	filter *notify.Filter
	parser Parser
	gate   Deduper
	queue  Appender
	budget BudgetWatcher
	log    zerolog.Logger
}

// NewIngestor wires the pipeline. budget may be nil.
func NewIngestor(filter *notify.Filter, parser Parser, gate Deduper, queue Appender, budget BudgetWatcher, log zerolog.Logger) *Ingestor {
	return &Ingestor{
		filter: filter,
		parser: parser,
		gate:   gate,
		queue:  queue,
		budget: budget,
		log:    log.With().Str("component", "ingest").Logger(),
	}
}

// Handle processes one notification. It never fails outward: every problem
// is logged and reported through the outcome.
func (i *Ingestor) Handle(ctx context.Context, n models.Notification) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			i.log.Error().Interface("panic", r).Str("source_app", n.SourceApp).Msg("notification handling panicked")
			res = Result{Outcome: NoMatch}
		}
	}()

	if !i.filter.Accept(n) {
		i.log.Debug().Str("source_app", n.SourceApp).Bool("ongoing", n.Ongoing).Msg("notification filtered")
		return Result{Outcome: Filtered}
	}

	text := notify.Compose(n)
	if text == "" {
		i.log.Debug().Str("source_app", n.SourceApp).Msg("notification has no text")
		return Result{Outcome: Empty}
	}

	live := n.ReplayAt.IsZero()

	var (
		txn models.ParsedTransaction
		ok  bool
	)
	if live {
		txn, ok = i.parser.Parse(text)
	} else {
		txn, ok = i.parser.ParseAt(text, n.ReplayAt)
	}
	if !ok {
		i.log.Debug().Str("source_app", n.SourceApp).Msg("no transaction in notification")
		return Result{Outcome: NoMatch}
	}

	// Replays carry deterministic IDs and are collapsed by the ledger merge;
	// running them through the gate would overwrite its live state with
	// historical instants.
	if live && i.gate.IsDuplicate(ctx, txn) {
		return Result{Outcome: Duplicate, Txn: &txn}
	}

	if err := i.queue.Append(ctx, txn); err != nil {
		if live {
			i.gate.Forget(ctx, txn)
		}
		i.log.Error().Err(err).Str("id", txn.ID).Msg("failed to queue transaction")
		return Result{Outcome: QueueFailed, Txn: &txn}
	}

	i.log.Info().
		Str("id", txn.ID).
		Str("type", string(txn.Type)).
		Str("amount", txn.Amount.String()).
		Str("merchant", txn.Merchant).
		Msg("transaction captured")

	res = Result{Outcome: Queued, Txn: &txn, Prompt: txn.Type == models.TypeExpense}
	// Replayed history says nothing about today's budget.
	if i.budget != nil && live {
		if alert, raised := i.budget.Evaluate(ctx, txn); raised {
			res.Alert = &alert
		}
	}
	return res
}
