package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"paisometer/internal/models"
)

// PendingSource is the queue side of a sync.
type PendingSource interface {
	PopAll(ctx context.Context) []models.QueuedTransaction
	Requeue(ctx context.Context, items []models.QueuedTransaction) error
}

// CategoryGuesser suggests a category for an uncategorized item.
type CategoryGuesser interface {
	Categorize(merchant, note string) string
}

// Result summarizes one sync.
type Result struct {
	Imported int `json:"imported"`
	Total    int `json:"total"`
}

// Syncer moves pending transactions into the ledger. Concurrent calls share
// one in-flight run.
type Syncer struct {
	pending PendingSource
	repo    *Repository
	guesser CategoryGuesser
	log     zerolog.Logger
	group   singleflight.Group
}

// NewSyncer creates a syncer. guesser may be nil, in which case uncategorized
// items land in "other".
func NewSyncer(pending PendingSource, repo *Repository, guesser CategoryGuesser, log zerolog.Logger) *Syncer {
	return &Syncer{
		pending: pending,
		repo:    repo,
		guesser: guesser,
		log:     log.With().Str("component", "sync").Logger(),
	}
}

// Sync pops every pending item, merges it into the ledger and writes the
// ledger back. If the ledger cannot be read or written the popped items are
// put back on the queue.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	v, err, shared := s.group.Do("sync", func() (interface{}, error) {
		return s.sync(ctx)
	})
	if shared {
		s.log.Debug().Msg("joined in-flight sync")
	}
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (s *Syncer) sync(ctx context.Context) (Result, error) {
	popped := s.pending.PopAll(ctx)

	if len(popped) == 0 {
		local, err := s.repo.All(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to load ledger: %w", err)
		}
		return Result{Total: len(local)}, nil
	}

	var total int
	err := s.repo.Update(ctx, func(local []models.LedgerTransaction) ([]models.LedgerTransaction, error) {
		merged := Merge(s.convert(popped, local), local)
		total = len(merged)
		return merged, nil
	})
	if err != nil {
		s.requeue(ctx, popped)
		return Result{}, fmt.Errorf("failed to update ledger: %w", err)
	}

	s.log.Info().Int("imported", len(popped)).Int("total", total).Msg("synced pending transactions")
	return Result{Imported: len(popped), Total: total}, nil
}

// convert turns popped items into ledger entries. An uncategorized item that
// is already in the ledger keeps the ledger's category and note.
func (s *Syncer) convert(popped []models.QueuedTransaction, local []models.LedgerTransaction) []models.LedgerTransaction {
	existing := make(map[string]models.LedgerTransaction, len(local))
	for _, t := range local {
		existing[t.ID] = t
	}

	out := make([]models.LedgerTransaction, 0, len(popped))
	for _, q := range popped {
		fallback := models.CatOther
		if s.guesser != nil {
			if guess := s.guesser.Categorize(q.Merchant, q.Note); models.ValidCategory(guess) {
				fallback = guess
			}
		}

		t := FromQueued(q, fallback)
		if prev, ok := existing[q.ID]; ok && (q.Category == "" || q.Category == models.CatUncategorized) {
			t.Category = prev.Category
			if t.Note == "" {
				t.Note = prev.Note
			}
		}
		out = append(out, t)
	}
	return out
}

func (s *Syncer) requeue(ctx context.Context, items []models.QueuedTransaction) {
	if len(items) == 0 {
		return
	}
	if err := s.pending.Requeue(ctx, items); err != nil {
		s.log.Error().Err(err).Int("items", len(items)).Msg("failed to requeue popped transactions")
	}
}
