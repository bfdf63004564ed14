package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"paisometer/internal/models"
	"paisometer/internal/store"
)

// Key is where the pending list lives in the store.
const Key = "sms_queue"

// CorruptKeyPrefix prefixes the key an undecodable queue value is moved to.
const CorruptKeyPrefix = Key + "_corrupt_"

// Queue is the durable staging list between detection and the ledger. One
// mutex covers every read-modify-write of the stored list.
type Queue struct {
	kv  store.KV
	log zerolog.Logger
	mu  sync.Mutex
	now func() time.Time
}

// New creates a queue over kv.
func New(kv store.KV, log zerolog.Logger) *Queue {
	return &Queue{
		kv:  kv,
		log: log.With().Str("component", "queue").Logger(),
		now: time.Now,
	}
}

// Append stores txn at the tail with the default category. It returns once
// the write is durable.
func (q *Queue) Append(ctx context.Context, txn models.ParsedTransaction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return err
	}
	items = append(items, models.NewQueued(txn))
	if err := q.save(ctx, items); err != nil {
		return err
	}

	q.log.Info().Str("id", txn.ID).Int("pending", len(items)).Msg("transaction queued")
	return nil
}

// PopAll returns every pending item in insertion order and empties the
// queue. If the queue cannot be cleared nothing is returned, so no item is
// ever handed out twice. The result is never nil.
func (q *Queue) PopAll(ctx context.Context) []models.QueuedTransaction {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		q.log.Error().Err(err).Msg("failed to read pending queue")
		return []models.QueuedTransaction{}
	}
	if len(items) == 0 {
		return []models.QueuedTransaction{}
	}
	if err := q.save(ctx, nil); err != nil {
		q.log.Error().Err(err).Msg("failed to clear pending queue, leaving items in place")
		return []models.QueuedTransaction{}
	}
	return items
}

// Peek returns the pending items without removing them.
func (q *Queue) Peek(ctx context.Context) ([]models.QueuedTransaction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// UpdateDisposition sets the category and, when note is non-nil, the note of
// the pending item with the given id. It reports whether the item was found;
// a missing id is not an error.
func (q *Queue) UpdateDisposition(ctx context.Context, id, category string, note *string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		return false, err
	}

	found := false
	for i := range items {
		if items[i].ID != id {
			continue
		}
		items[i].Category = category
		if note != nil {
			items[i].Note = *note
		}
		found = true
		break
	}
	if !found {
		q.log.Debug().Str("id", id).Msg("disposition for unknown pending id ignored")
		return false, nil
	}

	if err := q.save(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

// Requeue puts items back at the head of the queue, ahead of anything
// appended since they were popped.
func (q *Queue) Requeue(ctx context.Context, items []models.QueuedTransaction) error {
	if len(items) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	current, err := q.load(ctx)
	if err != nil {
		return err
	}
	merged := make([]models.QueuedTransaction, 0, len(items)+len(current))
	merged = append(merged, items...)
	merged = append(merged, current...)
	return q.save(ctx, merged)
}

// load reads the stored list. An undecodable value is moved aside to a
// CorruptKeyPrefix key and the queue carries on empty.
func (q *Queue) load(ctx context.Context) ([]models.QueuedTransaction, error) {
	raw, found, err := q.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	items := []models.QueuedTransaction{}
	if !found || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		if qerr := q.quarantine(ctx, raw, err); qerr != nil {
			return nil, qerr
		}
		return []models.QueuedTransaction{}, nil
	}
	return items, nil
}

func (q *Queue) quarantine(ctx context.Context, raw string, decodeErr error) error {
	side := CorruptKeyPrefix + strconv.FormatInt(q.now().UnixMilli(), 10)
	if err := q.kv.Set(ctx, side, raw); err != nil {
		return fmt.Errorf("failed to set aside corrupt queue: %w", err)
	}
	if err := q.save(ctx, nil); err != nil {
		return err
	}
	q.log.Error().Err(decodeErr).Str("moved_to", side).Int("bytes", len(raw)).Msg("pending queue was corrupt, starting empty")
	return nil
}

func (q *Queue) save(ctx context.Context, items []models.QueuedTransaction) error {
	if items == nil {
		items = []models.QueuedTransaction{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode queue: %w", err)
	}
	if err := q.kv.Set(ctx, Key, string(raw)); err != nil {
		return fmt.Errorf("failed to write queue: %w", err)
	}
	return nil
}
