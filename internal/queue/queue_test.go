package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paisometer/internal/models"
	"paisometer/internal/store"
)

func parsed(id string, amount int64) models.ParsedTransaction {
	return models.ParsedTransaction{
		ID:        id,
		Amount:    decimal.NewFromInt(amount),
		Merchant:  "Swiggy",
		Type:      models.TypeExpense,
		Timestamp: 1_700_000_000_000 + amount,
	}
}

func ids(items []models.QueuedTransaction) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestQueue_AppendPopAll(t *testing.T) {
	ctx := context.Background()
	q := New(store.NewMemory(), zerolog.Nop())

	require.NoError(t, q.Append(ctx, parsed("a", 1)))
	require.NoError(t, q.Append(ctx, parsed("b", 2)))
	require.NoError(t, q.Append(ctx, parsed("c", 3)))

	popped := q.PopAll(ctx)
	assert.Equal(t, []string{"a", "b", "c"}, ids(popped))
	for _, it := range popped {
		assert.Equal(t, models.CatUncategorized, it.Category)
	}

	again := q.PopAll(ctx)
	assert.NotNil(t, again)
	assert.Empty(t, again)
}

func TestQueue_PopAllEmptyNeverNil(t *testing.T) {
	q := New(store.NewMemory(), zerolog.Nop())
	got := q.PopAll(context.Background())
	require.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestQueue_StoredFormat(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	q := New(kv, zerolog.Nop())

	txn := parsed("x1", 150)
	txn.Note = "lunch"
	require.NoError(t, q.Append(ctx, txn))

	raw, found, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `[{
		"id": "x1",
		"amount": 150,
		"merchant": "Swiggy",
		"type": "expense",
		"timestamp": 1700000000150,
		"note": "lunch",
		"category": "uncategorized"
	}]`, raw)
}

func TestQueue_UpdateDisposition(t *testing.T) {
	ctx := context.Background()
	q := New(store.NewMemory(), zerolog.Nop())
	require.NoError(t, q.Append(ctx, parsed("a", 1)))
	require.NoError(t, q.Append(ctx, parsed("b", 2)))

	note := "team lunch"
	ok, err := q.UpdateDisposition(ctx, "b", models.CatFood, &note)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.UpdateDisposition(ctx, "a", models.CatBills, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.UpdateDisposition(ctx, "zzz", models.CatFood, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	items := q.PopAll(ctx)
	require.Len(t, items, 2)
	assert.Equal(t, models.CatBills, items[0].Category)
	assert.Empty(t, items[0].Note)
	assert.Equal(t, models.CatFood, items[1].Category)
	assert.Equal(t, "team lunch", items[1].Note)
}

func TestQueue_Requeue(t *testing.T) {
	ctx := context.Background()
	q := New(store.NewMemory(), zerolog.Nop())
	require.NoError(t, q.Append(ctx, parsed("a", 1)))
	popped := q.PopAll(ctx)

	require.NoError(t, q.Append(ctx, parsed("b", 2)))
	require.NoError(t, q.Requeue(ctx, popped))
	require.NoError(t, q.Requeue(ctx, nil))

	peek, err := q.Peek(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(peek))
}

func TestQueue_ClearFailureReturnsNothing(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: store.NewMemory()}
	q := New(kv, zerolog.Nop())
	require.NoError(t, q.Append(ctx, parsed("a", 1)))

	kv.failSet = true
	assert.Empty(t, q.PopAll(ctx))

	kv.failSet = false
	assert.Equal(t, []string{"a"}, ids(q.PopAll(ctx)), "items stay for the next pop")
}

func TestQueue_AppendFailure(t *testing.T) {
	kv := &flakyKV{Memory: store.NewMemory(), failSet: true}
	q := New(kv, zerolog.Nop())
	assert.Error(t, q.Append(context.Background(), parsed("a", 1)))
}

func TestQueue_CorruptQueue(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, Key, "not json"))
	q := New(kv, zerolog.Nop())
	q.now = func() time.Time { return time.UnixMilli(1705046400000) }

	assert.Empty(t, q.PopAll(ctx))

	side, found, err := kv.Get(ctx, CorruptKeyPrefix+"1705046400000")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "not json", side, "the bad value is kept for inspection")

	require.NoError(t, q.Append(ctx, parsed("a", 1)))
	popped := q.PopAll(ctx)
	require.Len(t, popped, 1)
	assert.Equal(t, "a", popped[0].ID)
}

func TestQueue_CorruptQueueUnrecoverable(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Memory: store.NewMemory(), failSet: true}
	require.NoError(t, kv.Memory.Set(ctx, Key, `[{"id":`))
	q := New(kv, zerolog.Nop())

	assert.Error(t, q.Append(ctx, parsed("a", 1)), "without a place to move it the bad value is left alone")
	raw, _, err := kv.Memory.Get(ctx, Key)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":`, raw)
}

func TestQueue_ConcurrentAppendAndPop(t *testing.T) {
	ctx := context.Background()
	q := New(store.NewMemory(), zerolog.Nop())

	const writers = 40
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		popped []models.QueuedTransaction
	)
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, q.Append(ctx, parsed(fmt.Sprintf("t%d", i), int64(i+1))))
		}(i)
		go func() {
			defer wg.Done()
			got := q.PopAll(ctx)
			mu.Lock()
			popped = append(popped, got...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	popped = append(popped, q.PopAll(ctx)...)

	seen := make(map[string]int)
	for _, it := range popped {
		seen[it.ID]++
	}
	assert.Len(t, seen, writers, "every item is popped")
	for id, n := range seen {
		assert.Equal(t, 1, n, "item %s popped once", id)
	}
}

type flakyKV struct {
	*store.Memory
	failSet bool
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.New("write refused")
	}
	return f.Memory.Set(ctx, key, value)
}
