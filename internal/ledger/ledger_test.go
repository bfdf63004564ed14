package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paisometer/internal/models"
	"paisometer/internal/queue"
	"paisometer/internal/store"
)

func entry(id string, ts int64, category string) models.LedgerTransaction {
	return models.LedgerTransaction{
		ID:        id,
		Amount:    decimal.NewFromInt(100),
		Type:      models.TypeExpense,
		Category:  category,
		Timestamp: ts,
	}
}

func entryIDs(txns []models.LedgerTransaction) []string {
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		popped   []models.LedgerTransaction
		local    []models.LedgerTransaction
		wantIDs  []string
		wantCats map[string]string
	}{
		{
			name:    "interleaved by timestamp",
			popped:  []models.LedgerTransaction{entry("p1", 300, "food"), entry("p2", 100, "food")},
			local:   []models.LedgerTransaction{entry("l1", 200, "bills")},
			wantIDs: []string{"p1", "l1", "p2"},
		},
		{
			name:     "popped wins on id collision",
			popped:   []models.LedgerTransaction{entry("x", 100, "food")},
			local:    []models.LedgerTransaction{entry("x", 100, "bills")},
			wantIDs:  []string{"x"},
			wantCats: map[string]string{"x": "food"},
		},
		{
			name:    "both empty",
			wantIDs: []string{},
		},
		{
			name:    "equal timestamps keep popped first",
			popped:  []models.LedgerTransaction{entry("p", 100, "food")},
			local:   []models.LedgerTransaction{entry("l", 100, "food")},
			wantIDs: []string{"p", "l"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.popped, tt.local)
			assert.Equal(t, tt.wantIDs, entryIDs(got))
			for _, g := range got {
				if want, ok := tt.wantCats[g.ID]; ok {
					assert.Equal(t, want, g.Category)
				}
			}
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	x := []models.LedgerTransaction{entry("a", 1, "food"), entry("b", 3, "bills"), entry("c", 2, "other")}

	once := Merge(x, x)
	assert.Equal(t, []string{"b", "c", "a"}, entryIDs(once))
	assert.Equal(t, once, Merge(once, once))
}

func TestFromQueued(t *testing.T) {
	q := models.QueuedTransaction{
		ParsedTransaction: models.ParsedTransaction{
			ID: "q1", Amount: decimal.NewFromInt(50), Merchant: "Uber",
			Type: models.TypeIncome, Timestamp: 42, Note: "refund",
		},
		Category: models.CatUncategorized,
	}

	got := FromQueued(q, models.CatOther)
	assert.Equal(t, models.CatOther, got.Category)
	assert.Equal(t, models.TypeIncome, got.Type)
	assert.Equal(t, "Uber", got.Merchant)
	assert.Equal(t, "refund", got.Note)

	q.Category = models.CatTransport
	assert.Equal(t, models.CatTransport, FromQueued(q, models.CatOther).Category)

	q.Category = "groceries"
	assert.Equal(t, models.CatOther, FromQueued(q, models.CatOther).Category)
}

func TestRepository_Add(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())

	require.NoError(t, repo.Add(ctx, entry("old", 100, "food")))
	require.NoError(t, repo.Add(ctx, entry("new", 200, "bills")))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, entryIDs(all))

	tests := []struct {
		name string
		txn  models.LedgerTransaction
	}{
		{"zero amount", models.LedgerTransaction{ID: "a", Type: models.TypeExpense, Category: "food"}},
		{"negative amount", models.LedgerTransaction{ID: "a", Amount: decimal.NewFromInt(-1), Type: models.TypeExpense, Category: "food"}},
		{"bad type", models.LedgerTransaction{ID: "a", Amount: decimal.NewFromInt(1), Type: "refund", Category: "food"}},
		{"bad category", models.LedgerTransaction{ID: "a", Amount: decimal.NewFromInt(1), Type: models.TypeIncome, Category: "uncategorized"}},
		{"missing id", models.LedgerTransaction{Amount: decimal.NewFromInt(1), Type: models.TypeIncome, Category: "food"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, repo.Add(ctx, tt.txn), ErrInvalidTransaction)
		})
	}
}

func newSyncFixture(kv store.KV, guesser CategoryGuesser) (*queue.Queue, *Repository, *Syncer) {
	q := queue.New(kv, zerolog.Nop())
	repo := NewRepository(kv)
	return q, repo, NewSyncer(q, repo, guesser, zerolog.Nop())
}

func parsed(id string, ts int64, merchant string) models.ParsedTransaction {
	return models.ParsedTransaction{
		ID: id, Amount: decimal.NewFromInt(10), Merchant: merchant,
		Type: models.TypeExpense, Timestamp: ts,
	}
}

func TestSyncer_Sync(t *testing.T) {
	ctx := context.Background()
	q, repo, s := newSyncFixture(store.NewMemory(), nil)

	require.NoError(t, repo.Add(ctx, entry("manual", 150, "bills")))
	require.NoError(t, q.Append(ctx, parsed("a", 100, "Swiggy")))
	require.NoError(t, q.Append(ctx, parsed("b", 200, "Uber")))
	_, err := q.UpdateDisposition(ctx, "b", models.CatTransport, nil)
	require.NoError(t, err)

	res, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 2, Total: 3}, res)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "manual", "a"}, entryIDs(all))
	assert.Equal(t, models.CatTransport, all[0].Category)
	assert.Equal(t, models.CatOther, all[2].Category)

	res, err = s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 0, Total: 3}, res)
}

func TestSyncer_ReplayedIDIsNotDoubled(t *testing.T) {
	ctx := context.Background()
	q, repo, s := newSyncFixture(store.NewMemory(), nil)

	require.NoError(t, q.Append(ctx, parsed("same", 100, "Swiggy")))
	_, err := q.UpdateDisposition(ctx, "same", models.CatFood, nil)
	require.NoError(t, err)
	_, err = s.Sync(ctx)
	require.NoError(t, err)

	// Same message imported again, nobody categorized it this time.
	require.NoError(t, q.Append(ctx, parsed("same", 100, "Swiggy")))
	_, err = s.Sync(ctx)
	require.NoError(t, err)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.CatFood, all[0].Category)
}

func TestSyncer_Guesser(t *testing.T) {
	ctx := context.Background()
	q, repo, s := newSyncFixture(store.NewMemory(), guessFunc(func(m, _ string) string {
		if m == "Zomato" {
			return models.CatFood
		}
		return "nonsense"
	}))

	require.NoError(t, q.Append(ctx, parsed("z", 2, "Zomato")))
	require.NoError(t, q.Append(ctx, parsed("u", 1, "Unknown")))
	_, err := s.Sync(ctx)
	require.NoError(t, err)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.CatFood, all[0].Category)
	assert.Equal(t, models.CatOther, all[1].Category)
}

func TestSyncer_SaveFailureRequeues(t *testing.T) {
	ctx := context.Background()
	kv := &ledgerFailKV{Memory: store.NewMemory()}
	q, repo, s := newSyncFixture(kv, nil)

	require.NoError(t, q.Append(ctx, parsed("a", 1, "Swiggy")))
	kv.failLedger.Store(true)

	_, err := s.Sync(ctx)
	assert.Error(t, err)

	pending, err := q.Peek(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a", pending[0].ID)

	kv.failLedger.Store(false)
	res, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncer_ConcurrentCallsImportOnce(t *testing.T) {
	ctx := context.Background()
	q, repo, s := newSyncFixture(store.NewMemory(), nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Append(ctx, parsed(string(rune('a'+i)), int64(i), "Swiggy")))
	}

	var wg sync.WaitGroup
	var imported atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Sync(ctx)
			assert.NoError(t, err)
			imported.Add(int32(res.Imported))
		}()
	}
	wg.Wait()

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.GreaterOrEqual(t, imported.Load(), int32(5))
}

func TestSyncer_ConcurrentAddIsKept(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	q, repo, s := newSyncFixture(store.NewMemory(), guessFunc(func(string, string) string {
		once.Do(func() { close(entered) })
		<-release
		return models.CatFood
	}))
	require.NoError(t, q.Append(ctx, parsed("p1", 100, "Swiggy")))

	syncDone := make(chan error, 1)
	go func() {
		_, err := s.Sync(ctx)
		syncDone <- err
	}()
	<-entered

	addDone := make(chan error, 1)
	go func() {
		addDone <- repo.Add(ctx, entry("manual", 200, "bills"))
	}()

	// Give the add a chance to reach the repository while the sync is mid-merge.
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-syncDone)
	require.NoError(t, <-addDone)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "manual"}, entryIDs(all))
}

func TestRepository_UpdateErrorLeavesLedger(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(store.NewMemory())
	require.NoError(t, repo.Add(ctx, entry("keep", 100, "food")))

	err := repo.Update(ctx, func([]models.LedgerTransaction) ([]models.LedgerTransaction, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, entryIDs(all))
}

type guessFunc func(merchant, note string) string

func (f guessFunc) Categorize(merchant, note string) string { return f(merchant, note) }

type ledgerFailKV struct {
	*store.Memory
	failLedger atomic.Bool
}

func (f *ledgerFailKV) Set(ctx context.Context, key, value string) error {
	if key == Key && f.failLedger.Load() {
		return errors.New("quota exceeded")
	}
	return f.Memory.Set(ctx, key, value)
}
