package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"paisometer/internal/models"
	"paisometer/internal/store"
)

// Key is where the ledger lives in the store.
const Key = "ledger_transactions"

// ErrInvalidTransaction is returned for a manual entry that fails validation.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Repository persists the ledger as one JSON array.
type Repository struct {
	kv store.KV
	mu sync.Mutex
}

// NewRepository creates a ledger repository over kv.
func NewRepository(kv store.KV) *Repository {
	return &Repository{kv: kv}
}

// All returns every ledger entry in stored order.
func (r *Repository) All(ctx context.Context) ([]models.LedgerTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Update runs fn over the current ledger and stores what it returns, all
// under the repository lock, so no concurrent Add or sync is lost between the
// read and the write. An error from fn leaves the ledger untouched.
func (r *Repository) Update(ctx context.Context, fn func(current []models.LedgerTransaction) ([]models.LedgerTransaction, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return r.save(ctx, next)
}

// Add validates and stores one manual entry, keeping the ledger newest first.
func (r *Repository) Add(ctx context.Context, txn models.LedgerTransaction) error {
	if err := Validate(txn); err != nil {
		return err
	}
	return r.Update(ctx, func(current []models.LedgerTransaction) ([]models.LedgerTransaction, error) {
		return Merge([]models.LedgerTransaction{txn}, current), nil
	})
}

// Validate checks the rules every ledger entry must satisfy.
func Validate(txn models.LedgerTransaction) error {
	switch {
	case txn.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidTransaction)
	case !txn.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTransaction)
	case txn.Type != models.TypeExpense && txn.Type != models.TypeIncome:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	case !models.ValidCategory(txn.Category):
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTransaction, txn.Category)
	}
	return nil
}

func (r *Repository) load(ctx context.Context) ([]models.LedgerTransaction, error) {
	raw, found, err := r.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	txns := []models.LedgerTransaction{}
	if !found || raw == "" {
		return txns, nil
	}
	if err := json.Unmarshal([]byte(raw), &txns); err != nil {
		return nil, fmt.Errorf("failed to decode ledger: %w", err)
	}
	return txns, nil
}

func (r *Repository) save(ctx context.Context, txns []models.LedgerTransaction) error {
	if txns == nil {
		txns = []models.LedgerTransaction{}
	}
	raw, err := json.Marshal(txns)
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}
	if err := r.kv.Set(ctx, Key, string(raw)); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}
