package ledger

import (
	"sort"

	"paisometer/internal/models"
)

// Merge combines freshly popped entries with the persisted ledger. Popped
// entries come first, so when an id appears in both the popped entry wins;
// the result has unique ids and is ordered newest first.
func Merge(popped, local []models.LedgerTransaction) []models.LedgerTransaction {
	byID := make(map[string]int, len(popped)+len(local))
	merged := make([]models.LedgerTransaction, 0, len(popped)+len(local))

	for _, src := range [][]models.LedgerTransaction{popped, local} {
		for _, t := range src {
			if _, dup := byID[t.ID]; dup {
				continue
			}
			byID[t.ID] = len(merged)
			merged = append(merged, t)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	return merged
}

// FromQueued converts a pending item into a ledger entry. An item nobody
// categorized gets fallback, which must be a ledger category.
func FromQueued(q models.QueuedTransaction, fallback string) models.LedgerTransaction {
	category := q.Category
	if category == "" || category == models.CatUncategorized || !models.ValidCategory(category) {
		category = fallback
	}
	txnType := q.Type
	if txnType != models.TypeIncome {
		txnType = models.TypeExpense
	}
	return models.LedgerTransaction{
		ID:        q.ID,
		Amount:    q.Amount,
		Type:      txnType,
		Category:  category,
		Timestamp: q.Timestamp,
		Note:      q.Note,
		Merchant:  q.Merchant,
	}
}
