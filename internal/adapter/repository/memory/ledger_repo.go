package memory

import (
	"context"
	"sort"

	"github.com/iho/cantina/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// ListBalanceDrift returns accounts whose balance differs from the sum of
// their signed entries, ordered by account ID.
func (r *LedgerRepository) ListBalanceDrift(ctx context.Context) ([]domain.BalanceDrift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sums := make(map[string]domain.Money, len(r.store.accounts))
	for _, e := range r.store.entries {
		sums[e.AccountID] = sums[e.AccountID].Add(e.SignedAmount())
	}

	drifts := []domain.BalanceDrift{}
	for id, a := range r.store.accounts {
		if a.Balance != sums[id] {
			drifts = append(drifts, domain.BalanceDrift{AccountID: id, Recorded: a.Balance, FromEntries: sums[id]})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].AccountID < drifts[j].AccountID })

	return drifts, nil
}
