package postgres

import (
	"context"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// ListBalanceDrift returns accounts whose balance differs from the sum of
// their signed entries.
func (r *LedgerRepository) ListBalanceDrift(ctx context.Context) ([]domain.BalanceDrift, error) {
	rows, err := r.queries.ListBalanceDrift(ctx)
	if err != nil {
		return nil, err
	}

	drifts := make([]domain.BalanceDrift, 0, len(rows))
	for _, row := range rows {
		drifts = append(drifts, domain.BalanceDrift{
			AccountID:   row.ID,
			Recorded:    domain.Cents(row.BalanceCents),
			FromEntries: domain.Cents(row.EntriesCents),
		})
	}

	return drifts, nil
}
