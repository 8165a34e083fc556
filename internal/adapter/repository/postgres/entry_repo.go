package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/infrastructure/postgres/generated"
	"github.com/iho/cantina/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{
		queries: generated.New(db),
	}
}

// CreateTx inserts an entry inside tx.
func (r *EntryRepository) CreateTx(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return err
	}

	err = r.queries.WithTx(pgxTx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:                entry.ID,
		AccountID:         entry.AccountID,
		Kind:              string(entry.Kind),
		AmountCents:       entry.Amount.CentsValue(),
		BalanceAfterCents: entry.BalanceAfter.CentsValue(),
		Description:       entry.Description,
		ActorID:           entry.ActorID,
		ActorName:         entry.ActorName,
		IdempotencyKey:    textOrNull(entry.IdempotencyKey),
		OccurredAt:        timeToPgTimestamptz(entry.OccurredAt),
	})

	return mapError(err)
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row, err := r.queries.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToEntry(row), nil
}

// ListByAccount returns an account's entries, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, generated.ListEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// FindByIdempotencyKey returns the entry committed under key.
func (r *EntryRepository) FindByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.Entry, error) {
	row, err := r.queries.GetEntryByIdempotencyKey(ctx, generated.GetEntryByIdempotencyKeyParams{
		AccountID:      accountID,
		IdempotencyKey: textOrNull(key),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToEntry(row), nil
}

// DeleteByAccountTx deletes all entries of an account inside tx.
func (r *EntryRepository) DeleteByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) (int64, error) {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return 0, err
	}

	deleted, err := r.queries.WithTx(pgxTx).DeleteEntriesByAccount(ctx, accountID)
	return deleted, mapError(err)
}

// ListOrphanedAccountIDs returns account IDs referenced only by entries.
func (r *EntryRepository) ListOrphanedAccountIDs(ctx context.Context) ([]string, error) {
	ids, err := r.queries.ListOrphanedAccountIDs(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}

	return ids, nil
}

// DeleteOrphaned deletes an account's entries if the account is gone.
func (r *EntryRepository) DeleteOrphaned(ctx context.Context, tx usecase.Transaction, accountID string) (int64, error) {
	pgxTx, err := pgxTxOf(tx)
	if err != nil {
		return 0, err
	}

	return r.queries.WithTx(pgxTx).DeleteOrphanedEntries(ctx, accountID)
}

func rowToEntry(row generated.Entry) *domain.Entry {
	return &domain.Entry{
		ID:             row.ID,
		AccountID:      row.AccountID,
		Kind:           domain.EntryKind(row.Kind),
		Amount:         domain.Cents(row.AmountCents),
		BalanceAfter:   domain.Cents(row.BalanceAfterCents),
		Description:    row.Description,
		ActorID:        row.ActorID,
		ActorName:      row.ActorName,
		IdempotencyKey: row.IdempotencyKey.String,
		OccurredAt:     row.OccurredAt.Time,
	}
}
