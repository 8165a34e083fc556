package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/cantina/internal/domain"
)

// PostgreSQL error codes the ledger engine may retry.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrUniqueViolation      = "23505"
)

// idempotencyIndex is the unique index guarding entry idempotency keys.
const idempotencyIndex = "idx_entries_idempotency"

// mapError turns store errors that mean "someone else committed first" into
// domain.ErrVersionConflict so the engine re-reads and tries again.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure:
		return fmt.Errorf("%w: %s (%s)", domain.ErrVersionConflict, pgErr.Message, pgErr.Code)
	case pgErrUniqueViolation:
		if pgErr.ConstraintName == idempotencyIndex {
			return fmt.Errorf("%w: idempotency key committed concurrently", domain.ErrVersionConflict)
		}
	}

	return err
}
