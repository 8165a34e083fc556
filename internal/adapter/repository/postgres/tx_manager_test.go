package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/cantina/internal/domain"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestTxManagerCommit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		commitErr error
		want      error
	}{
		{name: "success"},
		{
			name:      "serialization failure becomes a version conflict",
			commitErr: &pgconn.PgError{Code: pgErrSerializationFailure, Message: "could not serialize access"},
			want:      domain.ErrVersionConflict,
		},
		{
			name:      "concurrent idempotency key becomes a version conflict",
			commitErr: &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: idempotencyIndex},
			want:      domain.ErrVersionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			mockPool.ExpectBegin()
			if tt.commitErr != nil {
				mockPool.ExpectCommit().WillReturnError(tt.commitErr)
			} else {
				mockPool.ExpectCommit()
			}

			tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
			if err != nil {
				t.Fatalf("unexpected begin error: %v", err)
			}

			err = tx.Commit(ctx)
			if tt.want == nil && err != nil {
				t.Fatalf("commit failed: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	unreachable := errors.New("connection refused")
	mockPool.ExpectBegin().WillReturnError(unreachable)

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if !errors.Is(err, unreachable) || tx != nil {
		t.Fatalf("expected begin error, got err=%v tx=%v", err, tx)
	}
	if errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("connection failures must not be retried as conflicts")
	}
}

func TestTxRollbackDiscardsWrites(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()
	mockPool.ExpectExec("UPDATE accounts").
		WithArgs("acc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectRollback()

	ctx := context.Background()
	tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pgTx, err := pgxTxOf(tx)
	if err != nil {
		t.Fatalf("expected a postgres transaction: %v", err)
	}
	if _, err := pgTx.Exec(ctx, "UPDATE accounts SET balance_cents = 0 WHERE id = $1", "acc-1"); err != nil {
		t.Fatalf("exec failed: %v", err)
	}

	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	assertExpectations(t, mockPool)
}

type foreignTx struct{}

func (foreignTx) Commit(context.Context) error   { return nil }
func (foreignTx) Rollback(context.Context) error { return nil }

func TestPgxTxOfRejectsForeignTransactions(t *testing.T) {
	if _, err := pgxTxOf(foreignTx{}); err == nil {
		t.Fatal("expected an error for a non-postgres transaction")
	}
}
