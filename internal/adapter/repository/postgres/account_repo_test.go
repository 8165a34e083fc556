package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/cantina/internal/domain"
)

var accountColumns = []string{
	"id", "full_name", "birth_date", "phone", "balance_cents",
	"negative_limit_cents", "version", "created_at", "updated_at",
}

func TestAccountRepositoryGetByID(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewAccountRepository(mockPool)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery("FROM accounts WHERE id").
		WithArgs("acc-1").
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("acc-1", "Maria Silva", "01/02/2010", "11987654321", int64(-1250), int64(-5000), int64(4), now, now))

	account, err := repo.GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Balance.String() != "-12.50" || account.NegativeLimit.String() != "-50.00" {
		t.Fatalf("unexpected amounts: balance=%s limit=%s", account.Balance, account.NegativeLimit)
	}
	if account.Version != 4 {
		t.Fatalf("expected version 4, got %d", account.Version)
	}

	assertExpectations(t, mockPool)
}

func TestAccountRepositoryGetByIDNotFound(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewAccountRepository(mockPool)

	mockPool.ExpectQuery("FROM accounts WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountRepositoryUpdateTx(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		want     error
	}{
		{name: "version matches", affected: 1},
		{name: "version moved", affected: 0, want: domain.ErrVersionConflict},
		{name: "serialization failure", execErr: &pgconn.PgError{Code: pgErrSerializationFailure}, want: domain.ErrVersionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			repo := NewAccountRepository(mockPool)
			manager := newTxManagerWithPool(mockPool)

			mockPool.ExpectBegin()
			exec := mockPool.ExpectExec("UPDATE accounts").
				WithArgs("acc-1", int64(3), int64(-3000), int64(-5000), pgxmock.AnyArg())
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			}
			mockPool.ExpectRollback()

			ctx := context.Background()
			tx, err := manager.Begin(ctx)
			if err != nil {
				t.Fatalf("begin: %v", err)
			}

			err = repo.UpdateTx(ctx, tx, &domain.Account{
				ID:            "acc-1",
				Balance:       domain.Units(-30),
				NegativeLimit: domain.DefaultNegativeLimit,
				UpdatedAt:     time.Now(),
			}, 3)

			if tt.want == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if err := tx.Rollback(ctx); err != nil {
				t.Fatalf("rollback: %v", err)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestAccountRepositoryDeleteTxConflict(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewAccountRepository(mockPool)
	manager := newTxManagerWithPool(mockPool)

	mockPool.ExpectBegin()
	mockPool.ExpectExec("DELETE FROM accounts").
		WithArgs("acc-1", int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	ctx := context.Background()
	tx, err := manager.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := repo.DeleteTx(ctx, tx, "acc-1", 2); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestAccountRepositoryStatistics(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewAccountRepository(mockPool)

	mockPool.ExpectQuery("FROM accounts").
		WillReturnRows(pgxmock.NewRows([]string{
			"total_accounts", "positive_accounts", "negative_accounts", "zero_accounts", "total_balance_cents",
		}).AddRow(int64(5), int64(2), int64(2), int64(1), int64(-2550)))

	stats, err := repo.Statistics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalAccounts != 5 || stats.TotalBalance.String() != "-25.50" {
		t.Fatalf("unexpected statistics: %+v", stats)
	}
}

func TestAccountRepositoryListEscapesWildcards(t *testing.T) {
	mockPool := newMockPool(t)
	repo := NewAccountRepository(mockPool)

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(`ESCAPE`).
		WithArgs(`50\%\_off\\`, "negative", int32(20), int32(40)).
		WillReturnRows(pgxmock.NewRows(accountColumns).
			AddRow("acc-1", "Loja 50%_off\\", "01/02/2010", "11987654321", int64(-100), int64(-5000), int64(1), now, now))

	accounts, err := repo.List(context.Background(), domain.AccountFilter{
		Query:   `50%_off\`,
		Balance: domain.BalanceFilterNegative,
		Limit:   20,
		Offset:  40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "acc-1" {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}

	assertExpectations(t, mockPool)
}
