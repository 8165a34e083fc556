package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/adapter/repository/memory"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

var (
	admin    = domain.Actor{ID: "admin-1", Name: "Ana Admin", Privileged: true}
	employee = domain.Actor{ID: "emp-1", Name: "Edu Employee"}
)

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("id-%08d", g.n.Add(1))
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func fastRetrier(maxAttempts int) *usecase.Retrier {
	return usecase.NewRetrier(usecase.RetryConfig{
		MaxAttempts:     maxAttempts,
		AttemptTimeout:  time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}, zerolog.Nop(), nil)
}

type ledgerFixture struct {
	store  *memory.Store
	ledger *usecase.LedgerUseCase
	ids    *seqIDs
}

func newLedgerFixture(t *testing.T, maxAttempts int) *ledgerFixture {
	t.Helper()

	store := memory.NewStore()
	ids := &seqIDs{}

	ledger := usecase.NewLedgerUseCase(
		memory.NewTxManager(store),
		memory.NewAccountRepository(store),
		memory.NewEntryRepository(store),
		memory.NewOutboxRepository(store),
		ids,
		fastRetrier(maxAttempts),
		zerolog.Nop(),
	)

	return &ledgerFixture{store: store, ledger: ledger, ids: ids}
}

func (f *ledgerFixture) account(t *testing.T, id string, balance, limit domain.Money) {
	t.Helper()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.store.PutAccount(&domain.Account{
		ID:            id,
		FullName:      "Maria da Silva",
		BirthDate:     "01/02/2010",
		Phone:         "11987654321",
		Balance:       balance,
		NegativeLimit: limit,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (f *ledgerFixture) balance(t *testing.T, id string) domain.Money {
	t.Helper()

	acc, err := f.ledgerAccount(t, id)
	if err != nil {
		t.Fatalf("load account %s: %v", id, err)
	}
	return acc.Balance
}

func (f *ledgerFixture) ledgerAccount(t *testing.T, id string) (*domain.Account, error) {
	t.Helper()
	return memory.NewAccountRepository(f.store).GetByID(context.Background(), id)
}
