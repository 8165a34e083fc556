package integration

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/adapter/repository/postgres"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
	"github.com/iho/cantina/tests/testutil"
)

var (
	employee = domain.Actor{ID: "emp-1", Name: "Joana"}
	admin    = domain.Actor{ID: "adm-1", Name: "Carla", Privileged: true}
)

type ledgerStack struct {
	db        *testutil.TestDB
	accounts  *postgres.AccountRepository
	entries   *postgres.EntryRepository
	outbox    *postgres.OutboxRepository
	accountUC *usecase.AccountUseCase
	ledgerUC  *usecase.LedgerUseCase
	entryUC   *usecase.EntryUseCase
	cleanupUC *usecase.CleanupUseCase
	statsUC   *usecase.StatisticsUseCase
	txManager *postgres.TxManager
	idGen     *postgres.ULIDGenerator
}

func newLedgerStack(t *testing.T, maxAttempts int) *ledgerStack {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)

	logger := zerolog.Nop()
	s := &ledgerStack{
		db:        db,
		accounts:  postgres.NewAccountRepository(db.Pool),
		entries:   postgres.NewEntryRepository(db.Pool),
		outbox:    postgres.NewOutboxRepository(db.Pool),
		txManager: postgres.NewTxManager(db.Pool),
		idGen:     postgres.NewULIDGenerator(),
	}

	retrier := usecase.NewRetrier(usecase.RetryConfig{
		MaxAttempts:     maxAttempts,
		AttemptTimeout:  5 * time.Second,
		InitialInterval: time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
	}, logger, nil)

	s.accountUC = usecase.NewAccountUseCase(s.txManager, s.accounts, s.outbox, s.idGen, domain.DefaultNegativeLimit)
	s.ledgerUC = usecase.NewLedgerUseCase(s.txManager, s.accounts, s.entries, s.outbox, s.idGen, retrier, logger)
	s.entryUC = usecase.NewEntryUseCase(s.accounts, s.entries)
	s.cleanupUC = usecase.NewCleanupUseCase(s.txManager, s.entries, logger)
	s.statsUC = usecase.NewStatisticsUseCase(s.accounts, nil, 0, logger)

	return s
}
