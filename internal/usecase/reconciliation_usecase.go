package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/domain"
)

// ReconciliationUseCase checks stored balances against the entries.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	clock       Clock
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case.
func NewReconciliationUseCase(accountRepo AccountRepository, ledgerRepo LedgerRepository, logger zerolog.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		clock:       systemClock{},
		logger:      logger,
	}
}

// ReconciliationReport is the outcome of one reconciliation run.
type ReconciliationReport struct {
	TotalAccounts int64                 `json:"total_accounts"`
	Discrepancies []domain.BalanceDrift `json:"discrepancies"`
	Consistent    bool                  `json:"consistent"`
	CheckedAt     time.Time             `json:"checked_at"`
}

// Reconcile lists every account whose balance is not the sum of its
// signed entries.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, actor domain.Actor) (*ReconciliationReport, error) {
	if err := actor.RequirePrivileged(); err != nil {
		return nil, err
	}

	stats, err := uc.accountRepo.Statistics(ctx)
	if err != nil {
		return nil, err
	}

	drifts, err := uc.ledgerRepo.ListBalanceDrift(ctx)
	if err != nil {
		return nil, err
	}
	if drifts == nil {
		drifts = []domain.BalanceDrift{}
	}

	for _, d := range drifts {
		uc.logger.Warn().
			Str("account_id", d.AccountID).
			Str("recorded_balance", d.Recorded.String()).
			Str("calculated_balance", d.FromEntries.String()).
			Str("difference", d.Difference().String()).
			Msg("balance does not match entries")
	}

	return &ReconciliationReport{
		TotalAccounts: stats.TotalAccounts,
		Discrepancies: drifts,
		Consistent:    len(drifts) == 0,
		CheckedAt:     uc.clock.Now().UTC(),
	}, nil
}
