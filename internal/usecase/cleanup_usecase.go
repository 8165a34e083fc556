package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/domain"
)

// CleanupUseCase finds and deletes entries whose account no longer exists.
// It completes a Remove that was interrupted between deleting the entries
// and deleting the account.
type CleanupUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	logger    zerolog.Logger
}

// NewCleanupUseCase creates a new CleanupUseCase.
func NewCleanupUseCase(txManager TransactionManager, entryRepo EntryRepository, logger zerolog.Logger) *CleanupUseCase {
	return &CleanupUseCase{
		txManager: txManager,
		entryRepo: entryRepo,
		logger:    logger,
	}
}

// OrphanReport is the result of a purge: entries deleted per missing account.
type OrphanReport struct {
	Accounts map[string]int64 `json:"accounts"`
	Total    int64            `json:"total"`
}

// FindOrphans lists account IDs that still have entries but no account.
func (uc *CleanupUseCase) FindOrphans(ctx context.Context) ([]string, error) {
	return uc.entryRepo.ListOrphanedAccountIDs(ctx)
}

// PurgeOrphans deletes orphaned entries, one account per transaction.
func (uc *CleanupUseCase) PurgeOrphans(ctx context.Context, actor domain.Actor) (*OrphanReport, error) {
	if err := actor.RequirePrivileged(); err != nil {
		return nil, err
	}

	accountIDs, err := uc.entryRepo.ListOrphanedAccountIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &OrphanReport{Accounts: make(map[string]int64, len(accountIDs))}

	for _, accountID := range accountIDs {
		deleted, err := uc.purgeAccount(ctx, accountID)
		if err != nil {
			return report, fmt.Errorf("purge orphans of %s: %w", accountID, err)
		}

		report.Accounts[accountID] = deleted
		report.Total += deleted

		uc.logger.Info().
			Str("account_id", accountID).
			Int64("entries_deleted", deleted).
			Str("actor_id", actor.ID).
			Msg("purged orphaned entries")
	}

	return report, nil
}

func (uc *CleanupUseCase) purgeAccount(ctx context.Context, accountID string) (int64, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	deleted, err := uc.entryRepo.DeleteOrphaned(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return deleted, nil
}
