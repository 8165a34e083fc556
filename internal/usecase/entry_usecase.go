package usecase

import (
	"context"

	"github.com/iho/cantina/internal/domain"
)

// EntryUseCase handles entry reads.
type EntryUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(accountRepo AccountRepository, entryRepo EntryRepository) *EntryUseCase {
	return &EntryUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListEntries returns an account's entries, newest first.
func (uc *EntryUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.entryRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

// GetEntry retrieves a single entry.
func (uc *EntryUseCase) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}
