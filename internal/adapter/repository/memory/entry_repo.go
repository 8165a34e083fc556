package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// CreateTx stages an entry. A second entry with the same account and
// idempotency key fails the commit with domain.ErrVersionConflict.
func (r *EntryRepository) CreateTx(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	e := *entry

	return t.stage(op{
		check: func(s *Store) error {
			if e.IdempotencyKey == "" {
				return nil
			}
			for _, existing := range s.entries {
				if existing.AccountID == e.AccountID && existing.IdempotencyKey == e.IdempotencyKey {
					return domain.ErrVersionConflict
				}
			}
			return nil
		},
		apply: func(s *Store) { s.entries[e.ID] = &e },
	})
}

// GetByID returns a copy of the entry.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	c := *e

	return &c, nil
}

// ListByAccount returns entries newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return paginate(r.store.EntriesFor(accountID), limit, offset), nil
}

// FindByIdempotencyKey looks up a committed entry by its key.
func (r *EntryRepository) FindByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.entries {
		if e.AccountID == accountID && e.IdempotencyKey == key {
			c := *e
			return &c, nil
		}
	}

	return nil, domain.ErrEntryNotFound
}

// DeleteByAccountTx stages deletion of every entry of the account and
// returns how many entries it deletes. The commit fails with
// domain.ErrVersionConflict if that number changed in the meantime.
func (r *EntryRepository) DeleteByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) (int64, error) {
	t, err := asTx(tx)
	if err != nil {
		return 0, err
	}

	count := int64(len(r.store.EntriesFor(accountID)))

	err = t.stage(op{
		check: func(s *Store) error {
			if n := int64(len(s.entriesForLocked(accountID))); n != count {
				return fmt.Errorf("%w: account %s has %d entries, expected %d", domain.ErrVersionConflict, accountID, n, count)
			}
			return nil
		},
		apply: func(s *Store) { deleteEntries(s, accountID) },
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ListOrphanedAccountIDs returns account IDs that have entries but no account.
func (r *EntryRepository) ListOrphanedAccountIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	seen := make(map[string]struct{})
	var ids []string
	for _, e := range r.store.entries {
		if _, ok := r.store.accounts[e.AccountID]; ok {
			continue
		}
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	sort.Strings(ids)

	return ids, nil
}

// DeleteOrphaned stages deletion of entries for an account that does not
// exist. Nothing is deleted if the account exists at commit time.
func (r *EntryRepository) DeleteOrphaned(ctx context.Context, tx usecase.Transaction, accountID string) (int64, error) {
	t, err := asTx(tx)
	if err != nil {
		return 0, err
	}

	r.store.mu.RLock()
	_, exists := r.store.accounts[accountID]
	r.store.mu.RUnlock()
	if exists {
		return 0, nil
	}

	count := int64(len(r.store.EntriesFor(accountID)))

	err = t.stage(op{apply: func(s *Store) {
		if _, ok := s.accounts[accountID]; ok {
			return
		}
		deleteEntries(s, accountID)
	}})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func deleteEntries(s *Store, accountID string) {
	for id, e := range s.entries {
		if e.AccountID == accountID {
			delete(s.entries, id)
		}
	}
}
