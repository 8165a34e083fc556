package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[account.ID]; ok {
		return fmt.Errorf("memory: account %s already exists", account.ID)
	}
	r.store.accounts[account.ID] = account.Clone()

	return nil
}

// CreateTx stores a new account when tx commits.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	a := account.Clone()

	return t.stage(op{
		check: func(s *Store) error {
			if _, ok := s.accounts[a.ID]; ok {
				return fmt.Errorf("memory: account %s already exists", a.ID)
			}
			return nil
		},
		apply: func(s *Store) { s.accounts[a.ID] = a },
	})
}

// GetByID returns a copy of the account.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return a.Clone(), nil
}

// UpdateTx stages a write conditioned on expectedVersion.
func (r *AccountRepository) UpdateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account, expectedVersion int64) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := r.checkVersion(account.ID, expectedVersion); err != nil {
		return err
	}

	a := account.Clone()
	a.Version = expectedVersion + 1

	return t.stage(op{
		check: func(s *Store) error { return versionMatches(s, a.ID, expectedVersion) },
		apply: func(s *Store) {
			stored := s.accounts[a.ID]
			stored.Balance = a.Balance
			stored.NegativeLimit = a.NegativeLimit
			stored.Version = a.Version
			stored.UpdatedAt = a.UpdatedAt
		},
	})
}

// DeleteTx stages removal of the account conditioned on expectedVersion.
func (r *AccountRepository) DeleteTx(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := r.checkVersion(id, expectedVersion); err != nil {
		return err
	}

	return t.stage(op{
		check: func(s *Store) error { return versionMatches(s, id, expectedVersion) },
		apply: func(s *Store) { delete(s.accounts, id) },
	})
}

// List returns accounts matching filter, ordered by name.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	var accounts []*domain.Account
	for _, a := range r.store.accounts {
		if filter.MatchesName(a.FullName) && filter.Balance.Matches(a.Balance) {
			accounts = append(accounts, a.Clone())
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		ni, nj := strings.ToLower(accounts[i].FullName), strings.ToLower(accounts[j].FullName)
		if ni == nj {
			return accounts[i].ID < accounts[j].ID
		}
		return ni < nj
	})

	return paginate(accounts, filter.Limit, filter.Offset), nil
}

// Statistics summarizes all balances.
func (r *AccountRepository) Statistics(ctx context.Context) (*domain.Statistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stats := &domain.Statistics{}
	for _, a := range r.store.accounts {
		stats.Add(a.Balance)
	}

	return stats, nil
}

func (r *AccountRepository) checkVersion(id string, expectedVersion int64) error {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return versionMatches(r.store, id, expectedVersion)
}

func versionMatches(s *Store, id string, expectedVersion int64) error {
	a, ok := s.accounts[id]
	if !ok || a.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
