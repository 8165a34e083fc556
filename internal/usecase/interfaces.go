package usecase

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"time"

	"github.com/iho/cantina/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// UpdateTx writes balance, limit and timestamps only if the stored
	// version still equals expectedVersion, and bumps the version.
	// Returns domain.ErrVersionConflict otherwise.
	UpdateTx(ctx context.Context, tx Transaction, account *domain.Account, expectedVersion int64) error
	// DeleteTx removes the account under the same version condition as UpdateTx.
	DeleteTx(ctx context.Context, tx Transaction, id string, expectedVersion int64) error
	List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error)
	Statistics(ctx context.Context) (*domain.Statistics, error)
}

// EntryRepository defines data access for entries.
type EntryRepository interface {
	CreateTx(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	// ListByAccount returns entries newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Entry, error)
	// FindByIdempotencyKey returns domain.ErrEntryNotFound when no entry uses the key.
	FindByIdempotencyKey(ctx context.Context, accountID, key string) (*domain.Entry, error)
	DeleteByAccountTx(ctx context.Context, tx Transaction, accountID string) (int64, error)
	ListOrphanedAccountIDs(ctx context.Context) ([]string, error)
	DeleteOrphaned(ctx context.Context, tx Transaction, accountID string) (int64, error)
}

// LedgerRepository runs cross-table consistency checks.
type LedgerRepository interface {
	ListBalanceDrift(ctx context.Context) ([]domain.BalanceDrift, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time. Tests pin it.
type Clock interface {
	Now() time.Time
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed so it can be retried.
	Release(ctx context.Context, key string) error
}

// LedgerRecorder receives engine outcomes for metrics.
type LedgerRecorder interface {
	RecordOperation(operation, outcome string, duration time.Duration)
	RecordRetry(operation string)
}
