// Package memory is an in-process store. A commit validates every staged
// write against the current state and applies all of them under one lock,
// which gives the same conditional-write semantics as the Postgres adapter.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already finished")

// Store holds all accounts, entries and outbox events.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	entries  map[string]*domain.Entry
	outbox   map[string]*domain.OutboxEvent
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]*domain.Account),
		entries:  make(map[string]*domain.Entry),
		outbox:   make(map[string]*domain.OutboxEvent),
	}
}

// PutAccount stores a copy of account outside any transaction.
func (s *Store) PutAccount(account *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account.Clone()
}

// PutEntry stores a copy of entry outside any transaction, even when its
// account does not exist.
func (s *Store) PutEntry(entry *domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := *entry
	s.entries[e.ID] = &e
}

// EntriesFor returns every entry of an account, newest first.
func (s *Store) EntriesFor(accountID string) []*domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entriesForLocked(accountID)
}

// Events returns every outbox event ordered by creation.
func (s *Store) Events() []*domain.OutboxEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*domain.OutboxEvent, 0, len(s.outbox))
	for _, e := range s.outbox {
		c := *e
		events = append(events, &c)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	return events
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) entriesForLocked(accountID string) []*domain.Entry {
	var entries []*domain.Entry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			c := *e
			entries = append(entries, &c)
		}
	}
	sortNewestFirst(entries)
	return entries
}

func sortNewestFirst(entries []*domain.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].OccurredAt.Equal(entries[j].OccurredAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].OccurredAt.After(entries[j].OccurredAt)
	})
}

// op is one staged write. check runs for every op before any apply.
type op struct {
	check func(s *Store) error
	apply func(s *Store)
}

// Tx stages writes until Commit.
type Tx struct {
	store *Store
	ops   []op
	done  bool
}

func (tx *Tx) stage(o op) error {
	if tx.done {
		return ErrTxDone
	}
	tx.ops = append(tx.ops, o)
	return nil
}

// Commit applies all staged writes atomically, or none of them.
func (tx *Tx) Commit(ctx context.Context) error {
	if tx.done {
		return ErrTxDone
	}
	tx.done = true

	if err := ctx.Err(); err != nil {
		return err
	}

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range tx.ops {
		if o.check == nil {
			continue
		}
		if err := o.check(s); err != nil {
			return err
		}
	}

	for _, o := range tx.ops {
		o.apply(s)
	}

	return nil
}

// Rollback discards staged writes. Calling it after Commit is a no-op.
func (tx *Tx) Rollback(ctx context.Context) error {
	tx.done = true
	tx.ops = nil
	return nil
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store}, nil
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, errors.New("memory: foreign transaction")
	}
	return t, nil
}
