package memory

import (
	"context"
	"time"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an event.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	e := *event

	return t.stage(op{apply: func(s *Store) { s.outbox[e.ID] = &e }})
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []*domain.OutboxEvent
	for _, e := range r.store.Events() {
		if !e.Published {
			events = append(events, e)
		}
	}

	return paginate(events, limit, 0), nil
}

// MarkPublished flags an event as delivered.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if e, ok := r.store.outbox[id]; ok {
		e.Published = true
		at := publishedAt
		e.PublishedAt = &at
	}

	return nil
}

// DeletePublished drops delivered events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, e := range r.store.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			delete(r.store.outbox, id)
		}
	}

	return nil
}
