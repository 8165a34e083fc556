package domain

import "time"

// Event types
const (
	EventTypeAccountCreated = "account.created"
	EventTypeAccountRemoved = "account.removed"
	EventTypeCreditAdded    = "credit.added"
	EventTypeDebitRecorded  = "debit.recorded"
	EventTypeLimitChanged   = "limit.changed"
)

// AggregateTypeAccount is the only aggregate in this ledger.
const AggregateTypeAccount = "account"

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewEntryEvent builds the credit.added / debit.recorded event for an entry.
func NewEntryEvent(id string, entry *Entry) *OutboxEvent {
	eventType := EventTypeCreditAdded
	if entry.Kind == EntryKindDebit {
		eventType = EventTypeDebitRecorded
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   entry.AccountID,
		AggregateType: AggregateTypeAccount,
		EventType:     eventType,
		Payload: map[string]any{
			"entry_id":      entry.ID,
			"account_id":    entry.AccountID,
			"kind":          string(entry.Kind),
			"amount":        entry.Amount.String(),
			"balance_after": entry.BalanceAfter.String(),
			"description":   entry.Description,
			"actor_id":      entry.ActorID,
			"actor_name":    entry.ActorName,
			"occurred_at":   entry.OccurredAt.Format(time.RFC3339Nano),
		},
		CreatedAt: entry.OccurredAt,
	}
}

// NewLimitChangedEvent builds the limit.changed event.
func NewLimitChangedEvent(id string, account *Account, previous Money, actor Actor) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   account.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeLimitChanged,
		Payload: map[string]any{
			"account_id":     account.ID,
			"previous_limit": previous.String(),
			"negative_limit": account.NegativeLimit.String(),
			"balance":        account.Balance.String(),
			"actor_id":       actor.ID,
		},
		CreatedAt: account.UpdatedAt,
	}
}

// NewAccountEvent builds account.created / account.removed events.
func NewAccountEvent(id, eventType string, account *Account, actor Actor, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   account.ID,
		AggregateType: AggregateTypeAccount,
		EventType:     eventType,
		Payload: map[string]any{
			"account_id": account.ID,
			"full_name":  account.FullName,
			"balance":    account.Balance.String(),
			"actor_id":   actor.ID,
		},
		CreatedAt: at,
	}
}
