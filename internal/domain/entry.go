package domain

import (
	"time"
)

// EntryKind is the direction of a ledger entry.
type EntryKind string

const (
	EntryKindCredit EntryKind = "credit"
	EntryKindDebit  EntryKind = "debit"
)

// Default descriptions used when the caller does not supply one.
const (
	DefaultCreditDescription = "Credit added"
	DefaultDebitDescription  = "Canteen purchase"
)

// IsValid reports whether k is a known kind.
func (k EntryKind) IsValid() bool {
	return k == EntryKindCredit || k == EntryKindDebit
}

// Entry is an immutable record of one balance change. Amount is always
// positive; Kind gives the direction.
type Entry struct {
	OccurredAt     time.Time
	ID             string
	AccountID      string
	Kind           EntryKind
	Amount         Money
	BalanceAfter   Money
	Description    string
	ActorID        string
	ActorName      string
	IdempotencyKey string
}

// SignedAmount is the effect of the entry on the balance.
func (e *Entry) SignedAmount() Money {
	if e.Kind == EntryKindDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Matches reports whether a replayed request describes the same operation.
func (e *Entry) Matches(kind EntryKind, amount Money) bool {
	return e.Kind == kind && e.Amount == amount
}

// ValidateAmount validates a credit or debit amount.
func ValidateAmount(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if amount > MaxEntryAmount {
		return ErrAmountTooLarge
	}

	return nil
}
