package domain

import (
	"errors"
	"fmt"
)

var (
	// Authorization
	ErrUnauthorized = errors.New("actor is not allowed to perform this operation")

	// Business rules
	ErrLimitExceeded        = errors.New("debit would exceed the negative limit")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrInvalidLimit         = errors.New("negative limit must be zero or below")
	ErrIdempotencyKeyReused = errors.New("idempotency key already used for a different operation")

	// Transient store outcomes
	ErrVersionConflict      = errors.New("account was modified concurrently")
	ErrConcurrencyExhausted = errors.New("too many concurrent modifications, try again")
	ErrTimeout              = errors.New("ledger store did not respond in time")

	// Lookups
	ErrAccountNotFound = errors.New("account not found")
	ErrEntryNotFound   = errors.New("entry not found")
)

// LimitExceededError carries the values behind a rejected debit so callers
// can explain the rejection.
type LimitExceededError struct {
	Amount        Money
	Balance       Money
	Projected     Money
	NegativeLimit Money
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("%s: amount=%s balance=%s projected=%s limit=%s",
		ErrLimitExceeded, e.Amount, e.Balance, e.Projected, e.NegativeLimit)
}

// Is makes errors.Is(err, ErrLimitExceeded) match.
func (e *LimitExceededError) Is(target error) bool {
	return target == ErrLimitExceeded
}

// Available is how much could still be debited before the limit is hit.
func (e *LimitExceededError) Available() Money {
	return e.Balance.Sub(e.NegativeLimit)
}

// Shortfall is how much the debit is over the available amount.
func (e *LimitExceededError) Shortfall() Money {
	return e.Amount.Sub(e.Available())
}

// IsTransient reports whether a caller may simply retry the operation later.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConcurrencyExhausted) || errors.Is(err, ErrTimeout)
}
