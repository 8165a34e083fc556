package domain

import (
	"time"
)

// DefaultNegativeLimit applies to every newly registered account.
var DefaultNegativeLimit = Units(-50)

// Account is a canteen customer with a running balance.
type Account struct {
	ID            string
	FullName      string
	BirthDate     string
	Phone         string
	Balance       Money
	NegativeLimit Money
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateDebit checks that debiting amount keeps the balance at or above
// the negative limit.
func (a *Account) ValidateDebit(amount Money) error {
	projected := a.Balance.Sub(amount)
	if projected.LessThan(a.NegativeLimit) {
		return &LimitExceededError{
			Amount:        amount,
			Balance:       a.Balance,
			Projected:     projected,
			NegativeLimit: a.NegativeLimit,
		}
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount Money) Money {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount Money) Money {
	return a.Balance.Add(amount)
}

// AvailableCredit is what can still be spent before reaching the limit.
func (a *Account) AvailableCredit() Money {
	return a.Balance.Sub(a.NegativeLimit)
}

// IsBelowLimit is true when an administrative limit change left the
// balance under the current limit.
func (a *Account) IsBelowLimit() bool {
	return a.Balance.LessThan(a.NegativeLimit)
}

// Clone returns a copy safe to mutate.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// ValidateLimit checks a new negative limit.
func ValidateLimit(limit Money) error {
	if limit.IsPositive() {
		return ErrInvalidLimit
	}
	return nil
}
