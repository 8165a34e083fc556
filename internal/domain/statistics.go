package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBalanceFilter is returned for an unknown balance filter.
var ErrInvalidBalanceFilter = errors.New("invalid balance filter")

// BalanceFilter narrows account listings by the sign of the balance.
type BalanceFilter string

const (
	BalanceFilterAll      BalanceFilter = "all"
	BalanceFilterPositive BalanceFilter = "positive"
	BalanceFilterNegative BalanceFilter = "negative"
	BalanceFilterZero     BalanceFilter = "zero"
)

// ParseBalanceFilter accepts an empty string as BalanceFilterAll.
func ParseBalanceFilter(s string) (BalanceFilter, error) {
	switch f := BalanceFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return BalanceFilterAll, nil
	case BalanceFilterAll, BalanceFilterPositive, BalanceFilterNegative, BalanceFilterZero:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBalanceFilter, s)
	}
}

// Matches reports whether balance passes the filter.
func (f BalanceFilter) Matches(balance Money) bool {
	switch f {
	case BalanceFilterPositive:
		return balance.IsPositive()
	case BalanceFilterNegative:
		return balance.IsNegative()
	case BalanceFilterZero:
		return balance.IsZero()
	default:
		return true
	}
}

// AccountFilter is the query for listing accounts. Results are ordered by
// full name.
type AccountFilter struct {
	Query   string
	Balance BalanceFilter
	Limit   int
	Offset  int
}

// MatchesName is a case-insensitive substring match on the full name.
func (f AccountFilter) MatchesName(fullName string) bool {
	if f.Query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(fullName), strings.ToLower(strings.TrimSpace(f.Query)))
}

// Statistics summarizes all customer balances.
type Statistics struct {
	TotalAccounts    int64 `json:"total_accounts"`
	PositiveAccounts int64 `json:"positive_accounts"`
	NegativeAccounts int64 `json:"negative_accounts"`
	ZeroAccounts     int64 `json:"zero_accounts"`
	TotalBalance     Money `json:"total_balance"`
}

// Add folds one balance into the summary.
func (s *Statistics) Add(balance Money) {
	s.TotalAccounts++
	s.TotalBalance = s.TotalBalance.Add(balance)

	switch {
	case balance.IsPositive():
		s.PositiveAccounts++
	case balance.IsNegative():
		s.NegativeAccounts++
	default:
		s.ZeroAccounts++
	}
}
