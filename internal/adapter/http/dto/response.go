package dto

import (
	"time"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID              string       `json:"id"`
	FullName        string       `json:"full_name"`
	BirthDate       string       `json:"birth_date"`
	Phone           string       `json:"phone"`
	Balance         domain.Money `json:"balance"`
	NegativeLimit   domain.Money `json:"negative_limit"`
	AvailableCredit domain.Money `json:"available_credit"`
	Version         int64        `json:"version"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:              a.ID,
		FullName:        a.FullName,
		BirthDate:       a.BirthDate,
		Phone:           a.Phone,
		Balance:         a.Balance,
		NegativeLimit:   a.NegativeLimit,
		AvailableCredit: a.AvailableCredit(),
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse is a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Count    int                `json:"count"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID             string           `json:"id"`
	AccountID      string           `json:"account_id"`
	Kind           domain.EntryKind `json:"kind"`
	Amount         domain.Money     `json:"amount"`
	SignedAmount   domain.Money     `json:"signed_amount"`
	BalanceAfter   domain.Money     `json:"balance_after"`
	Description    string           `json:"description"`
	ActorID        string           `json:"actor_id"`
	ActorName      string           `json:"actor_name,omitempty"`
	IdempotencyKey string           `json:"idempotency_key,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:             e.ID,
		AccountID:      e.AccountID,
		Kind:           e.Kind,
		Amount:         e.Amount,
		SignedAmount:   e.SignedAmount(),
		BalanceAfter:   e.BalanceAfter,
		Description:    e.Description,
		ActorID:        e.ActorID,
		ActorName:      e.ActorName,
		IdempotencyKey: e.IdempotencyKey,
		OccurredAt:     e.OccurredAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// OrphansResponse lists account IDs that still have entries.
type OrphansResponse struct {
	AccountIDs []string `json:"account_ids"`
	Count      int      `json:"count"`
}

// PurgeResponse reports a purge run.
type PurgeResponse = usecase.OrphanReport

// ReconciliationResponse reports a reconciliation run.
type ReconciliationResponse = usecase.ReconciliationReport

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LimitExceededResponse explains a rejected debit.
type LimitExceededResponse struct {
	Error         string       `json:"error"`
	Message       string       `json:"message"`
	Amount        domain.Money `json:"amount"`
	Balance       domain.Money `json:"balance"`
	Projected     domain.Money `json:"projected_balance"`
	NegativeLimit domain.Money `json:"negative_limit"`
	Available     domain.Money `json:"available"`
	Shortfall     domain.Money `json:"shortfall"`
}

// LimitExceededFromDomain builds the rejection payload.
func LimitExceededFromDomain(e *domain.LimitExceededError) *LimitExceededResponse {
	return &LimitExceededResponse{
		Error:         "limit exceeded",
		Message:       e.Error(),
		Amount:        e.Amount,
		Balance:       e.Balance,
		Projected:     e.Projected,
		NegativeLimit: e.NegativeLimit,
		Available:     e.Available(),
		Shortfall:     e.Shortfall(),
	}
}
