package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid request")

// Validate checks the struct tags of a request and flattens the failures
// into one error.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(fields, "; "))
}

// RegisterAccountRequest represents a request to register a customer.
type RegisterAccountRequest struct {
	FullName  string `json:"full_name" validate:"required,max=255"`
	BirthDate string `json:"birth_date" validate:"required,max=10"`
	Phone     string `json:"phone" validate:"required,max=32"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterAccountRequest) ToUseCaseInput(actor domain.Actor) usecase.RegisterAccountInput {
	return usecase.RegisterAccountInput{
		FullName:  r.FullName,
		BirthDate: r.BirthDate,
		Phone:     r.Phone,
		Actor:     actor,
	}
}

// EntryRequest is the body of a credit or debit.
type EntryRequest struct {
	Amount         domain.Money `json:"amount" validate:"gt=0"`
	Description    string       `json:"description,omitempty" validate:"max=255"`
	IdempotencyKey string       `json:"idempotency_key,omitempty" validate:"max=128"`
}

// Key returns the header key when present, the body key otherwise.
func (r *EntryRequest) Key(header string) string {
	if header = strings.TrimSpace(header); header != "" {
		return header
	}
	return strings.TrimSpace(r.IdempotencyKey)
}

// ToCreditInput converts to a credit input.
func (r *EntryRequest) ToCreditInput(accountID string, actor domain.Actor, key string) usecase.CreditInput {
	return usecase.CreditInput{
		AccountID:      accountID,
		Amount:         r.Amount,
		Actor:          actor,
		Description:    r.Description,
		IdempotencyKey: key,
	}
}

// ToDebitInput converts to a debit input.
func (r *EntryRequest) ToDebitInput(accountID string, actor domain.Actor, key string) usecase.DebitInput {
	return usecase.DebitInput{
		AccountID:      accountID,
		Amount:         r.Amount,
		Actor:          actor,
		Description:    r.Description,
		IdempotencyKey: key,
	}
}

// SetLimitRequest changes an account's negative limit.
type SetLimitRequest struct {
	NegativeLimit *domain.Money `json:"negative_limit" validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *SetLimitRequest) ToUseCaseInput(accountID string, actor domain.Actor) usecase.SetLimitInput {
	return usecase.SetLimitInput{
		AccountID: accountID,
		NewLimit:  *r.NegativeLimit,
		Actor:     actor,
	}
}
