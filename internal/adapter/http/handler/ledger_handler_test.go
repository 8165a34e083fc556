package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

type ledgerServiceStub struct {
	creditFn   func(ctx context.Context, input usecase.CreditInput) (*domain.Entry, error)
	debitFn    func(ctx context.Context, input usecase.DebitInput) (*domain.Entry, error)
	setLimitFn func(ctx context.Context, input usecase.SetLimitInput) (*domain.Account, error)
	removeFn   func(ctx context.Context, accountID string, actor domain.Actor) error
}

func (s *ledgerServiceStub) Credit(ctx context.Context, input usecase.CreditInput) (*domain.Entry, error) {
	return s.creditFn(ctx, input)
}

func (s *ledgerServiceStub) Debit(ctx context.Context, input usecase.DebitInput) (*domain.Entry, error) {
	return s.debitFn(ctx, input)
}

func (s *ledgerServiceStub) SetLimit(ctx context.Context, input usecase.SetLimitInput) (*domain.Account, error) {
	return s.setLimitFn(ctx, input)
}

func (s *ledgerServiceStub) Remove(ctx context.Context, accountID string, actor domain.Actor) error {
	return s.removeFn(ctx, accountID, actor)
}

var admin = domain.Actor{ID: "admin-1", Name: "Manager", Privileged: true}

func TestLedgerHandler_Credit(t *testing.T) {
	var captured usecase.CreditInput
	handler := NewLedgerHandler(&ledgerServiceStub{
		creditFn: func(ctx context.Context, input usecase.CreditInput) (*domain.Entry, error) {
			captured = input
			return &domain.Entry{ID: "e-1", AccountID: input.AccountID, Kind: domain.EntryKindCredit, Amount: input.Amount, BalanceAfter: input.Amount}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/credits", bytes.NewBufferString(`{"amount":"20.00","description":"top up"}`))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	req = withURLParam(withActor(req, admin), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Credit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.AccountID != "acc-1" || captured.Amount != domain.Units(20) || captured.IdempotencyKey != "key-1" || !captured.Actor.Privileged {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.ID != "e-1" || resp.BalanceAfter != domain.Units(20) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLedgerHandler_Credit_Unauthorized(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{
		creditFn: func(ctx context.Context, input usecase.CreditInput) (*domain.Entry, error) {
			return nil, domain.ErrUnauthorized
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/credits", bytes.NewBufferString(`{"amount":"5"}`))
	req = withURLParam(withActor(req, employee), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.Credit(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestLedgerHandler_Debit_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"committed", nil, http.StatusCreated},
		{"limit exceeded", &domain.LimitExceededError{Amount: domain.Units(10), Balance: domain.Units(-45), Projected: domain.Units(-55), NegativeLimit: domain.Units(-50)}, http.StatusUnprocessableEntity},
		{"concurrency exhausted", domain.ErrConcurrencyExhausted, http.StatusConflict},
		{"timeout", domain.ErrTimeout, http.StatusGatewayTimeout},
		{"not found", domain.ErrAccountNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewLedgerHandler(&ledgerServiceStub{
				debitFn: func(ctx context.Context, input usecase.DebitInput) (*domain.Entry, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.Entry{ID: "e-1", Kind: domain.EntryKindDebit, Amount: input.Amount}, nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/debits", bytes.NewBufferString(`{"amount":"10","idempotency_key":"body-key"}`))
			req = withURLParam(withActor(req, employee), "id", "acc-1")
			rec := httptest.NewRecorder()

			handler.Debit(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLedgerHandler_Debit_RejectsBadAmount(t *testing.T) {
	handler := NewLedgerHandler(&ledgerServiceStub{})

	for _, body := range []string{`{"amount":"abc"}`, `{"amount":"1.234"}`, `{"amount":"0"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/debits", bytes.NewBufferString(body))
		req = withURLParam(withActor(req, employee), "id", "acc-1")
		rec := httptest.NewRecorder()

		handler.Debit(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestLedgerHandler_SetLimit(t *testing.T) {
	var captured usecase.SetLimitInput
	handler := NewLedgerHandler(&ledgerServiceStub{
		setLimitFn: func(ctx context.Context, input usecase.SetLimitInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{ID: input.AccountID, NegativeLimit: input.NewLimit}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPut, "/accounts/acc-1/limit", bytes.NewBufferString(`{"negative_limit":"-100"}`))
	req = withURLParam(withActor(req, admin), "id", "acc-1")
	rec := httptest.NewRecorder()

	handler.SetLimit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.NewLimit != domain.Units(-100) {
		t.Fatalf("unexpected limit %s", captured.NewLimit)
	}
}

func TestLedgerHandler_Remove(t *testing.T) {
	var removed string
	handler := NewLedgerHandler(&ledgerServiceStub{
		removeFn: func(ctx context.Context, accountID string, actor domain.Actor) error {
			if !actor.Privileged {
				return domain.ErrUnauthorized
			}
			removed = accountID
			return nil
		},
	})

	req := withURLParam(withActor(httptest.NewRequest(http.MethodDelete, "/accounts/acc-1", nil), employee), "id", "acc-1")
	rec := httptest.NewRecorder()
	handler.Remove(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee, got %d", rec.Code)
	}

	req = withURLParam(withActor(httptest.NewRequest(http.MethodDelete, "/accounts/acc-1", nil), admin), "id", "acc-1")
	rec = httptest.NewRecorder()
	handler.Remove(rec, req)
	if rec.Code != http.StatusNoContent || removed != "acc-1" {
		t.Fatalf("expected 204 and removal, got %d removed=%q", rec.Code, removed)
	}
}
