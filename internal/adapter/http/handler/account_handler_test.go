package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

type accountServiceStub struct {
	registerFn func(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error)
	getFn      func(ctx context.Context, id string) (*domain.Account, error)
	listFn     func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

func (s *accountServiceStub) RegisterAccount(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
	return s.registerFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, input)
}

var employee = domain.Actor{ID: "emp-1", Name: "Cashier"}

func withActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(domain.ContextWithActor(req.Context(), actor))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAccountHandler_Register_Success(t *testing.T) {
	var captured usecase.RegisterAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{ID: "acc-1", FullName: input.FullName, NegativeLimit: domain.DefaultNegativeLimit}, nil
		},
	})

	body, _ := json.Marshal(dto.RegisterAccountRequest{
		FullName:  "Ana Souza",
		BirthDate: "01/02/1990",
		Phone:     "11987654321",
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)), employee)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.FullName != "Ana Souza" || captured.Actor.ID != employee.ID {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.NegativeLimit != domain.DefaultNegativeLimit {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_Register_ValidationFailure(t *testing.T) {
	called := false
	handler := NewAccountHandler(&accountServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
			called = true
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(`{"full_name":"Ana"}`))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Fatal("service must not be called for an invalid body")
	}
}

func TestAccountHandler_Register_DomainValidation(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error) {
			return nil, domain.ErrInvalidBirthDate
		},
	})

	body := `{"full_name":"Ana Souza","birth_date":"31/02/1990","phone":"11987654321"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/accounts/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_MissingID(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{})

	rec := httptest.NewRecorder()
	handler.Get(rec, httptest.NewRequest(http.MethodGet, "/accounts/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_List_PassesFilters(t *testing.T) {
	var captured usecase.ListAccountsInput
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			captured = input
			return []*domain.Account{{ID: "acc-1"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts?q=ana&balance=negative&limit=5000&offset=-3", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if captured.Query != "ana" || captured.Balance != "negative" || captured.Limit != 1000 || captured.Offset != 0 {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.ListAccountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Count != 1 || resp.Accounts[0].ID != "acc-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_List_InvalidFilter(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error) {
			return nil, domain.ErrInvalidBalanceFilter
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/accounts?balance=sideways", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
