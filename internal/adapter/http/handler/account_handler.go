package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	RegisterAccount(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Register registers a new customer account.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterAccountRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	account, err := h.accountUC.RegisterAccount(r.Context(), req.ToUseCaseInput(actorFrom(r)))
	if err != nil {
		writeDomainError(w, "failed to register account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists accounts, optionally filtered by name and balance sign.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Query:   r.URL.Query().Get("q"),
		Balance: r.URL.Query().Get("balance"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Count:    len(accounts),
		Limit:    limit,
		Offset:   offset,
	})
}
