package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// IdempotencyKeyHeader carries the client-chosen key for credits and debits.
const IdempotencyKeyHeader = "Idempotency-Key"

// LedgerService is the balance engine as seen by LedgerHandler.
type LedgerService interface {
	Credit(ctx context.Context, input usecase.CreditInput) (*domain.Entry, error)
	Debit(ctx context.Context, input usecase.DebitInput) (*domain.Entry, error)
	SetLimit(ctx context.Context, input usecase.SetLimitInput) (*domain.Account, error)
	Remove(ctx context.Context, accountID string, actor domain.Actor) error
}

// LedgerHandler handles balance-changing requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Credit adds credit to an account.
func (h *LedgerHandler) Credit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.EntryRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	key := req.Key(r.Header.Get(IdempotencyKeyHeader))
	entry, err := h.ledgerUC.Credit(r.Context(), req.ToCreditInput(accountID, actorFrom(r), key))
	if err != nil {
		writeDomainError(w, "failed to add credit", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Debit records a purchase against an account.
func (h *LedgerHandler) Debit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.EntryRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	key := req.Key(r.Header.Get(IdempotencyKeyHeader))
	entry, err := h.ledgerUC.Debit(r.Context(), req.ToDebitInput(accountID, actorFrom(r), key))
	if err != nil {
		writeDomainError(w, "failed to record debit", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// SetLimit changes the negative limit of an account.
func (h *LedgerHandler) SetLimit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.SetLimitRequest
	if err := decodeRequest(r, &req); err != nil {
		writeDomainError(w, "invalid request body", err)
		return
	}

	account, err := h.ledgerUC.SetLimit(r.Context(), req.ToUseCaseInput(accountID, actorFrom(r)))
	if err != nil {
		writeDomainError(w, "failed to set limit", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Remove deletes an account and its entries.
func (h *LedgerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	if err := h.ledgerUC.Remove(r.Context(), accountID, actorFrom(r)); err != nil {
		writeDomainError(w, "failed to remove account", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
