package handler

import (
	"context"
	"net/http"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	Reconcile(ctx context.Context, actor domain.Actor) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler exposes the balance consistency check.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Reconcile compares every balance with its entries.
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.Reconcile(r.Context(), actorFrom(r))
	if err != nil {
		writeDomainError(w, "failed to reconcile balances", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
