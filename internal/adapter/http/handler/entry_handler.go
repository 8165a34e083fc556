package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
}

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// ListByAccount lists entries for an account, newest first.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))

	entries, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		AccountID: accountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Get retrieves a single entry.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.entryUC.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}
