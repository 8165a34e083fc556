package handler

import (
	"context"
	"net/http"

	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

// CleanupService defines the behavior needed by MaintenanceHandler.
type CleanupService interface {
	FindOrphans(ctx context.Context) ([]string, error)
	PurgeOrphans(ctx context.Context, actor domain.Actor) (*usecase.OrphanReport, error)
}

// MaintenanceHandler exposes orphaned entry recovery.
type MaintenanceHandler struct {
	cleanupUC CleanupService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(cleanupUC CleanupService) *MaintenanceHandler {
	return &MaintenanceHandler{cleanupUC: cleanupUC}
}

// ListOrphans lists account IDs whose entries outlived the account.
func (h *MaintenanceHandler) ListOrphans(w http.ResponseWriter, r *http.Request) {
	if err := actorFrom(r).RequirePrivileged(); err != nil {
		writeDomainError(w, "failed to list orphans", err)
		return
	}

	ids, err := h.cleanupUC.FindOrphans(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list orphans", err)
		return
	}

	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, dto.OrphansResponse{AccountIDs: ids, Count: len(ids)})
}

// PurgeOrphans deletes orphaned entries.
func (h *MaintenanceHandler) PurgeOrphans(w http.ResponseWriter, r *http.Request) {
	report, err := h.cleanupUC.PurgeOrphans(r.Context(), actorFrom(r))
	if err != nil {
		writeDomainError(w, "failed to purge orphans", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
