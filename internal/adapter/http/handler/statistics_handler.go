package handler

import (
	"context"
	"net/http"

	"github.com/iho/cantina/internal/domain"
)

// StatisticsService defines the behavior needed by StatisticsHandler.
type StatisticsService interface {
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}

// StatisticsHandler serves the account summary.
type StatisticsHandler struct {
	statsUC StatisticsService
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(statsUC StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsUC: statsUC}
}

// Get returns account counts and the total balance.
func (h *StatisticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsUC.GetStatistics(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get statistics", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
