package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"finance-sync/internal/domain"
)

type SyncRunner interface {
	Run(ctx context.Context) (*domain.SyncSummary, error)
}

type SyncHandler struct {
	runner  SyncRunner
	timeout time.Duration
	logger  *slog.Logger
}

func NewSyncHandler(runner SyncRunner, timeout time.Duration, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		runner:  runner,
		timeout: timeout,
		logger:  logger,
	}
}

// Sync runs one sync window and returns the run summary. Partial runs are
// still a 200; the summary lists the failed accounts.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	summary, err := h.runner.Run(ctx)
	if err != nil {
		handleError(w, h.logger, "sync", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
