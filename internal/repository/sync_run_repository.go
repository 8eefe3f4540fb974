package repository

import (
	"context"
	"log/slog"

	"finance-sync/internal/domain"
)

type syncRunRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewSyncRunRepository(db SQLExecutor, logger *slog.Logger) domain.SyncRunRepository {
	return &syncRunRepository{
		db:     db,
		logger: logger,
	}
}

func (r *syncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO sync_runs (
			id, started_at, finished_at, window_start, window_end,
			accounts_synced, accounts_failed, transactions_upserted, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt,
		run.FinishedAt,
		run.WindowStart,
		run.WindowEnd,
		run.AccountsSynced,
		run.AccountsFailed,
		run.TransactionsUpserted,
		run.Status,
	)
	if err != nil {
		r.logger.Error("Failed to record sync run", "run_id", run.ID, "error", err)
		return translateError("failed to record sync run", err)
	}

	r.logger.Info("Sync run recorded", "run_id", run.ID, "status", run.Status)
	return nil
}
