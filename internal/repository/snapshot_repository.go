package repository

import (
	"context"
	"log/slog"

	"finance-sync/internal/domain"
)

const defaultSnapshotLimit = 30

type snapshotRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewSnapshotRepository(db SQLExecutor, logger *slog.Logger) domain.SnapshotRepository {
	return &snapshotRepository{
		db:     db,
		logger: logger,
	}
}

func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.AccountSnapshot) (domain.UpsertOutcome, error) {
	query := `
		INSERT INTO account_snapshots (account_id, balance_date, balance, available_balance, snapshot_taken_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (account_id, balance_date) DO UPDATE SET
			balance = EXCLUDED.balance,
			available_balance = EXCLUDED.available_balance,
			snapshot_taken_at = NOW()
		RETURNING (xmax = 0) AS inserted, snapshot_taken_at
	`

	snapshot.BalanceDate = domain.SnapshotDate(snapshot.BalanceDate)
	balanceDate := snapshot.BalanceDate.Format("2006-01-02")

	r.logger.Info("Upserting account snapshot",
		"account_id", snapshot.AccountID,
		"balance_date", balanceDate,
		"balance", snapshot.Balance,
		"available_balance", snapshot.AvailableBalance.Decimal)

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		snapshot.AccountID,
		balanceDate,
		snapshot.Balance.String(),
		snapshot.AvailableBalance,
	).Scan(&inserted, &snapshot.SnapshotTakenAt)
	if err != nil {
		r.logger.Error("Failed to upsert account snapshot",
			"account_id", snapshot.AccountID,
			"balance_date", balanceDate,
			"error", err)
		return "", translateError("failed to upsert snapshot for account "+snapshot.AccountID, err)
	}

	outcome := outcomeOf(inserted)
	r.logger.Info("Account snapshot upsert complete",
		"account_id", snapshot.AccountID,
		"balance_date", balanceDate,
		"operation", outcome)
	return outcome, nil
}

// ListByAccount returns the account's balance time series, newest first.
func (r *snapshotRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.AccountSnapshot, error) {
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}

	query := `
		SELECT account_id, balance_date, balance, available_balance, snapshot_taken_at
		FROM account_snapshots
		WHERE account_id = $1
		ORDER BY balance_date DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		r.logger.Error("Failed to list account snapshots", "account_id", accountID, "error", err)
		return nil, translateError("failed to list snapshots", err)
	}
	defer rows.Close()

	snapshots := make([]domain.AccountSnapshot, 0)
	for rows.Next() {
		var s domain.AccountSnapshot
		if err := rows.Scan(&s.AccountID, &s.BalanceDate, &s.Balance, &s.AvailableBalance, &s.SnapshotTakenAt); err != nil {
			return nil, translateError("failed to scan snapshot", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("failed to iterate snapshots", err)
	}

	return snapshots, nil
}
