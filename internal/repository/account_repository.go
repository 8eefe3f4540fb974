package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"log/slog"

	"finance-sync/internal/domain"
	"finance-sync/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) Upsert(ctx context.Context, account *domain.Account) (domain.UpsertOutcome, error) {
	// xmax is zero only on the row version written by the INSERT branch.
	query := `
		INSERT INTO accounts (id, name, currency, balance, available_balance, balance_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			currency = EXCLUDED.currency,
			balance = EXCLUDED.balance,
			available_balance = EXCLUDED.available_balance,
			balance_date = EXCLUDED.balance_date,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted, updated_at
	`

	r.logger.Info("Upserting account",
		"account_id", account.ID,
		"name", account.Name,
		"currency", account.Currency,
		"balance", account.Balance,
		"available_balance", account.AvailableBalance.Decimal)

	var inserted bool
	err := r.db.QueryRowContext(ctx, query,
		account.ID,
		account.Name,
		account.Currency,
		account.Balance.String(),
		account.AvailableBalance,
		account.BalanceDate,
	).Scan(&inserted, &account.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert account", "account_id", account.ID, "error", err)
		return "", translateError("failed to upsert account "+account.ID, err)
	}

	outcome := outcomeOf(inserted)
	r.logger.Info("Account upsert complete", "account_id", account.ID, "operation", outcome)
	return outcome, nil
}

func (r *accountRepository) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, name, currency, balance, available_balance, balance_date, updated_at
		FROM accounts WHERE id = $1
	`

	var account domain.Account
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Currency,
		&account.Balance,
		&account.AvailableBalance,
		&account.BalanceDate,
		&account.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Account not found", "account_id", id)
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("Failed to get account", "account_id", id, "error", err)
		return nil, translateError("failed to get account", err)
	}

	return &account, nil
}

func outcomeOf(inserted bool) domain.UpsertOutcome {
	if inserted {
		return domain.OutcomeInserted
	}
	return domain.OutcomeUpdated
}
