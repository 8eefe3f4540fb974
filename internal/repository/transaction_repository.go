package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"finance-sync/internal/domain"
	"finance-sync/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertBatch writes every transaction for the account. It stops at the first
// failing record; callers run it inside Store.WithTransaction so that the
// batch is all-or-nothing.
func (r *transactionRepository) UpsertBatch(ctx context.Context, accountID string, transactions []domain.Transaction) (*domain.BatchResult, error) {
	query := `
		INSERT INTO transactions (
			id, account_id, posted, amount, description,
			payee, memo, transacted_at, pending, last_updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			posted = EXCLUDED.posted,
			amount = EXCLUDED.amount,
			description = EXCLUDED.description,
			payee = EXCLUDED.payee,
			memo = EXCLUDED.memo,
			transacted_at = EXCLUDED.transacted_at,
			pending = EXCLUDED.pending,
			last_updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	r.logger.Info("Upserting transactions", "account_id", accountID, "transaction_count", len(transactions))

	result := &domain.BatchResult{
		TotalAmount: decimal.Zero,
		IDs:         make([]string, 0, len(transactions)),
	}

	for _, txn := range transactions {
		if txn.AccountID != accountID {
			r.logger.Error("Transaction belongs to a different account",
				"account_id", accountID,
				"transaction_id", txn.ID,
				"transaction_account_id", txn.AccountID)
			return nil, errors.NewAppErrorf(errors.InvalidRecord,
				"transaction %s belongs to account %s, not %s", txn.ID, txn.AccountID, accountID)
		}

		var inserted bool
		err := r.db.QueryRowContext(ctx, query,
			txn.ID,
			accountID,
			txn.Posted,
			txn.Amount.String(),
			txn.Description,
			txn.Payee,
			txn.Memo,
			txn.TransactedAt,
			txn.Pending,
		).Scan(&inserted)
		if err != nil {
			r.logger.Error("Failed to upsert transaction",
				"account_id", accountID,
				"transaction_id", txn.ID,
				"processed_count", result.Processed,
				"transaction_count", len(transactions),
				"error", err)
			return nil, translateError("failed to upsert transaction "+txn.ID, err)
		}

		result.Processed++
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		if txn.Pending {
			result.Pending++
		}
		result.TotalAmount = result.TotalAmount.Add(txn.Amount)
		result.IDs = append(result.IDs, txn.ID)
	}

	r.logger.Info("Transactions upsert complete",
		"account_id", accountID,
		"processed_count", result.Processed,
		"inserted_count", result.Inserted,
		"updated_count", result.Updated,
		"pending_count", result.Pending,
		"total_amount", result.TotalAmount,
		"transaction_ids", result.IDs)
	return result, nil
}

// ListByDay returns the transactions whose transacted_at falls on day's
// calendar date in day's location, joined with their account name.
func (r *transactionRepository) ListByDay(ctx context.Context, day time.Time) ([]domain.DailyTransaction, error) {
	query := `
		SELECT
			a.name AS account_name,
			t.amount,
			t.description,
			t.payee,
			t.memo,
			t.transacted_at,
			t.pending
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE t.transacted_at >= $1 AND t.transacted_at < $2
		ORDER BY t.transacted_at DESC, t.id
	`

	loc := day.Location()
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	r.logger.Info("Fetching transactions for day", "day", start.Format("2006-01-02"), "location", loc.String())

	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		r.logger.Error("Failed to fetch transactions for day", "day", start.Format("2006-01-02"), "error", err)
		return nil, translateError("failed to fetch transactions for day", err)
	}
	defer rows.Close()

	transactions := make([]domain.DailyTransaction, 0)
	for rows.Next() {
		var txn domain.DailyTransaction
		if err := rows.Scan(
			&txn.AccountName,
			&txn.Amount,
			&txn.Description,
			&txn.Payee,
			&txn.Memo,
			&txn.TransactedAt,
			&txn.Pending,
		); err != nil {
			r.logger.Error("Failed to scan transaction row", "error", err)
			return nil, translateError("failed to scan transaction", err)
		}
		txn.TransactedAt = txn.TransactedAt.In(loc)
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate transaction rows", "error", err)
		return nil, translateError("failed to iterate transactions", err)
	}

	r.logger.Info("Fetched transactions for day", "day", start.Format("2006-01-02"), "count", len(transactions))
	return transactions, nil
}

func (r *transactionRepository) CountByAccount(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count transactions", "account_id", accountID, "error", err)
		return 0, translateError("failed to count transactions", err)
	}
	return count, nil
}
