package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Posted        bool            `json:"posted"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Payee         string          `json:"payee"`
	Memo          string          `json:"memo"`
	TransactedAt  time.Time       `json:"transacted_at"`
	Pending       bool            `json:"pending"`
	LastUpdatedAt time.Time       `json:"last_updated_at"`
}

// DailyTransaction is a transaction joined with its account name.
type DailyTransaction struct {
	AccountName  string          `json:"account_name"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Payee        string          `json:"payee"`
	Memo         string          `json:"memo"`
	TransactedAt time.Time       `json:"transacted_at"`
	Pending      bool            `json:"pending"`
}

// BatchResult summarizes one account's transaction upsert.
type BatchResult struct {
	Processed   int             `json:"processed"`
	Inserted    int             `json:"inserted"`
	Updated     int             `json:"updated"`
	Pending     int             `json:"pending"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IDs         []string        `json:"-"`
}

type TransactionRepository interface {
	UpsertBatch(ctx context.Context, accountID string, transactions []Transaction) (*BatchResult, error)
	// ListByDay returns the day's transactions, most recent first.
	ListByDay(ctx context.Context, day time.Time) ([]DailyTransaction, error)
	CountByAccount(ctx context.Context, accountID string) (int, error)
}
