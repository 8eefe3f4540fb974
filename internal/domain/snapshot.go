package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AccountSnapshot struct {
	AccountID        string              `json:"account_id"`
	BalanceDate      time.Time           `json:"balance_date"`
	Balance          decimal.Decimal     `json:"balance"`
	AvailableBalance decimal.NullDecimal `json:"available_balance"`
	SnapshotTakenAt  time.Time           `json:"snapshot_taken_at"`
}

// SnapshotDate buckets a balance timestamp into its UTC calendar day.
func SnapshotDate(balanceDate time.Time) time.Time {
	y, m, d := balanceDate.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type SnapshotRepository interface {
	// Upsert keeps at most one snapshot per account and balance date.
	Upsert(ctx context.Context, snapshot *AccountSnapshot) (UpsertOutcome, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]AccountSnapshot, error)
}
