package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UpsertOutcome reports which branch of an upsert fired.
type UpsertOutcome string

const (
	OutcomeInserted UpsertOutcome = "insert"
	OutcomeUpdated  UpsertOutcome = "update"
)

type Account struct {
	ID               string              `json:"account_id"`
	Name             string              `json:"name"`
	Currency         string              `json:"currency"`
	Balance          decimal.Decimal     `json:"balance"`
	AvailableBalance decimal.NullDecimal `json:"available_balance"`
	BalanceDate      time.Time           `json:"balance_date"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type AccountRepository interface {
	// Upsert inserts the account or overwrites its mutable fields.
	Upsert(ctx context.Context, account *Account) (UpsertOutcome, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
}
