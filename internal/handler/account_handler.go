package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"finance-sync/internal/domain"
	"finance-sync/internal/errors"
)

const (
	defaultSnapshotLimit = 30
	maxSnapshotLimit     = 366
)

type AccountReader interface {
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	Snapshots(ctx context.Context, accountID string, limit int) ([]domain.AccountSnapshot, error)
}

type AccountHandler struct {
	reader AccountReader
	logger *slog.Logger
}

func NewAccountHandler(reader AccountReader, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		reader: reader,
		logger: logger,
	}
}

type AccountResponse struct {
	AccountID        string    `json:"account_id"`
	Name             string    `json:"name"`
	Currency         string    `json:"currency"`
	Balance          string    `json:"balance"`
	AvailableBalance *string   `json:"available_balance"`
	BalanceDate      time.Time `json:"balance_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type SnapshotResponse struct {
	BalanceDate      string    `json:"balance_date"`
	Balance          string    `json:"balance"`
	AvailableBalance *string   `json:"available_balance"`
	SnapshotTakenAt  time.Time `json:"snapshot_taken_at"`
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["account_id"]

	account, err := h.reader.GetAccount(r.Context(), accountID)
	if err != nil {
		handleError(w, h.logger, "get_account", err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{
		AccountID:        account.ID,
		Name:             account.Name,
		Currency:         account.Currency,
		Balance:          account.Balance.String(),
		AvailableBalance: nullableString(account.AvailableBalance),
		BalanceDate:      account.BalanceDate,
		UpdatedAt:        account.UpdatedAt,
	})
}

// ListSnapshots returns the account's balance history, newest first.
func (h *AccountHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["account_id"]

	limit := defaultSnapshotLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSnapshotLimit {
			writeError(w, errors.NewAppErrorf(errors.InvalidInput, "limit must be between 1 and %d", maxSnapshotLimit))
			return
		}
		limit = n
	}

	snapshots, err := h.reader.Snapshots(r.Context(), accountID, limit)
	if err != nil {
		handleError(w, h.logger, "list_snapshots", err)
		return
	}

	response := make([]SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		response = append(response, SnapshotResponse{
			BalanceDate:      s.BalanceDate.Format(dateLayout),
			Balance:          s.Balance.String(),
			AvailableBalance: nullableString(s.AvailableBalance),
			SnapshotTakenAt:  s.SnapshotTakenAt,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func nullableString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}
