package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"finance-sync/internal/domain"
	"finance-sync/internal/errors"
)

// DailyTransactionReader is the read path the transaction endpoints use.
type DailyTransactionReader interface {
	TargetDay() time.Time
	TransactionsForDay(ctx context.Context, day time.Time) ([]domain.DailyTransaction, error)
}

type TransactionHandler struct {
	reader DailyTransactionReader
	logger *slog.Logger
}

func NewTransactionHandler(reader DailyTransactionReader, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		reader: reader,
		logger: logger,
	}
}

type DailyTransactionResponse struct {
	AccountName  string    `json:"account_name"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description"`
	Payee        string    `json:"payee"`
	Memo         string    `json:"memo"`
	TransactedAt time.Time `json:"transacted_at"`
	Pending      bool      `json:"pending"`
}

type DailyTransactionsResponse struct {
	Date         string                     `json:"date"`
	Count        int                        `json:"count"`
	Transactions []DailyTransactionResponse `json:"transactions"`
}

// Daily lists one day's transactions. Without ?date it serves the
// configured recent day.
func (h *TransactionHandler) Daily(w http.ResponseWriter, r *http.Request) {
	day := h.reader.TargetDay()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "date must be formatted as YYYY-MM-DD").WithDetails(err.Error()))
			return
		}
		day = parsed
	}

	transactions, err := h.reader.TransactionsForDay(r.Context(), day)
	if err != nil {
		handleError(w, h.logger, "list_daily_transactions", err)
		return
	}

	response := DailyTransactionsResponse{
		Date:         day.Format(dateLayout),
		Count:        len(transactions),
		Transactions: make([]DailyTransactionResponse, 0, len(transactions)),
	}
	for _, t := range transactions {
		response.Transactions = append(response.Transactions, DailyTransactionResponse{
			AccountName:  t.AccountName,
			Amount:       t.Amount.StringFixed(2),
			Description:  t.Description,
			Payee:        t.Payee,
			Memo:         t.Memo,
			TransactedAt: t.TransactedAt,
			Pending:      t.Pending,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
