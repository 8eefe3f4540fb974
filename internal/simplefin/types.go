package simplefin

import (
	"bytes"
	"encoding/json"
	"time"
)

// AccountSet is the body of GET /accounts. Only the fields that are persisted
// are modelled.
type AccountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []Account `json:"accounts"`
}

// Account keeps every scalar raw. Decoding an account never fails the
// enclosing response: a value of the wrong shape is left for the caller to
// reject, and an element that is not an object at all is recorded in
// Malformed.
type Account struct {
	ID               json.RawMessage
	Name             json.RawMessage
	Currency         json.RawMessage
	Balance          json.RawMessage
	AvailableBalance json.RawMessage
	BalanceDate      json.RawMessage
	Transactions     []Transaction

	Malformed error `json:"-"`
}

func (a *Account) UnmarshalJSON(data []byte) error {
	var fields struct {
		ID               json.RawMessage `json:"id"`
		Name             json.RawMessage `json:"name"`
		Currency         json.RawMessage `json:"currency"`
		Balance          json.RawMessage `json:"balance"`
		AvailableBalance json.RawMessage `json:"available-balance"`
		BalanceDate      json.RawMessage `json:"balance-date"`
		Transactions     json.RawMessage `json:"transactions"`
	}

	*a = Account{}
	if err := json.Unmarshal(data, &fields); err != nil {
		a.Malformed = err
		return nil
	}

	a.ID = fields.ID
	a.Name = fields.Name
	a.Currency = fields.Currency
	a.Balance = fields.Balance
	a.AvailableBalance = fields.AvailableBalance
	a.BalanceDate = fields.BalanceDate

	if isAbsent(fields.Transactions) {
		return nil
	}
	// Transaction.UnmarshalJSON never fails, so only a non-array lands here.
	if err := json.Unmarshal(fields.Transactions, &a.Transactions); err != nil {
		a.Transactions = nil
		a.Malformed = err
	}
	return nil
}

// Transaction keeps every field raw so that one malformed record fails only
// its own account rather than the whole response.
type Transaction struct {
	ID           json.RawMessage `json:"id"`
	Posted       json.RawMessage `json:"posted"`
	Amount       json.RawMessage `json:"amount"`
	Description  json.RawMessage `json:"description"`
	Payee        json.RawMessage `json:"payee"`
	Memo         json.RawMessage `json:"memo"`
	TransactedAt json.RawMessage `json:"transacted_at"`
	Pending      json.RawMessage `json:"pending"`

	Malformed error `json:"-"`
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	type fields Transaction
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		*t = Transaction{Malformed: err}
		return nil
	}
	*t = Transaction(f)
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// Window is the [Start, End) range of transaction dates requested.
type Window struct {
	Start time.Time
	End   time.Time
}

// DailyWindow returns the window from local midnight lookbackDays ago up to
// local midnight today.
func DailyWindow(now time.Time, lookbackDays int) Window {
	y, m, d := now.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return Window{
		Start: end.AddDate(0, 0, -lookbackDays),
		End:   end,
	}
}
