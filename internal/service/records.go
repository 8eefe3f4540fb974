package service

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finance-sync/internal/domain"
	"finance-sync/internal/errors"
	"finance-sync/internal/simplefin"
)

var errMissing = stderrors.New("missing")

// accountRecords are the rows one SimpleFin account maps onto.
type accountRecords struct {
	account      domain.Account
	snapshot     domain.AccountSnapshot
	transactions []domain.Transaction
}

// accountLabel is the best-effort id and name of a possibly invalid account,
// for logs and failure reports.
func accountLabel(a simplefin.Account) (id, name string) {
	id, _ = parseText(a.ID)
	name, _ = parseText(a.Name)
	return id, name
}

// toAccountRecords validates a SimpleFin account and converts it, including
// every nested transaction. Any invalid record fails the whole account.
func toAccountRecords(a simplefin.Account) (*accountRecords, error) {
	label, _ := accountLabel(a)
	if a.Malformed != nil {
		return nil, errors.NewAppErrorf(errors.InvalidRecord, "account %s: malformed: %s", label, a.Malformed)
	}

	id, err := requiredText(a.ID)
	if err != nil {
		return nil, errors.NewAppErrorf(errors.InvalidRecord, "account: id: %s", err)
	}
	name, err := requiredText(a.Name)
	if err != nil {
		return nil, errors.NewAppErrorf(errors.InvalidRecord, "account %s: name: %s", id, err)
	}
	currency, err := requiredText(a.Currency)
	if err != nil {
		return nil, errors.NewAppErrorf(errors.InvalidRecord, "account %s: currency: %s", id, err)
	}

	balance, err := parseDecimal(a.Balance)
	if err != nil {
		return nil, errors.NewAppErrorf(errors.InvalidRecord, "account %s: balance: %s", id, err)
	}

	available := decimal.NullDecimal{}
	if !isAbsent(a.AvailableBalance) {
		v, err := parseDecimal(a.AvailableBalance)
		if err != nil {
			return nil, errors.NewAppErrorf(errors.InvalidRecord, "account %s: available-balance: %s", id, err)
		}
		available = decimal.NewNullDecimal(v)
	}

	balanceDate, err := parseEpoch(a.BalanceDate)
	if err != nil {
		return nil, errors.NewAppErrorf(errors.InvalidRecord, "account %s: balance-date: %s", id, err)
	}

	records := &accountRecords{
		account: domain.Account{
			ID:               id,
			Name:             name,
			Currency:         currency,
			Balance:          balance,
			AvailableBalance: available,
			BalanceDate:      balanceDate,
		},
		snapshot: domain.AccountSnapshot{
			AccountID:        id,
			BalanceDate:      balanceDate,
			Balance:          balance,
			AvailableBalance: available,
		},
		transactions: make([]domain.Transaction, 0, len(a.Transactions)),
	}

	for i, t := range a.Transactions {
		txn, err := toTransaction(id, t)
		if err != nil {
			return nil, errors.NewAppErrorf(errors.InvalidRecord, "account %s: transaction #%d: %s", id, i, err)
		}
		records.transactions = append(records.transactions, txn)
	}

	return records, nil
}

func toTransaction(accountID string, t simplefin.Transaction) (domain.Transaction, error) {
	if t.Malformed != nil {
		return domain.Transaction{}, fmt.Errorf("malformed: %w", t.Malformed)
	}

	id, err := requiredText(t.ID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("id: %w", err)
	}

	amount, err := parseDecimal(t.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%s: amount: %w", id, err)
	}

	transactedAt, err := parseEpoch(t.TransactedAt)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%s: transacted_at: %w", id, err)
	}

	txn := domain.Transaction{
		ID:           id,
		AccountID:    accountID,
		Posted:       postedFlag(t.Posted),
		Amount:       amount,
		TransactedAt: transactedAt,
		Pending:      pendingFlag(t.Pending),
	}
	for _, f := range []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"description", t.Description, &txn.Description},
		{"payee", t.Payee, &txn.Payee},
		{"memo", t.Memo, &txn.Memo},
	} {
		if *f.dst, err = parseText(f.raw); err != nil {
			return domain.Transaction{}, fmt.Errorf("%s: %s: %w", id, f.name, err)
		}
	}

	return txn, nil
}

// decodeScalar decodes raw keeping numbers as json.Number. Absent and null
// values decode to nil.
func decodeScalar(raw json.RawMessage) (interface{}, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// parseText accepts strings and numbers (ids are sometimes numeric). Absent
// is the empty string.
func parseText(raw json.RawMessage) (string, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return "", err
	}
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	default:
		return "", fmt.Errorf("expected text, got %s", raw)
	}
}

func requiredText(raw json.RawMessage) (string, error) {
	s, err := parseText(raw)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", errMissing
	}
	return s, nil
}

// parseDecimal accepts a JSON number or a numeric string.
func parseDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return decimal.Decimal{}, err
	}
	switch x := v.(type) {
	case nil:
		return decimal.Decimal{}, errMissing
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Decimal{}, errMissing
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Decimal{}, fmt.Errorf("expected a number, got %s", raw)
	}
}

// parseEpoch accepts Unix seconds as a JSON number or numeric string,
// including a fractional part.
func parseEpoch(raw json.RawMessage) (time.Time, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return time.Time{}, err
	}

	var n json.Number
	switch x := v.(type) {
	case nil:
		return time.Time{}, errMissing
	case json.Number:
		n = x
	case string:
		if n = json.Number(strings.TrimSpace(x)); n == "" {
			return time.Time{}, errMissing
		}
	default:
		return time.Time{}, fmt.Errorf("expected unix seconds, got %s", raw)
	}

	if secs, err := n.Int64(); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	f, err := n.Float64()
	if err != nil {
		return time.Time{}, fmt.Errorf("expected unix seconds, got %s", raw)
	}
	secs, frac := math.Modf(f)
	return time.Unix(int64(secs), int64(frac*1e9)).UTC(), nil
}

// postedFlag is true for a literal 1, its string form, or true.
func postedFlag(raw json.RawMessage) bool {
	v, err := decodeScalar(raw)
	if err != nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	case string:
		return strings.TrimSpace(x) == "1"
	default:
		return false
	}
}

// pendingFlag accepts booleans, 0/1 and their string forms; absent is false.
func pendingFlag(raw json.RawMessage) bool {
	v, err := decodeScalar(raw)
	if err != nil {
		return false
	}
	switch x := v.(type) {
	case bool:
		return x
	case json.Number:
		f, err := x.Float64()
		return err == nil && f != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "true" || s == "1"
	default:
		return false
	}
}
