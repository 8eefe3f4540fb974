package handler

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-sync/internal/domain"
	"finance-sync/internal/errors"
	"finance-sync/internal/testutil"
)

type fakeReader struct {
	target    time.Time
	requested time.Time
	rows      []domain.DailyTransaction
	account   *domain.Account
	snapshots []domain.AccountSnapshot
	limit     int
	err       error
}

func (f *fakeReader) TargetDay() time.Time { return f.target }

func (f *fakeReader) TransactionsForDay(ctx context.Context, day time.Time) ([]domain.DailyTransaction, error) {
	f.requested = day
	return f.rows, f.err
}

func (f *fakeReader) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return f.account, f.err
}

func (f *fakeReader) Snapshots(ctx context.Context, accountID string, limit int) ([]domain.AccountSnapshot, error) {
	f.limit = limit
	return f.snapshots, f.err
}

type fakeRunner struct {
	summary *domain.SyncSummary
	err     error
}

func (f *fakeRunner) Run(ctx context.Context) (*domain.SyncSummary, error) {
	return f.summary, f.err
}

func newRouter(reader *fakeReader, runner *fakeRunner) *mux.Router {
	logger := testutil.DiscardLogger()
	transactions := NewTransactionHandler(reader, logger)
	accounts := NewAccountHandler(reader, logger)
	sync := NewSyncHandler(runner, time.Second, logger)

	router := mux.NewRouter()
	router.HandleFunc("/transactions/daily", transactions.Daily).Methods("GET")
	router.HandleFunc("/accounts/{account_id}", accounts.GetAccount).Methods("GET")
	router.HandleFunc("/accounts/{account_id}/snapshots", accounts.ListSnapshots).Methods("GET")
	router.HandleFunc("/sync", sync.Sync).Methods("POST")
	return router
}

func serve(router http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body map[string]json.RawMessage
	json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func decodeError(t *testing.T, body map[string]json.RawMessage) Error {
	t.Helper()
	var e Error
	require.NoError(t, json.Unmarshal(body["error"], &e))
	return e
}

func TestDaily_DefaultsToTargetDay(t *testing.T) {
	reader := &fakeReader{
		target: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		rows: []domain.DailyTransaction{
			{AccountName: "Checking", Amount: decimal.RequireFromString("-4.5"), Payee: "Cafe", TransactedAt: time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)},
		},
	}

	rec, body := serve(newRouter(reader, &fakeRunner{}), "GET", "/transactions/daily")
	require.Equal(t, http.StatusOK, rec.Code)

	var data DailyTransactionsResponse
	require.NoError(t, json.Unmarshal(body["data"], &data))
	assert.Equal(t, "2025-03-10", data.Date)
	assert.Equal(t, 1, data.Count)
	assert.Equal(t, "-4.50", data.Transactions[0].Amount)
	assert.Equal(t, "Cafe", data.Transactions[0].Payee)
	assert.Equal(t, reader.target, reader.requested)
}

func TestDaily_ExplicitDate(t *testing.T) {
	reader := &fakeReader{target: time.Now()}

	rec, body := serve(newRouter(reader, &fakeRunner{}), "GET", "/transactions/daily?date=2024-12-31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-12-31", reader.requested.Format(dateLayout))

	var data DailyTransactionsResponse
	require.NoError(t, json.Unmarshal(body["data"], &data))
	assert.Equal(t, 0, data.Count)
	assert.NotNil(t, data.Transactions)
}

func TestDaily_InvalidDate(t *testing.T) {
	rec, body := serve(newRouter(&fakeReader{}, &fakeRunner{}), "GET", "/transactions/daily?date=31-12-2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(errors.InvalidInput), decodeError(t, body).Code)
}

func TestDaily_QueryFailure(t *testing.T) {
	reader := &fakeReader{err: errors.Wrap(errors.PersistenceError, "failed to list transactions", stderrors.New("connection reset"))}

	rec, body := serve(newRouter(reader, &fakeRunner{}), "GET", "/transactions/daily")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(errors.PersistenceError), decodeError(t, body).Code)
}

func TestGetAccount(t *testing.T) {
	reader := &fakeReader{account: &domain.Account{
		ID:       "ACT-1",
		Name:     "Checking",
		Currency: "USD",
		Balance:  decimal.RequireFromString("150.25"),
	}}

	rec, body := serve(newRouter(reader, &fakeRunner{}), "GET", "/accounts/ACT-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var data AccountResponse
	require.NoError(t, json.Unmarshal(body["data"], &data))
	assert.Equal(t, "ACT-1", data.AccountID)
	assert.Equal(t, "150.25", data.Balance)
	assert.Nil(t, data.AvailableBalance)
}

func TestGetAccount_NotFound(t *testing.T) {
	reader := &fakeReader{err: errors.ErrAccountNotFound}

	rec, body := serve(newRouter(reader, &fakeRunner{}), "GET", "/accounts/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(errors.AccountNotFound), decodeError(t, body).Code)
}

func TestListSnapshots(t *testing.T) {
	reader := &fakeReader{snapshots: []domain.AccountSnapshot{
		{
			AccountID:        "ACT-1",
			BalanceDate:      time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			Balance:          decimal.RequireFromString("10"),
			AvailableBalance: decimal.NewNullDecimal(decimal.RequireFromString("8")),
		},
		{AccountID: "ACT-1", BalanceDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Balance: decimal.RequireFromString("9")},
	}}
	router := newRouter(reader, &fakeRunner{})

	rec, body := serve(router, "GET", "/accounts/ACT-1/snapshots?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, reader.limit)

	var data []SnapshotResponse
	require.NoError(t, json.Unmarshal(body["data"], &data))
	require.Len(t, data, 2)
	assert.Equal(t, "2025-03-11", data[0].BalanceDate)
	require.NotNil(t, data[0].AvailableBalance)
	assert.Equal(t, "8", *data[0].AvailableBalance)

	serve(router, "GET", "/accounts/ACT-1/snapshots")
	assert.Equal(t, defaultSnapshotLimit, reader.limit)
}

func TestListSnapshots_InvalidLimit(t *testing.T) {
	router := newRouter(&fakeReader{}, &fakeRunner{})

	for _, limit := range []string{"0", "-1", "abc", "1000"} {
		rec, _ := serve(router, "GET", "/accounts/ACT-1/snapshots?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestSync(t *testing.T) {
	runner := &fakeRunner{summary: &domain.SyncSummary{
		Run:    domain.SyncRun{AccountsSynced: 1, AccountsFailed: 1, Status: domain.SyncRunPartial},
		Synced: []domain.AccountSyncResult{{AccountID: "ACT-1"}},
		Failed: []domain.AccountFailure{{AccountID: "ACT-2", Error: "invalid_record: missing amount"}},
	}}

	rec, body := serve(newRouter(&fakeReader{}, runner), "POST", "/sync")
	require.Equal(t, http.StatusOK, rec.Code)

	var data domain.SyncSummary
	require.NoError(t, json.Unmarshal(body["data"], &data))
	assert.Equal(t, domain.SyncRunPartial, data.Run.Status)
	assert.Equal(t, "ACT-2", data.Failed[0].AccountID)
}

func TestSync_UpstreamFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.NewAppError(errors.UpstreamError, "failed to fetch accounts")}

	rec, body := serve(newRouter(&fakeReader{}, runner), "POST", "/sync")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, string(errors.UpstreamError), decodeError(t, body).Code)
}

func TestSync_UnexpectedErrorIsHidden(t *testing.T) {
	runner := &fakeRunner{err: context.DeadlineExceeded}

	rec, body := serve(newRouter(&fakeReader{}, runner), "POST", "/sync")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	e := decodeError(t, body)
	assert.Equal(t, string(errors.InternalError), e.Code)
	assert.Empty(t, e.Details)
}
