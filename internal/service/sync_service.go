package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finance-sync/internal/domain"
	"finance-sync/internal/repository"
	"finance-sync/internal/retry"
	"finance-sync/internal/simplefin"
)

const (
	defaultLookbackDays = 2
	runRecordTimeout    = 5 * time.Second
)

// AccountsFetcher is the upstream source of account payloads.
type AccountsFetcher interface {
	Accounts(ctx context.Context, window simplefin.Window) (*simplefin.AccountSet, error)
}

type SyncService struct {
	store        *repository.Store
	fetcher      AccountsFetcher
	retry        *retry.Policy
	lookbackDays int
	now          func() time.Time
	logger       *slog.Logger
}

// SyncOption configures a SyncService.
type SyncOption func(*SyncService)

// WithLookbackDays sets how many days before today each Run requests.
func WithLookbackDays(days int) SyncOption {
	return func(s *SyncService) {
		s.lookbackDays = days
	}
}

// WithUnitOfWorkRetry sets the retry policy applied to each account's writes.
func WithUnitOfWorkRetry(p *retry.Policy) SyncOption {
	return func(s *SyncService) {
		s.retry = p
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) SyncOption {
	return func(s *SyncService) {
		s.now = now
	}
}

func NewSyncService(store *repository.Store, fetcher AccountsFetcher, logger *slog.Logger, opts ...SyncOption) *SyncService {
	s := &SyncService{
		store:        store,
		fetcher:      fetcher,
		retry:        retry.New(),
		lookbackDays: defaultLookbackDays,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches the current sync window from SimpleFin and reconciles it.
// An upstream failure aborts the run before anything is written.
func (s *SyncService) Run(ctx context.Context) (*domain.SyncSummary, error) {
	window := simplefin.DailyWindow(s.now(), s.lookbackDays)

	set, err := s.fetcher.Accounts(ctx, window)
	if err != nil {
		s.logger.Error("Sync run aborted: upstream fetch failed", "error", err)
		return nil, err
	}

	return s.SyncAll(ctx, set, window)
}

// SyncAll reconciles every account in set. Accounts are independent units
// of work: a failed account is logged and reported in the summary while the
// remaining accounts continue. The run is recorded in sync_runs.
func (s *SyncService) SyncAll(ctx context.Context, set *simplefin.AccountSet, window simplefin.Window) (*domain.SyncSummary, error) {
	summary := &domain.SyncSummary{
		Run: domain.SyncRun{
			ID:          uuid.New(),
			StartedAt:   s.now(),
			WindowStart: window.Start,
			WindowEnd:   window.End,
		},
		Synced: make([]domain.AccountSyncResult, 0, len(set.Accounts)),
		Failed: make([]domain.AccountFailure, 0),
	}
	logger := s.logger.With("run_id", summary.Run.ID)

	logger.Info("Starting sync run",
		"account_count", len(set.Accounts),
		"window_start", window.Start,
		"window_end", window.End)

	for _, account := range set.Accounts {
		if err := ctx.Err(); err != nil {
			logger.Error("Sync run interrupted", "error", err, "remaining_accounts", len(set.Accounts)-len(summary.Synced)-len(summary.Failed))
			return summary, s.finishInterrupted(ctx, logger, summary, err)
		}

		result, err := s.SyncAccount(ctx, account)
		if err != nil {
			id, name := accountLabel(account)
			summary.Failed = append(summary.Failed, domain.AccountFailure{
				AccountID:   id,
				AccountName: name,
				Error:       err.Error(),
			})
			continue
		}

		summary.Synced = append(summary.Synced, *result)
		summary.Run.TransactionsUpserted += result.Transactions.Processed
	}

	s.finish(summary, summary.RunStatus())

	if err := s.store.SyncRuns().Create(ctx, &summary.Run); err != nil {
		logger.Error("Failed to record sync run", "error", err)
		return summary, err
	}

	logger.Info("Sync run complete",
		"status", summary.Run.Status,
		"accounts_synced", summary.Run.AccountsSynced,
		"accounts_failed", summary.Run.AccountsFailed,
		"transactions_upserted", summary.Run.TransactionsUpserted)
	return summary, nil
}

// SyncAccount upserts one account, its dated snapshot and its transactions
// in a single database transaction. Transient database failures are retried.
func (s *SyncService) SyncAccount(ctx context.Context, account simplefin.Account) (*domain.AccountSyncResult, error) {
	accountID, _ := accountLabel(account)
	logger := s.logger.With("account_id", accountID)

	records, err := toAccountRecords(account)
	if err != nil {
		logger.Error("Rejected account payload", "operation", "validate", "error", err)
		return nil, err
	}

	var result *domain.AccountSyncResult
	err = s.retry.Do(ctx, func(ctx context.Context) error {
		return s.store.WithTransaction(ctx, func(tx *repository.Store) error {
			written, err := s.writeAccount(ctx, tx, records)
			result = written
			return err
		})
	}, repository.IsTransient, func(err error, wait time.Duration) {
		logger.Warn("Account sync hit a transient failure, retrying", "error", err, "wait", wait)
	})
	if err != nil {
		logger.Error("Failed to sync account", "operation", "upsert", "error", err)
		return nil, err
	}

	logger.Info("Synced account",
		"name", result.AccountName,
		"account_operation", result.AccountOutcome,
		"snapshot_operation", result.SnapshotOutcome,
		"transaction_count", result.Transactions.Processed)
	return result, nil
}

func (s *SyncService) finish(summary *domain.SyncSummary, status string) {
	summary.Run.AccountsSynced = len(summary.Synced)
	summary.Run.AccountsFailed = len(summary.Failed)
	summary.Run.Status = status
	summary.Run.FinishedAt = s.now()
}

// finishInterrupted records a cancelled run so that the accounts already
// committed keep an audit row. The write gets its own short deadline since
// ctx is already done. The cause is returned either way.
func (s *SyncService) finishInterrupted(ctx context.Context, logger *slog.Logger, summary *domain.SyncSummary, cause error) error {
	s.finish(summary, domain.SyncRunCancelled)

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runRecordTimeout)
	defer cancel()

	if err := s.store.SyncRuns().Create(recordCtx, &summary.Run); err != nil {
		logger.Error("Failed to record interrupted sync run", "error", err)
	}
	return cause
}

func (s *SyncService) writeAccount(ctx context.Context, tx *repository.Store, records *accountRecords) (*domain.AccountSyncResult, error) {
	account := records.account
	accountOutcome, err := tx.Accounts().Upsert(ctx, &account)
	if err != nil {
		return nil, err
	}

	snapshot := records.snapshot
	snapshotOutcome, err := tx.Snapshots().Upsert(ctx, &snapshot)
	if err != nil {
		return nil, err
	}

	batch := &domain.BatchResult{}
	if len(records.transactions) > 0 {
		batch, err = tx.Transactions().UpsertBatch(ctx, account.ID, records.transactions)
		if err != nil {
			return nil, err
		}
	}

	return &domain.AccountSyncResult{
		AccountID:       account.ID,
		AccountName:     account.Name,
		AccountOutcome:  accountOutcome,
		SnapshotOutcome: snapshotOutcome,
		Transactions:    *batch,
	}, nil
}

var _ AccountsFetcher = (*simplefin.Client)(nil)
