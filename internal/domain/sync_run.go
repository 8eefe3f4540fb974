package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	SyncRunCompleted = "completed"
	SyncRunPartial   = "partial"
	SyncRunFailed    = "failed"
	// SyncRunCancelled marks a run stopped before every account was tried.
	SyncRunCancelled = "cancelled"
)

type SyncRun struct {
	ID                   uuid.UUID `json:"id"`
	StartedAt            time.Time `json:"started_at"`
	FinishedAt           time.Time `json:"finished_at"`
	WindowStart          time.Time `json:"window_start"`
	WindowEnd            time.Time `json:"window_end"`
	AccountsSynced       int       `json:"accounts_synced"`
	AccountsFailed       int       `json:"accounts_failed"`
	TransactionsUpserted int       `json:"transactions_upserted"`
	Status               string    `json:"status"`
}

// AccountSyncResult is the outcome of one account's unit of work.
type AccountSyncResult struct {
	AccountID       string        `json:"account_id"`
	AccountName     string        `json:"account_name"`
	AccountOutcome  UpsertOutcome `json:"account_outcome"`
	SnapshotOutcome UpsertOutcome `json:"snapshot_outcome"`
	Transactions    BatchResult   `json:"transactions"`
}

type AccountFailure struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Error       string `json:"error"`
}

// SyncSummary is the partial-success report of a sync run.
type SyncSummary struct {
	Run    SyncRun             `json:"run"`
	Synced []AccountSyncResult `json:"synced"`
	Failed []AccountFailure    `json:"failed"`
}

// RunStatus derives the run status from the per-account outcomes.
func (s *SyncSummary) RunStatus() string {
	switch {
	case len(s.Failed) == 0:
		return SyncRunCompleted
	case len(s.Synced) == 0:
		return SyncRunFailed
	default:
		return SyncRunPartial
	}
}

type SyncRunRepository interface {
	Create(ctx context.Context, run *SyncRun) error
}
