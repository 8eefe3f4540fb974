package service

import (
	"context"
	"log/slog"
	"time"

	"finance-sync/internal/domain"
	"finance-sync/internal/repository"
)

// QueryService is the read path over synced data. It never writes.
type QueryService struct {
	store     *repository.Store
	dayOffset int
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewQueryService creates a QueryService. dayOffset is how many days before
// today RecentTransactions targets; 1 selects yesterday.
func NewQueryService(store *repository.Store, dayOffset int, location *time.Location, logger *slog.Logger) *QueryService {
	if location == nil {
		location = time.Local
	}
	return &QueryService{
		store:     store,
		dayOffset: dayOffset,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// TargetDay is the calendar day RecentTransactions reads.
func (s *QueryService) TargetDay() time.Time {
	return s.now().In(s.location).AddDate(0, 0, -s.dayOffset)
}

// RecentTransactions returns the transactions of TargetDay.
func (s *QueryService) RecentTransactions(ctx context.Context) ([]domain.DailyTransaction, error) {
	return s.TransactionsForDay(ctx, s.TargetDay())
}

// TransactionsForDay returns the transactions of day's calendar date, taken
// in the service's location, joined with account names, most recent first.
func (s *QueryService) TransactionsForDay(ctx context.Context, day time.Time) ([]domain.DailyTransaction, error) {
	y, m, d := day.Date()
	transactions, err := s.store.Transactions().ListByDay(ctx, time.Date(y, m, d, 0, 0, 0, 0, s.location))
	if err != nil {
		s.logger.Error("Failed to fetch transactions for day", "day", day.Format("2006-01-02"), "error", err)
		return nil, err
	}
	return transactions, nil
}

func (s *QueryService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.store.Accounts().GetAccount(ctx, accountID)
}

// Snapshots returns up to limit balance snapshots, newest first. The account
// must exist.
func (s *QueryService) Snapshots(ctx context.Context, accountID string, limit int) ([]domain.AccountSnapshot, error) {
	if _, err := s.store.Accounts().GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return s.store.Snapshots().ListByAccount(ctx, accountID, limit)
}
