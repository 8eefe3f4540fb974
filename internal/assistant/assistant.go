// Package assistant answers spending questions about the most recent day of
// synced transactions using a language model.
package assistant

import (
	"context"
	"log/slog"

	"finance-sync/internal/domain"
)

const DefaultQuestion = "How am I doing today with my spending?"

type TransactionSource interface {
	RecentTransactions(ctx context.Context) ([]domain.DailyTransaction, error)
}

// Generator produces a reply to question under the system instructions.
type Generator interface {
	Generate(ctx context.Context, system, question string) (string, error)
}

type Assistant struct {
	source    TransactionSource
	generator Generator
	goals     []string
	logger    *slog.Logger
}

func New(source TransactionSource, generator Generator, goals []string, logger *slog.Logger) *Assistant {
	return &Assistant{
		source:    source,
		generator: generator,
		goals:     goals,
		logger:    logger,
	}
}

// Ask loads the recent transactions and asks the model about them.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	if question == "" {
		question = DefaultQuestion
	}

	transactions, err := a.source.RecentTransactions(ctx)
	if err != nil {
		a.logger.Error("Failed to load transactions for assistant", "error", err)
		return "", err
	}

	a.logger.Info("Asking assistant",
		"transaction_count", len(transactions),
		"goal_count", len(a.goals))

	answer, err := a.generator.Generate(ctx, BuildSystemPrompt(transactions, a.goals), question)
	if err != nil {
		a.logger.Error("Assistant generation failed", "error", err)
		return "", err
	}
	return answer, nil
}
