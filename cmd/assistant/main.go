// Command assistant asks a Gemini model about the most recent day of synced
// transactions, measured against the configured goals.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"finance-sync/internal/assistant"
	"finance-sync/internal/config"
	"finance-sync/internal/repository"
	"finance-sync/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [question]\n", os.Args[0])
	}
	flag.Parse()

	if err := run(context.Background(), logger, strings.Join(flag.Args(), " ")); err != nil {
		logger.Error("Assistant failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, question string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	goals, err := assistant.LoadGoals(cfg.GoalsFile)
	if err != nil {
		return err
	}

	db, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	queries := service.NewQueryService(repository.NewStore(db, logger), cfg.DayOffset, cfg.Location, logger)

	generator, err := assistant.NewGeminiGenerator(ctx, cfg.GeminiModel)
	if err != nil {
		return err
	}

	answer, err := assistant.New(queries, generator, goals, logger).Ask(ctx, question)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
