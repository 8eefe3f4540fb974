// Command sync pulls the recent SimpleFin window into Postgres once and
// prints the run summary.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"finance-sync/internal/config"
	"finance-sync/internal/domain"
	"finance-sync/internal/repository"
	"finance-sync/internal/service"
	"finance-sync/internal/simplefin"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.SyncTimeout)
	defer cancel()

	db, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return 1
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db, logger); err != nil {
		logger.Error("Failed to apply migrations", "error", err)
		return 1
	}

	client := simplefin.NewClient(cfg.SimpleFin.BaseURL, cfg.SimpleFin.Username, cfg.SimpleFin.Password, logger)
	syncService := service.NewSyncService(repository.NewStore(db, logger), client, logger,
		service.WithLookbackDays(cfg.LookbackDays))

	summary, err := syncService.Run(ctx)
	if summary != nil {
		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		if encErr := out.Encode(summary); encErr != nil {
			fmt.Fprintln(os.Stderr, encErr)
		}
	}
	if err != nil {
		logger.Error("Sync failed", "error", err)
		return 1
	}
	if summary.Run.Status == domain.SyncRunFailed {
		return 1
	}
	return 0
}
