// Package testutil starts throwaway Postgres instances for integration tests.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"finance-sync/internal/repository"
)

// Postgres is a migrated database running in a container.
type Postgres struct {
	DB        *sql.DB
	ConnStr   string
	container *postgres.PostgresContainer
}

// StartPostgres runs postgres:15-alpine, applies the schema and returns a live
// handle. Tests are skipped in -short mode.
func StartPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("finance"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %s", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to get connection string: %s", err)
	}

	db, err := repository.Open(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to connect to postgres: %s", err)
	}

	if err := repository.Migrate(ctx, db, DiscardLogger()); err != nil {
		db.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %s", err)
	}

	return &Postgres{DB: db, ConnStr: connStr, container: container}
}

// Reset empties every table.
func (p *Postgres) Reset(t *testing.T) {
	t.Helper()
	_, err := p.DB.Exec(`TRUNCATE transactions, account_snapshots, accounts, sync_runs`)
	if err != nil {
		t.Fatalf("Failed to truncate tables: %s", err)
	}
}

// Terminate closes the connection and removes the container.
func (p *Postgres) Terminate() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if p.DB != nil {
		p.DB.Close()
	}
	if p.container != nil {
		p.container.Terminate(ctx)
	}
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
