// Package testinfra starts throwaway databases for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:16-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "gene_expression"

	// ConnEnv overrides the container with an existing server.
	ConnEnv = "VIBE_GENES_TEST_PG"
)

var (
	containerOnce sync.Once
	containerConn string
	containerErr  error
)

// StartPostgres runs a PostgreSQL container and returns its connection string.
func StartPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get connection string: %w", err)
	}
	return ctr, connStr, nil
}

// RequirePostgres returns a connection string for a test database.
// Priority: VIBE_GENES_TEST_PG > shared container > skip.
// The test is skipped in -short mode.
func RequirePostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if conn := os.Getenv(ConnEnv); conn != "" {
		return conn
	}

	containerOnce.Do(func() {
		// The container lives for the rest of the test binary; ryuk reaps it.
		_, containerConn, containerErr = StartPostgres(context.Background())
	})
	if containerErr != nil {
		t.Skipf("%s not set and Docker unavailable: %v", ConnEnv, containerErr)
	}
	return containerConn
}
