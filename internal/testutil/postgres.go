//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/HammerMeetNail/combohub/internal/database"
)

// StartPostgres runs a throwaway postgres container, applies the embedded
// migrations and returns a connected pool. Everything is torn down with t.
func StartPostgres(t *testing.T) *database.PostgresDB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("combohub"),
		tcpostgres.WithUsername("combohub"),
		tcpostgres.WithPassword("combohub"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminating postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("reading connection string: %v", err)
	}

	migrator, err := database.NewMigrator(dsn)
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	defer func() { _ = migrator.Close() }()
	if err := migrator.Up(); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	db, err := database.NewPostgresDB(ctx, dsn, database.PoolOptions{MaxConns: 4})
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}
