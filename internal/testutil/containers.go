//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"

	"github.com/light-bringer/provenance-ledger/internal/app/product/repo"
	"github.com/light-bringer/provenance-ledger/internal/pkg/clock"
)

// StartRedis starts a Redis container and returns a connected client.
func StartRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	// redis://host:port
	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse redis URL: %v", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Fatalf("failed to ping redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// StartPostgres starts a Postgres container and returns its DSN.
func StartPostgres(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}
	return dsn
}

// OpenPostgres returns a ledger on dsn with every ledger table emptied.
func OpenPostgres(t *testing.T, dsn string, clk clock.Clock) *repo.SQLLedger {
	t.Helper()

	ctx := context.Background()
	l, err := repo.OpenSQLLedger(ctx, repo.DriverPostgres, dsn, clk)
	require.NoError(t, err, "failed to open postgres ledger")
	t.Cleanup(func() { _ = l.Close() })

	db, err := sql.Open(repo.DriverPostgres, dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx,
		"TRUNCATE status_history, products, audit_entries, role_assignments, ledger_meta")
	require.NoError(t, err, "failed to clean database")
	return l
}

// StartRedpanda starts a Kafka-compatible broker with topic auto-creation and returns its seed address.
func StartRedpanda(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.4",
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		t.Fatalf("failed to start redpanda container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	if err != nil {
		t.Fatalf("failed to get redpanda seed broker: %v", err)
	}
	return broker
}
