// Package pgtest starts a throwaway PostgreSQL for integration tests.
//
// Tests using it are skipped unless DEVHUB_TEST_INTEGRATION is set:
//
//	DEVHUB_TEST_INTEGRATION=1 go test ./internal/repository/... ./internal/integration/... -count=1
package pgtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"devhub/internal/config"
	"devhub/internal/database"
	"devhub/internal/database/migration"
	dbpostgres "devhub/internal/database/postgres"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const EnvIntegration = "DEVHUB_TEST_INTEGRATION"

// MigrationsDir returns the repository migrations directory regardless of the
// package the test runs from.
func MigrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Clean(filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "migrations"))
}

// Start runs postgres:16-alpine, applies the migrations and returns an open
// pool. Container and pool are released through t.Cleanup.
func Start(t *testing.T) database.DB {
	t.Helper()
	if os.Getenv(EnvIntegration) == "" {
		t.Skipf("integration tests are disabled (set %s=1)", EnvIntegration)
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "devhub", "POSTGRES_PASSWORD": "devhub", "POSTGRES_DB": "devhub"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	t.Logf("starting postgres container with image=%q", req.Image)
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		DBHost:     host,
		DBPort:     port.Port(),
		DBName:     "devhub",
		DBUser:     "devhub",
		DBPassword: "devhub",
		DBSSLMode:  "disable",
	}
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(connectCtx, cfg)
	require.NoError(t, err, fmt.Sprintf("connect %s:%s", host, port.Port()))
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migration.Runner{Dir: MigrationsDir()}.Run(ctx, db.SQLDB()))
	return db
}

// Truncate empties every application table between subtests.
func Truncate(t *testing.T, db database.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(), `TRUNCATE projects, profiles, users CASCADE`)
	require.NoError(t, err)
}
