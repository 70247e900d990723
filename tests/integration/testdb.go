//go:build integration

// Package integration runs the Stratos backend against a real PostgreSQL
// started with testcontainers. Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jneralrex/stratos-backend/internal/infrastructure/migration"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/persistence"
	"github.com/jneralrex/stratos-backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB represents a migrated test database
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	Fixtures  *testutil.Fixtures
	t         *testing.T
}

// NewTestDB starts a PostgreSQL container, applies the embedded migrations
// and terminates the container when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration tests need Docker")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("stratos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	gormLog := logger.Default.LogMode(logger.Silent)
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormLog = logger.Default.LogMode(logger.Info)
	}
	database, err := persistence.Open(gormpostgres.Open(dsn), gormLog)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)

	src, err := migration.Embedded()
	require.NoError(t, err)
	migrator, err := migration.New(sqlDB, src, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, migrator.Up(), "Failed to run migrations")

	tdb := &TestDB{
		DB:        database.DB,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		Fixtures:  testutil.NewFixtures(uint64(time.Now().UnixNano())),
		t:         t,
	}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CleanTables empties the ledger tables between subtests
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE commissions, transactions, users").Error)
}
