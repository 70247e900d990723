package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jneralrex/stratos-backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add payout batches", "add_payout_batches"},
		{"Add-Payout-Batches", "add_payout_batches"},
		{"ADD__COMMISSION__INDEX", "add_commission_index"},
		{"   spaces   ", "spaces"},
		{"rate!@#v2", "ratev2"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	mf, err := CreateMigration(dir, "add payout batches", "Group paid commissions into batches", now)
	require.NoError(t, err)

	assert.Equal(t, "20260304050607", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20260304050607_add_payout_batches.up.sql"), mf.UpPath)
	assert.Equal(t, filepath.Join(dir, "20260304050607_add_payout_batches.down.sql"), mf.DownPath)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add payout batches")
	assert.Contains(t, string(up), "Group paid commissions into batches")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	_, err := CreateMigration(dir, "same", "", now)
	require.NoError(t, err)

	_, err = CreateMigration(dir, "same", "", now)
	assert.Error(t, err)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "", time.Now())
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_ledger.up.sql":   {Data: []byte("--")},
		"000002_add_ledger.down.sql": {Data: []byte("--")},
		"000001_init.up.sql":         {Data: []byte("--")},
		"000001_init.down.sql":       {Data: []byte("--")},
		"000003_orphan.up.sql":       {Data: []byte("--")},
		"README.md":                  {Data: []byte("docs")},
		"subdir.up.sql/file":         {Data: []byte("--")},
	}

	listed, err := ListMigrations(fsys)
	require.NoError(t, err)

	assert.Equal(t, []Listed{
		{Name: "000001_init", HasDown: true},
		{Name: "000002_add_ledger", HasDown: true},
		{Name: "000003_orphan", HasDown: false},
	}, listed)
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	listed, err := ListMigrations(os.DirFS("/nonexistent/path/to/migrations"))
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	listed, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, listed)

	names := make([]string, 0, len(listed))
	for _, m := range listed {
		assert.True(t, m.HasDown, "%s has no down migration", m.Name)
		names = append(names, m.Name)
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "create_users")
	assert.Contains(t, joined, "create_transactions")
	assert.Contains(t, joined, "create_commissions")
}

func TestEmbeddedSource(t *testing.T) {
	src, err := Embedded()
	require.NoError(t, err)
	assert.Equal(t, "embedded", src.String())
	assert.Equal(t, "file:///srv/migrations", FromDirectory("/srv/migrations").String())
}
