package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add chart accounts", "add_chart_accounts"},
		{"Add-Chart-Accounts", "add_chart_accounts"},
		{"ADD_CHART_ACCOUNTS", "add_chart_accounts"},
		{"add__chart__accounts", "add_chart_accounts"},
		{"Add Sequence 123", "add_sequence_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
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
	tmpDir := t.TempDir()

	mf, err := CreateMigration(tmpDir, "add bank transactions")
	require.NoError(t, err)
	require.NotNil(t, mf)

	// Version format is YYYYMMDDHHMMSS
	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)
	assert.Contains(t, upBase, "add_bank_transactions")

	for _, path := range []string{mf.UpPath, mf.DownPath} {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- Migration: add bank transactions")
	}
}

func TestCreateMigrationMakesDirectory(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(tmpDir, "initial schema")
	require.NoError(t, err)

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up migrations by base name", func(t *testing.T) {
		tmpDir := t.TempDir()
		for _, name := range []string{
			"20260801000000_initial_schema.up.sql",
			"20260801000000_initial_schema.down.sql",
			"20260815000000_add_reconciliation.up.sql",
			"20260815000000_add_reconciliation.down.sql",
			"notes.txt",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte("-- sql\n"), 0644))
		}

		migrations, err := ListMigrations(tmpDir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20260801000000_initial_schema",
			"20260815000000_add_reconciliation",
		}, migrations)
	})

	t.Run("missing directory yields an empty list", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "does-not-exist"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
