package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/cabanadebrincar/cabana-backend/pkg/config"
)

func TestShippedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
	require.NoError(t, ValidateDir(filepath.Join("migrations", "mysql")))
}

func TestMigrationsDeclarePaymentUniqueIndex(t *testing.T) {
	for _, dir := range []string{"migrations", filepath.Join("migrations", "mysql")} {
		matches, err := filepath.Glob(filepath.Join(dir, "*_create_orcamentos.sql"))
		require.NoError(t, err)
		require.Len(t, matches, 1, dir)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		content := string(data)

		for _, sub := range []string{
			"CREATE TABLE IF NOT EXISTS orcamentos",
			"CREATE TABLE IF NOT EXISTS pagamentos_orcamento",
			"ux_pagamentos_orcamento_tipo",
			"ux_orcamentos_token_avaliacao",
			"pacote_pegue_monte_id",
			"DROP TABLE IF EXISTS pagamentos_orcamento",
		} {
			require.Truef(t, strings.Contains(content, sub), "%s missing %q", matches[0], sub)
		}
	}
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_missing_down.sql"), []byte("-- +goose Up\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2, "every problem is reported")
}

func TestValidateDirRequiresMatchingDialects(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateSQLMigration(dir, "add pacote foto", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, ValidateDir(dir))

	orphan := filepath.Join(dir, "20260201000000_only_postgres.sql")
	require.NoError(t, os.WriteFile(orphan, []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	err = ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "20260201000000")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

	paths, err := CreateSQLMigration(dir, "Add Pacote Foto!", at)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "20261016093000_add_pacote_foto.sql"),
		filepath.Join(dir, "mysql", "20261016093000_add_pacote_foto.sql"),
	}, paths)

	content, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(content), "(mysql)")

	_, err = CreateSQLMigration(dir, "Add Pacote Foto!", at)
	assert.Error(t, err, "same version twice")

	_, err = CreateSQLMigration(dir, "!!!", at)
	assert.Error(t, err)
}

func TestDialectAndDir(t *testing.T) {
	cases := map[string]string{
		config.DriverPostgres: "postgres",
		config.DriverMySQL:    "mysql",
		config.DriverSQLite:   "sqlite3",
	}
	for driver, want := range cases {
		got, err := Dialect(driver)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := Dialect("oracle")
	require.Error(t, err)

	require.Equal(t, filepath.Join(DefaultDir, "mysql"), DirFor(DefaultDir, config.DriverMySQL))
	require.Equal(t, DefaultDir, DirFor(DefaultDir, config.DriverPostgres))
}
