package database

import (
	"path/filepath"
	"testing"

	"github.com/AzielCF/az-settings/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabaseSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.db")
	db, err := NewDatabase(config.DatabaseConfig{Driver: "sqlite", Name: path}, false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	assert.NoError(t, sqlDB.Close())
	assert.FileExists(t, path)
}

func TestNewDatabaseUnknownDriver(t *testing.T) {
	_, err := NewDatabase(config.DatabaseConfig{Driver: "mssql"}, false)
	assert.Error(t, err)
}

func TestSQLDriver(t *testing.T) {
	driver, dsn, err := SQLDriver(config.DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Name: "game"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.Contains(t, dsn, "dbname=game")

	driver, _, err = SQLDriver(config.DatabaseConfig{Driver: "sqlite", Name: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", driver)
}
