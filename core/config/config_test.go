package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, BackendGorm, cfg.Storage.Backend)
	assert.Equal(t, "grand-opus-settings", cfg.Storage.Key)
	assert.Equal(t, 2*time.Second, cfg.Storage.PersistTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.App.CorsAllowedOrigins)
	assert.Same(t, cfg, Global)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "valkey")
	t.Setenv("VALKEY_ADDRESS", "cache:6379")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("APP_BASIC_AUTH", "admin:secret, ops:pw")

	cfg, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, BackendValkey, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Valkey.Address)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"admin:secret", "ops:pw"}, cfg.App.BasicAuth)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: memory\napp_info:\n  platform: Desktop\n  build_number: 1600\n"), 0o644))

	cfg, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)

	info := cfg.ApplicationInfo(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "Desktop", info.Platform)
	assert.Equal(t, 1600, info.BuildNumber)
	assert.Equal(t, "15.1", info.Version)
	assert.Equal(t, "2024-01-02", info.BuildDate)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "floppy")
	_, err := LoadConfig(viper.New(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func TestBasicAuthUsers(t *testing.T) {
	users, err := BasicAuthUsers([]string{"admin:secret"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"admin": "secret"}, users)

	_, err = BasicAuthUsers([]string{"nocolon"})
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}
