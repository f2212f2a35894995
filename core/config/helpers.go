package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "3000")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.base_path", "")
	v.SetDefault("app.basic_auth", "")
	v.SetDefault("app.cors_allowed_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("app.server_id", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.backend", BackendGorm)
	v.SetDefault("storage.key", domain.StorageKey)
	v.SetDefault("storage.persist_timeout", 2*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.name", filepath.Join("storages", "settings.db"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")

	v.SetDefault("valkey.address", "localhost:6379")
	v.SetDefault("valkey.password", "")
	v.SetDefault("valkey.db", 0)
	v.SetDefault("valkey.key_prefix", "azset:")

	v.SetDefault("mcp.host", "localhost")
	v.SetDefault("mcp.port", "8080")
}

// splitList parses a comma separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// BasicAuthUsers parses "user:secret" entries.
func BasicAuthUsers(entries []string) (map[string]string, error) {
	users := make(map[string]string, len(entries))
	for _, entry := range entries {
		user, secret, ok := strings.Cut(entry, ":")
		if !ok || user == "" || secret == "" {
			return nil, fmt.Errorf("basic auth entry %q is not in <user>:<secret> format", entry)
		}
		users[user] = secret
	}
	return users, nil
}
