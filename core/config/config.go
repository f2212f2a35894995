package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AzielCF/az-settings/config"
	"github.com/AzielCF/az-settings/core/settings/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendGorm   = "gorm"
	BackendSQL    = "sql"
	BackendValkey = "valkey"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Log      LogConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	MCP      MCPConfig
	AppInfo  AppInfoConfig
}

type AppConfig struct {
	Port               string
	Debug              bool
	BasePath           string
	BasicAuth          []string
	CorsAllowedOrigins []string
	ServerID           string
}

type LogConfig struct {
	Level  string
	Format string // text | json
}

type StorageConfig struct {
	Backend        string
	Key            string
	PersistTimeout time.Duration
}

type DatabaseConfig struct {
	Driver   string // sqlite | postgres
	Name     string // File path for SQLite, DB Name for Postgres
	Host     string
	Port     int
	User     string
	Password string
}

type ValkeyConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type MCPConfig struct {
	Host string
	Port string
}

// AppInfoConfig overrides the built-in application metadata. Empty values
// keep the defaults.
type AppInfoConfig struct {
	Version      string
	BuildNumber  int
	BuildDate    string
	Platform     string
	Engine       string
	Author       string
	Website      string
	SupportEmail string
}

// Global provides access to the loaded configuration globally
var Global *Config

// LoadConfig reads .env (if present), the optional config file and the
// environment into v. Keys use dots (storage.backend) and map to
// upper-case env names (STORAGE_BACKEND).
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Port:               v.GetString("app.port"),
			Debug:              v.GetBool("app.debug"),
			BasePath:           strings.TrimSuffix(v.GetString("app.base_path"), "/"),
			BasicAuth:          splitList(v.GetString("app.basic_auth")),
			CorsAllowedOrigins: splitList(v.GetString("app.cors_allowed_origins")),
			ServerID:           v.GetString("app.server_id"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(v.GetString("storage.backend")),
			Key:            v.GetString("storage.key"),
			PersistTimeout: v.GetDuration("storage.persist_timeout"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("database.driver")),
			Name:     v.GetString("database.name"),
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
		},
		Valkey: ValkeyConfig{
			Address:   v.GetString("valkey.address"),
			Password:  v.GetString("valkey.password"),
			DB:        v.GetInt("valkey.db"),
			KeyPrefix: v.GetString("valkey.key_prefix"),
		},
		MCP: MCPConfig{
			Host: v.GetString("mcp.host"),
			Port: v.GetString("mcp.port"),
		},
		AppInfo: AppInfoConfig{
			Version:      firstNonEmpty(v.GetString("app_info.version"), config.Version),
			BuildNumber:  v.GetInt("app_info.build_number"),
			BuildDate:    firstNonEmpty(v.GetString("app_info.build_date"), config.BuildDate),
			Platform:     v.GetString("app_info.platform"),
			Engine:       v.GetString("app_info.engine"),
			Author:       v.GetString("app_info.author"),
			Website:      v.GetString("app_info.website"),
			SupportEmail: v.GetString("app_info.support_email"),
		},
	}
	if cfg.AppInfo.BuildNumber == 0 && config.BuildNumber != "" {
		if n, err := strconv.Atoi(config.BuildNumber); err == nil {
			cfg.AppInfo.BuildNumber = n
		}
	}
	if cfg.App.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	Global = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.Errors{
		"storage": validation.ValidateStruct(&c.Storage,
			validation.Field(&c.Storage.Backend, validation.Required, validation.In(BackendMemory, BackendGorm, BackendSQL, BackendValkey)),
			validation.Field(&c.Storage.Key, validation.Required),
			validation.Field(&c.Storage.PersistTimeout, validation.Min(time.Duration(0))),
		),
		"database": validation.ValidateStruct(&c.Database,
			validation.Field(&c.Database.Driver, validation.In("sqlite", "postgres")),
			validation.Field(&c.Database.Name, validation.When(c.Storage.Backend == BackendGorm || c.Storage.Backend == BackendSQL, validation.Required)),
		),
		"valkey": validation.ValidateStruct(&c.Valkey,
			validation.Field(&c.Valkey.Address, validation.When(c.Storage.Backend == BackendValkey, validation.Required)),
		),
		"log": validation.ValidateStruct(&c.Log,
			validation.Field(&c.Log.Level, validation.In("panic", "fatal", "error", "warn", "warning", "info", "debug", "trace")),
			validation.Field(&c.Log.Format, validation.In("text", "json")),
		),
	}.Filter()
}

// ApplicationInfo merges the configured overrides over the built-in metadata.
func (c *Config) ApplicationInfo(now time.Time) domain.ApplicationInfo {
	info := domain.DefaultApplicationInfo(now)
	o := c.AppInfo
	info.Version = firstNonEmpty(o.Version, info.Version)
	info.BuildDate = firstNonEmpty(o.BuildDate, info.BuildDate)
	info.Platform = firstNonEmpty(o.Platform, info.Platform)
	info.Engine = firstNonEmpty(o.Engine, info.Engine)
	info.Author = firstNonEmpty(o.Author, info.Author)
	info.Website = firstNonEmpty(o.Website, info.Website)
	info.SupportEmail = firstNonEmpty(o.SupportEmail, info.SupportEmail)
	if o.BuildNumber > 0 {
		info.BuildNumber = o.BuildNumber
	}
	return info
}

// PostgresDSN builds a lib/pq and pgx compatible keyword DSN.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port)
}

func (d DatabaseConfig) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", d.Name)
}
