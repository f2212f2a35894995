package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AzielCF/az-settings/core/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the gorm connection described by cfg. SQLite files get
// their parent directory created.
func NewDatabase(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite", "":
		if err := ensureDir(cfg.Name); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.SQLiteDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logMode := logger.Warn
	if debug {
		logMode = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database (%s): %w", cfg.Name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	if cfg.Driver == "sqlite" || cfg.Driver == "" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// SQLDriver maps the configured driver to its database/sql registration name.
func SQLDriver(cfg config.DatabaseConfig) (driver, dsn string, err error) {
	switch cfg.Driver {
	case "postgres":
		return "postgres", cfg.PostgresDSN(), nil
	case "sqlite", "":
		if err := ensureDir(cfg.Name); err != nil {
			return "", "", err
		}
		return "sqlite3", cfg.SQLiteDSN(), nil
	}
	return "", "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
