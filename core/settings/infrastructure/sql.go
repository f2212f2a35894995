package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite3  = "sqlite3"
	DriverPostgres = "postgres"
)

// SettingsSQLRepository stores the key/value rows through database/sql. Both
// supported drivers accept $n placeholders and ON CONFLICT upserts.
type SettingsSQLRepository struct {
	db *sql.DB
}

func NewSettingsSQLRepository(db *sql.DB) *SettingsSQLRepository {
	return &SettingsSQLRepository{db: db}
}

// OpenSQL opens dsn with one of DriverSQLite3 or DriverPostgres.
func OpenSQL(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite3, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite3 {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func (r *SettingsSQLRepository) InitSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS settings_kv (
		"key" TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create settings_kv: %w", err)
	}
	return nil
}

func (r *SettingsSQLRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings_kv WHERE "key" = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SettingsSQLRepository) Set(ctx context.Context, key string, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings_kv ("key", value) VALUES ($1, $2)
		ON CONFLICT ("key") DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

func (r *SettingsSQLRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings_kv WHERE "key" = $1`, key)
	return err
}

func (r *SettingsSQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SettingsSQLRepository) Close() error {
	return r.db.Close()
}
