package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Storage keys. Each key holds one whole JSON value.
const (
	KeySessions = "stash_sessions"
	KeySettings = "stash_settings"
	KeyVersion  = "stash_version"
)

// CurrentVersion is the storage schema version written by the first migration.
const CurrentVersion = 1

//go:embed migrations/*.sql
var migrationsFS embed.FS

// KV reads and writes whole JSON values by key.
type KV interface {
	// GetJSON decodes the value stored under key into dest. It reports false,
	// leaving dest untouched, when nothing is stored yet.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	// PutJSON replaces the value stored under key.
	PutJSON(ctx context.Context, key string, value any) error
}

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	*sqlx.DB
}

var _ KV = (*DB)(nil)

// Open creates or opens the SQLite database at the given path, applies the
// embedded migrations and configures WAL mode.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &DB{db}, nil
}

func runMigrations(dbPath string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite3://"+dbPath)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// GetJSON implements KV.
func (db *DB) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	var raw string
	err := db.GetContext(ctx, &raw, `SELECT value FROM kv WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON implements KV.
func (db *DB) PutJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// SchemaVersion returns the stored storage version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	ok, err := db.GetJSON(ctx, KeyVersion, &v)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return v, nil
}
