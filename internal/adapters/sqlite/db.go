// Package sqlite stores places in a local SQLite file for single-node setups.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"

	"github.com/qustavo/sqlhooks/v2"
	"modernc.org/sqlite"
)

const driverName = "sqliteWithHooks"

//go:embed migrations/*.sql
var migrationFS embed.FS

var (
	registerOnce sync.Once
	hooks        = &Hooks{}
)

// SetSlowQueryThreshold changes the threshold used by every connection.
// Call it before Open.
func SetSlowQueryThreshold(d time.Duration) {
	hooks.Threshold = d
}

// DB wraps a database/sql handle on the hooked modernc driver.
type DB struct {
	SQL *sql.DB
}

// Open opens (and creates) the database at path. ":memory:" gives a private
// in-memory database.
func Open(ctx context.Context, path string) (*DB, error) {
	registerOnce.Do(func() {
		sql.Register(driverName, sqlhooks.Wrap(&sqlite.Driver{}, hooks))
	})

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	return &DB{SQL: db}, nil
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.SQL.PingContext(ctx)
}

// Close releases the handle.
func (db *DB) Close() {
	_ = db.SQL.Close()
}

// Migrate applies embedded migrations that have not run yet.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	if _, err := db.SQL.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		var n int
		if err := db.SQL.QueryRowContext(ctx,
			`SELECT count(*) FROM schema_migrations WHERE version = ?`, name,
		).Scan(&n); err != nil {
			return applied, fmt.Errorf("check %s: %w", name, err)
		}
		if n > 0 {
			continue
		}

		data, err := migrationFS.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.SQL.ExecContext(ctx, string(data)); err != nil {
			return applied, fmt.Errorf("exec %s: %w", name, err)
		}
		if _, err := db.SQL.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, name); err != nil {
			return applied, fmt.Errorf("record %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}
