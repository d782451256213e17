package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration is one forward-only schema step. Versions are applied in slice
// order and must increase.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus is what `tasklet migrate --dry-run` reports.
type MigrationStatus struct {
	CurrentVersion   int             `json:"current_version"`
	AvailableVersion int             `json:"available_version"`
	Pending          []MigrationInfo `json:"pending"`
}

type MigrationInfo struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "todos table",
		SQL: `
CREATE TABLE IF NOT EXISTS todos (
  id TEXT PRIMARY KEY,
  text TEXT NOT NULL,
  due_date TEXT,
  image_url TEXT,
  pdf_url TEXT,
  completed INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
	},
	{
		Version:     2,
		Description: "newest-first list index",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_todos_created_at_desc ON todos(created_at DESC, id DESC);`,
	},
}

// appliedVersion reads the highest recorded version. A database that has
// never been migrated reports 0 without being modified.
func appliedVersion(ctx context.Context, db *sql.DB) (int, error) {
	var tables int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'").Scan(&tables); err != nil {
		return 0, fmt.Errorf("inspect schema: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}
	var version int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

func pendingAfter(version int) []Migration {
	var out []Migration
	for _, m := range migrations {
		if m.Version > version {
			out = append(out, m)
		}
	}
	return out
}

func runMigrations(db *sql.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := appliedVersion(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range pendingAfter(current) {
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", m.Version); err != nil {
		return fmt.Errorf("migration %d: record: %w", m.Version, err)
	}
	return tx.Commit()
}

// MigrationPlan reports pending migrations without applying or recording
// anything.
func MigrationPlan(db *sql.DB) (*MigrationStatus, error) {
	current, err := appliedVersion(context.Background(), db)
	if err != nil {
		return nil, err
	}
	status := &MigrationStatus{CurrentVersion: current, Pending: []MigrationInfo{}}
	if n := len(migrations); n > 0 {
		status.AvailableVersion = migrations[n-1].Version
	}
	for _, m := range pendingAfter(current) {
		status.Pending = append(status.Pending, MigrationInfo{Version: m.Version, Description: m.Description})
	}
	return status, nil
}
