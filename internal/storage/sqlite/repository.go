// Package sqlite persists entries to a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"worktrack/internal/core"
	"worktrack/internal/storage"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

var _ storage.Persister = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements storage.Loader
func (r *Repository) Load(ctx context.Context) (core.Entries, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date_key, entry_date, hours, notes FROM work_entries`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := core.Entries{}
	for rows.Next() {
		var key string
		var e core.WorkEntry
		if err := rows.Scan(&key, &e.Date, &e.Hours, &e.Notes); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", core.ErrDecode, err)
		}
		entries[key] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Save implements storage.Saver. The table is replaced inside one
// transaction, so readers never observe a half-written mapping.
func (r *Repository) Save(ctx context.Context, entries core.Entries) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM work_entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO work_entries (date_key, entry_date, hours, notes) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, e := range entries {
		if _, err := stmt.ExecContext(ctx, key, e.Date, e.Hours, e.Notes); err != nil {
			return fmt.Errorf("insert entry %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entries: %w", err)
	}

	slog.DebugContext(ctx, "Entries saved to SQLite", "count", len(entries))
	return nil
}
