package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens (creating if needed) the SQLite database at path, applies
// pending migrations and returns a ready store with its *sql.DB. The
// caller closes the store before the db.
func Open(ctx context.Context, path, journalMode string, opts ...Option) (*SQLiteStore, *sql.DB, error) {
	dsn := path + "?_foreign_keys=on"
	if path == MemoryPath {
		dsn = MemoryPath
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if path == MemoryPath {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := NewMigrationRunner(db).WithJournalMode(journalMode).Run(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := NewSQLiteStore(db, opts...)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}
