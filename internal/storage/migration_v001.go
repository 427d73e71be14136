package storage

import (
	"context"
	"database/sql"
)

// migrateV001 creates the trips table. The date range and provider
// invariants live in CHECK constraints so no writer can bypass them.
func migrateV001(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trips (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			place_name        TEXT NOT NULL CHECK (length(place_name) > 0),
			provider          TEXT NOT NULL DEFAULT 'nominatim' CHECK (provider IN ('nominatim')),
			provider_place_id TEXT,
			lat               REAL NOT NULL,
			lon               REAL NOT NULL,
			category_key      TEXT NOT NULL DEFAULT 'poi',
			category_emoji    TEXT NOT NULL DEFAULT '📍',
			date_start        TEXT NOT NULL,
			date_end          TEXT,
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL,
			CHECK (date_end IS NULL OR date_end >= date_start)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_trips_date_start    ON trips(date_start DESC, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_trips_provider_place ON trips(provider, provider_place_id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV002 indexes trips by category for the status breakdown.
func migrateV002(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_trips_category ON trips(category_key)`)
	return err
}
