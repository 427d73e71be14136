package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// Store defines the trip persistence operations.
type Store interface {
	ListTrips(ctx context.Context) ([]Trip, error)
	GetTrip(ctx context.Context, id int64) (*Trip, error)
	CreateTrip(ctx context.Context, in NewTrip) (*Trip, error)
	UpdateTrip(ctx context.Context, id int64, patch TripPatch) (*Trip, error)
	DeleteTrip(ctx context.Context, id int64) error
	Export(ctx context.Context) (*Export, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock replaces the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time

	// Prepared statements
	insertTrip *sql.Stmt
	getTrip    *sql.Stmt
	listTrips  *sql.Stmt
	deleteTrip *sql.Stmt
}

const tripColumns = `id, place_name, provider, provider_place_id, lat, lon,
	category_key, category_emoji, date_start, date_end, created_at, updated_at`

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertTrip, err = s.db.Prepare(`
		INSERT INTO trips (place_name, provider, provider_place_id, lat, lon,
			category_key, category_emoji, date_start, date_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getTrip, err = s.db.Prepare(`SELECT ` + tripColumns + ` FROM trips WHERE id = ?`)
	if err != nil {
		return err
	}

	s.listTrips, err = s.db.Prepare(`SELECT ` + tripColumns + ` FROM trips ORDER BY date_start DESC, id DESC`)
	if err != nil {
		return err
	}

	s.deleteTrip, err = s.db.Prepare(`DELETE FROM trips WHERE id = ?`)
	if err != nil {
		return err
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*Trip, error) {
	var t Trip
	var placeID, dateEnd sql.NullString
	var createdStr, updatedStr string

	if err := row.Scan(
		&t.ID, &t.PlaceName, &t.Provider, &placeID, &t.Lat, &t.Lon,
		&t.CategoryKey, &t.CategoryEmoji, &t.DateStart, &dateEnd,
		&createdStr, &updatedStr,
	); err != nil {
		return nil, err
	}

	if placeID.Valid {
		t.ProviderPlaceID = &placeID.String
	}
	if dateEnd.Valid {
		t.DateEnd = &dateEnd.String
	}
	t.CreatedAt, _ = parseTimestamp(createdStr)
	t.UpdatedAt, _ = parseTimestamp(updatedStr)

	return &t, nil
}

// formatTimestamp renders a timestamp the way it is stored.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// nullable converts an optional string to a SQL argument.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// checkTrip enforces the row invariants before a write. The schema CHECK
// constraints repeat the date and provider rules.
func checkTrip(t *Trip) error {
	if strings.TrimSpace(t.PlaceName) == "" {
		return &ConstraintViolation{Field: "place_name", Message: "must not be empty"}
	}
	if t.Provider != ProviderNominatim {
		return &ConstraintViolation{Field: "provider", Message: fmt.Sprintf("unsupported provider %q", t.Provider)}
	}
	if _, err := time.Parse(DateLayout, t.DateStart); err != nil {
		return &ConstraintViolation{Field: "date_start", Message: "must be a YYYY-MM-DD date"}
	}
	if t.DateEnd != nil {
		if _, err := time.Parse(DateLayout, *t.DateEnd); err != nil {
			return &ConstraintViolation{Field: "date_end", Message: "must be a YYYY-MM-DD date"}
		}
		if *t.DateEnd < t.DateStart {
			return errDateRange(t.DateStart, *t.DateEnd)
		}
	}
	return nil
}

// mapWriteError translates SQLite constraint failures into ConstraintViolation.
func mapWriteError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return &ConstraintViolation{Field: "trip", Message: sqliteErr.Error()}
	}
	return err
}

// ListTrips returns every trip, newest date_start first, ties by newest id.
func (s *SQLiteStore) ListTrips(ctx context.Context) ([]Trip, error) {
	rows, err := s.listTrips.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	trips := []Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

// GetTrip retrieves a single trip by id.
func (s *SQLiteStore) GetTrip(ctx context.Context, id int64) (*Trip, error) {
	t, err := scanTrip(s.getTrip.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trip %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

// CreateTrip inserts a trip, filling in defaults and the generated fields.
func (s *SQLiteStore) CreateTrip(ctx context.Context, in NewTrip) (*Trip, error) {
	t := Trip{
		PlaceName:       in.PlaceName,
		Provider:        in.Provider,
		ProviderPlaceID: in.ProviderPlaceID,
		Lat:             in.Lat,
		Lon:             in.Lon,
		CategoryKey:     in.CategoryKey,
		CategoryEmoji:   in.CategoryEmoji,
		DateStart:       in.DateStart,
		DateEnd:         in.DateEnd,
	}
	if t.Provider == "" {
		t.Provider = ProviderNominatim
	}
	if t.CategoryKey == "" {
		t.CategoryKey = DefaultCategoryKey
	}
	if t.CategoryEmoji == "" {
		t.CategoryEmoji = DefaultCategoryEmoji
	}

	if err := checkTrip(&t); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	ts := formatTimestamp(now)

	res, err := s.insertTrip.ExecContext(ctx,
		t.PlaceName, t.Provider, nullable(t.ProviderPlaceID), t.Lat, t.Lon,
		t.CategoryKey, t.CategoryEmoji, t.DateStart, nullable(t.DateEnd), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trip: %w", mapWriteError(err))
	}

	t.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read trip id: %w", err)
	}

	return &t, nil
}

// UpdateTrip merges patch over the stored trip and writes the result. The
// date range is re-checked on the merged row.
func (s *SQLiteStore) UpdateTrip(ctx context.Context, id int64, patch TripPatch) (*Trip, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	existing, err := scanTrip(tx.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trip %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load trip: %w", err)
	}

	merged := patch.Apply(*existing)
	if err := checkTrip(&merged); err != nil {
		return nil, err
	}

	merged.UpdatedAt = s.touch(existing.UpdatedAt)

	_, err = tx.ExecContext(ctx, `
		UPDATE trips SET
			place_name = ?, provider = ?, provider_place_id = ?, lat = ?, lon = ?,
			category_key = ?, category_emoji = ?, date_start = ?, date_end = ?,
			updated_at = ?
		WHERE id = ?`,
		merged.PlaceName, merged.Provider, nullable(merged.ProviderPlaceID), merged.Lat, merged.Lon,
		merged.CategoryKey, merged.CategoryEmoji, merged.DateStart, nullable(merged.DateEnd),
		formatTimestamp(merged.UpdatedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update trip: %w", mapWriteError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &merged, nil
}

// touch returns a modification time strictly after prev.
func (s *SQLiteStore) touch(prev time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

// DeleteTrip removes a trip. Deleting an unknown id is not an error.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, id int64) error {
	if _, err := s.deleteTrip.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}

// Export returns all trips in list order stamped with the export time.
func (s *SQLiteStore) Export(ctx context.Context) (*Export, error) {
	trips, err := s.ListTrips(ctx)
	if err != nil {
		return nil, err
	}
	return &Export{ExportedAt: s.now().UTC(), Trips: trips}, nil
}

// GetStats returns aggregate statistics about stored trips.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var earliest, latest sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), MIN(date_start), MAX(date_start) FROM trips",
	).Scan(&stats.TotalTrips, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("count trips: %w", err)
	}
	stats.EarliestStart = earliest.String
	stats.LatestStart = latest.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_key, MAX(category_emoji), COUNT(*) AS cnt
		FROM trips GROUP BY category_key ORDER BY cnt DESC, category_key
	`)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.Key, &cc.Emoji, &cc.Count); err != nil {
			return nil, err
		}
		stats.Categories = append(stats.Categories, cc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.insertTrip, s.getTrip, s.listTrips, s.deleteTrip}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
