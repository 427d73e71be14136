package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/travelpins/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testStore creates a temporary on-disk store with migrations applied.
func testStore(t *testing.T) (*storage.SQLiteStore, *sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, db, err := storage.Open(context.Background(), dbPath, "wal")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		db.Close()
	})
	return store, db, dbPath
}

func seedTrip(t *testing.T, store storage.Store, place, start string) *storage.Trip {
	t.Helper()
	trip, err := store.CreateTrip(context.Background(), storage.NewTrip{
		PlaceName:     place,
		Lat:           41.39,
		Lon:           2.17,
		CategoryKey:   "city",
		CategoryEmoji: "🏙️",
		DateStart:     start,
	})
	require.NoError(t, err)
	return trip
}
