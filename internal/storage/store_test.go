package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock hands out strictly increasing times.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// openTestStore creates a migrated in-memory Store for testing.
func openTestStore(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, NewMigrationRunner(db).Run(context.Background()))

	store, err := NewSQLiteStore(db, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func eiffelTower() NewTrip {
	return NewTrip{
		PlaceName:     "Eiffel Tower",
		Provider:      "nominatim",
		Lat:           48.8584,
		Lon:           2.2945,
		CategoryKey:   "landmark",
		CategoryEmoji: "🏛️",
		DateStart:     "2024-05-01",
		DateEnd:       strPtr("2024-05-03"),
	}
}

// --- CreateTrip + GetTrip roundtrip ---

func TestCreateTrip_Roundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTrip(ctx, eiffelTower())
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Eiffel Tower", created.PlaceName)
	assert.Equal(t, "nominatim", created.Provider)
	assert.Nil(t, created.ProviderPlaceID)
	assert.Equal(t, 48.8584, created.Lat)
	assert.Equal(t, 2.2945, created.Lon)
	assert.Equal(t, "landmark", created.CategoryKey)
	assert.Equal(t, "🏛️", created.CategoryEmoji)
	assert.Equal(t, "2024-05-01", created.DateStart)
	require.NotNil(t, created.DateEnd)
	assert.Equal(t, "2024-05-03", *created.DateEnd)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := store.GetTrip(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.PlaceName, got.PlaceName)
	assert.Equal(t, created.DateEnd, got.DateEnd)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, created.UpdatedAt.Equal(got.UpdatedAt))
}

func TestCreateTrip_AppliesDefaults(t *testing.T) {
	store := openTestStore(t)

	created, err := store.CreateTrip(context.Background(), NewTrip{
		PlaceName: "Somewhere",
		Lat:       1,
		Lon:       2,
		DateStart: "2024-01-01",
	})
	require.NoError(t, err)

	assert.Equal(t, ProviderNominatim, created.Provider)
	assert.Equal(t, DefaultCategoryKey, created.CategoryKey)
	assert.Equal(t, DefaultCategoryEmoji, created.CategoryEmoji)
	assert.Nil(t, created.DateEnd)
}

func TestCreateTrip_WithProviderPlaceID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := eiffelTower()
	in.ProviderPlaceID = strPtr("88066702")
	created, err := store.CreateTrip(ctx, in)
	require.NoError(t, err)

	got, err := store.GetTrip(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProviderPlaceID)
	assert.Equal(t, "88066702", *got.ProviderPlaceID)
}

func TestCreateTrip_DateRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		end     *string
		wantErr bool
	}{
		{"end before start", strPtr("2024-04-30"), true},
		{"end equals start", strPtr("2024-05-01"), false},
		{"end after start", strPtr("2024-05-02"), false},
		{"no end", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := eiffelTower()
			in.DateEnd = tc.end
			_, err := store.CreateTrip(ctx, in)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			var cv *ConstraintViolation
			require.ErrorAs(t, err, &cv)
			assert.Equal(t, "date_end", cv.Field)
		})
	}
}

func TestCreateTrip_RejectsBadInput(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		mod   func(*NewTrip)
		field string
	}{
		{"empty place", func(n *NewTrip) { n.PlaceName = "  " }, "place_name"},
		{"unknown provider", func(n *NewTrip) { n.Provider = "google" }, "provider"},
		{"bad start", func(n *NewTrip) { n.DateStart = "05/01/2024" }, "date_start"},
		{"bad end", func(n *NewTrip) { n.DateEnd = strPtr("2024-13-01") }, "date_end"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := eiffelTower()
			tc.mod(&in)
			_, err := store.CreateTrip(ctx, in)
			var cv *ConstraintViolation
			require.ErrorAs(t, err, &cv)
			assert.Equal(t, tc.field, cv.Field)
		})
	}

	trips, err := store.ListTrips(ctx)
	require.NoError(t, err)
	assert.Empty(t, trips, "rejected writes must not persist anything")
}

func TestSchemaCheckRejectsDirectInsert(t *testing.T) {
	store := openTestStore(t)

	_, err := store.db.Exec(`INSERT INTO trips (place_name, provider, lat, lon, date_start, date_end, created_at, updated_at)
		VALUES ('x', 'nominatim', 0, 0, '2024-05-02', '2024-05-01', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.Error(t, err)
	assert.IsType(t, &ConstraintViolation{}, mapWriteError(err))
}

// --- GetTrip ---

func TestGetTrip_NotFound(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetTrip(context.Background(), 42)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// --- ListTrips ---

func TestListTrips_Empty(t *testing.T) {
	store := openTestStore(t)

	trips, err := store.ListTrips(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
}

func TestListTrips_OrderedByDateStartThenID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	starts := []string{"2023-07-10", "2024-02-01", "2023-07-10", "2022-12-31", "2024-02-01"}
	for _, s := range starts {
		in := eiffelTower()
		in.DateStart = s
		in.DateEnd = nil
		_, err := store.CreateTrip(ctx, in)
		require.NoError(t, err)
	}

	trips, err := store.ListTrips(ctx)
	require.NoError(t, err)
	require.Len(t, trips, 5)

	var got [][2]any
	for _, tr := range trips {
		got = append(got, [2]any{tr.DateStart, tr.ID})
	}
	assert.Equal(t, [][2]any{
		{"2024-02-01", int64(5)},
		{"2024-02-01", int64(2)},
		{"2023-07-10", int64(3)},
		{"2023-07-10", int64(1)},
		{"2022-12-31", int64(4)},
	}, got)
}

// --- UpdateTrip ---

func TestUpdateTrip_PartialPatch(t *testing.T) {
	clock := newTestClock()
	store := openTestStore(t, WithClock(clock.Now))
	ctx := context.Background()

	created, err := store.CreateTrip(ctx, eiffelTower())
	require.NoError(t, err)

	updated, err := store.UpdateTrip(ctx, created.ID, TripPatch{
		PlaceName: strPtr("Tour Eiffel"),
		Lat:       floatPtr(48.86),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Tour Eiffel", updated.PlaceName)
	assert.Equal(t, 48.86, updated.Lat)
	assert.Equal(t, created.Lon, updated.Lon)
	assert.Equal(t, created.CategoryKey, updated.CategoryKey)
	assert.Equal(t, created.DateStart, updated.DateStart)
	assert.Equal(t, created.DateEnd, updated.DateEnd)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	got, err := store.GetTrip(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tour Eiffel", got.PlaceName)
	assert.True(t, got.UpdatedAt.Equal(updated.UpdatedAt))
}

func TestUpdateTrip_UpdatedAtStrictlyIncreasesWithFrozenClock(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := openTestStore(t, WithClock(func() time.Time { return frozen }))
	ctx := context.Background()

	created, err := store.CreateTrip(ctx, eiffelTower())
	require.NoError(t, err)

	first, err := store.UpdateTrip(ctx, created.ID, TripPatch{PlaceName: strPtr("a")})
	require.NoError(t, err)
	second, err := store.UpdateTrip(ctx, created.ID, TripPatch{PlaceName: strPtr("b")})
	require.NoError(t, err)

	assert.True(t, first.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestUpdateTrip_NotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.UpdateTrip(context.Background(), 99, TripPatch{PlaceName: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTrip_DateEndNullVersusOmitted(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTrip(ctx, eiffelTower())
	require.NoError(t, err)

	// Omitted: end date survives.
	kept, err := store.UpdateTrip(ctx, created.ID, TripPatch{CategoryKey: strPtr("city")})
	require.NoError(t, err)
	require.NotNil(t, kept.DateEnd)
	assert.Equal(t, "2024-05-03", *kept.DateEnd)

	// Explicit null: end date cleared.
	cleared, err := store.UpdateTrip(ctx, created.ID, TripPatch{DateEnd: Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.DateEnd)

	got, err := store.GetTrip(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DateEnd)

	// Set again.
	set, err := store.UpdateTrip(ctx, created.ID, TripPatch{DateEnd: Some("2024-05-10")})
	require.NoError(t, err)
	require.NotNil(t, set.DateEnd)
	assert.Equal(t, "2024-05-10", *set.DateEnd)
}

func TestUpdateTrip_RevalidatesMergedDateRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTrip(ctx, eiffelTower())
	require.NoError(t, err)

	// Moving the start past the stored end must fail.
	_, err = store.UpdateTrip(ctx, created.ID, TripPatch{DateStart: strPtr("2024-05-04")})
	var cv *ConstraintViolation
	require.ErrorAs(t, err, &cv)

	// Moving the end before the stored start must fail.
	_, err = store.UpdateTrip(ctx, created.ID, TripPatch{DateEnd: Some("2024-04-30")})
	require.ErrorAs(t, err, &cv)

	// Both together in a valid order succeed.
	updated, err := store.UpdateTrip(ctx, created.ID, TripPatch{
		DateStart: strPtr("2024-06-01"),
		DateEnd:   Some("2024-06-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", updated.DateStart)

	// The failed updates left no trace.
	got, err := store.GetTrip(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", got.DateStart)
	assert.Equal(t, "2024-06-01", *got.DateEnd)
}

func TestUpdateTrip_ClearsProviderPlaceID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := eiffelTower()
	in.ProviderPlaceID = strPtr("123")
	created, err := store.CreateTrip(ctx, in)
	require.NoError(t, err)

	updated, err := store.UpdateTrip(ctx, created.ID, TripPatch{ProviderPlaceID: Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.ProviderPlaceID)
}

// --- DeleteTrip ---

func TestDeleteTrip_Idempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTrip(ctx, eiffelTower())
	require.NoError(t, err)

	require.NoError(t, store.DeleteTrip(ctx, created.ID))
	require.NoError(t, store.DeleteTrip(ctx, created.ID))
	require.NoError(t, store.DeleteTrip(ctx, 12345))

	_, err = store.GetTrip(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- Export ---

func TestExport(t *testing.T) {
	clock := newTestClock()
	store := openTestStore(t, WithClock(clock.Now))
	ctx := context.Background()

	first := eiffelTower()
	first.DateStart, first.DateEnd = "2023-01-01", nil
	_, err := store.CreateTrip(ctx, first)
	require.NoError(t, err)
	_, err = store.CreateTrip(ctx, eiffelTower())
	require.NoError(t, err)

	export, err := store.Export(ctx)
	require.NoError(t, err)
	assert.False(t, export.ExportedAt.IsZero())
	require.Len(t, export.Trips, 2)
	assert.Equal(t, "2024-05-01", export.Trips[0].DateStart)
	assert.Equal(t, "2023-01-01", export.Trips[1].DateStart)
}

// --- GetStats ---

func TestGetStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	empty, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalTrips)
	assert.Empty(t, empty.Categories)

	for _, s := range []string{"2022-03-01", "2024-08-15", "2023-01-01"} {
		in := eiffelTower()
		in.DateStart, in.DateEnd = s, nil
		_, err := store.CreateTrip(ctx, in)
		require.NoError(t, err)
	}
	_, err = store.CreateTrip(ctx, NewTrip{PlaceName: "Cafe", Lat: 1, Lon: 1, CategoryKey: "food", CategoryEmoji: "🍜", DateStart: "2023-05-05"})
	require.NoError(t, err)

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalTrips)
	assert.Equal(t, "2022-03-01", stats.EarliestStart)
	assert.Equal(t, "2024-08-15", stats.LatestStart)
	require.Len(t, stats.Categories, 2)
	assert.Equal(t, CategoryCount{Key: "landmark", Emoji: "🏛️", Count: 3}, stats.Categories[0])
	assert.Equal(t, CategoryCount{Key: "food", Emoji: "🍜", Count: 1}, stats.Categories[1])
}
