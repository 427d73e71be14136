package storage

import "time"

// ProviderNominatim is the only supported geocoder provider.
const ProviderNominatim = "nominatim"

// Default category applied when a trip is created without one.
const (
	DefaultCategoryKey   = "poi"
	DefaultCategoryEmoji = "📍"
)

// DateLayout is the wire and storage format of trip dates.
const DateLayout = "2006-01-02"

// Trip is a saved place visit.
type Trip struct {
	ID              int64     `json:"id"`
	PlaceName       string    `json:"place_name"`
	Provider        string    `json:"provider"`
	ProviderPlaceID *string   `json:"provider_place_id"`
	Lat             float64   `json:"lat"`
	Lon             float64   `json:"lon"`
	CategoryKey     string    `json:"category_key"`
	CategoryEmoji   string    `json:"category_emoji"`
	DateStart       string    `json:"date_start"`
	DateEnd         *string   `json:"date_end"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewTrip holds the client-settable fields of a trip being created.
// Empty Provider, CategoryKey and CategoryEmoji take their defaults.
type NewTrip struct {
	PlaceName       string
	Provider        string
	ProviderPlaceID *string
	Lat             float64
	Lon             float64
	CategoryKey     string
	CategoryEmoji   string
	DateStart       string
	DateEnd         *string
}

// Nullable is a patch value that tells an omitted field apart from one
// explicitly set to null.
type Nullable[T any] struct {
	Set   bool // field was supplied
	Valid bool // supplied value is non-null
	Value T
}

// Some returns a Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns a Nullable that clears the field.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// apply returns the patched value of a nullable column.
func (n Nullable[T]) apply(current *T) *T {
	if !n.Set {
		return current
	}
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// TripPatch is a partial update. Nil pointers and unset Nullables leave the
// stored value unchanged.
type TripPatch struct {
	PlaceName       *string
	Provider        *string
	ProviderPlaceID Nullable[string]
	Lat             *float64
	Lon             *float64
	CategoryKey     *string
	CategoryEmoji   *string
	DateStart       *string
	DateEnd         Nullable[string]
}

// Apply merges the patch over t and returns the result. t is not modified.
func (p TripPatch) Apply(t Trip) Trip {
	if p.PlaceName != nil {
		t.PlaceName = *p.PlaceName
	}
	if p.Provider != nil {
		t.Provider = *p.Provider
	}
	t.ProviderPlaceID = p.ProviderPlaceID.apply(t.ProviderPlaceID)
	if p.Lat != nil {
		t.Lat = *p.Lat
	}
	if p.Lon != nil {
		t.Lon = *p.Lon
	}
	if p.CategoryKey != nil {
		t.CategoryKey = *p.CategoryKey
	}
	if p.CategoryEmoji != nil {
		t.CategoryEmoji = *p.CategoryEmoji
	}
	if p.DateStart != nil {
		t.DateStart = *p.DateStart
	}
	t.DateEnd = p.DateEnd.apply(t.DateEnd)
	return t
}

// Export is the document produced by a full trip export.
type Export struct {
	ExportedAt time.Time `json:"exportedAt"`
	Trips      []Trip    `json:"trips"`
}

// Stats holds aggregate statistics about stored trips.
type Stats struct {
	TotalTrips    int64
	EarliestStart string
	LatestStart   string
	Categories    []CategoryCount
}

// CategoryCount pairs a category key with its trip count.
type CategoryCount struct {
	Key   string
	Emoji string
	Count int64
}
