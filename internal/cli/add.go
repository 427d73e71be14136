package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/travelpins/internal/category"
	"github.com/runnerr0/travelpins/internal/metrics"
	"github.com/runnerr0/travelpins/internal/storage"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	if c.Place == "" {
		return fmt.Errorf("--place is required for add command")
	}
	if c.Start == "" {
		return fmt.Errorf("--start is required for add command")
	}
	return withStore(c.globals, func(store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(store)
	})
}

// newTrip builds the store input from the flags. A known category key
// without --emoji gets that category's emoji.
func (c *AddCommand) newTrip() (storage.NewTrip, error) {
	in := storage.NewTrip{
		PlaceName:     c.Place,
		Provider:      storage.ProviderNominatim,
		Lat:           c.Lat,
		Lon:           c.Lon,
		CategoryKey:   c.Category,
		CategoryEmoji: c.Emoji,
		DateStart:     c.Start,
	}
	if c.End != "" {
		end := c.End
		in.DateEnd = &end
	}
	if c.PlaceID != "" {
		id := c.PlaceID
		in.ProviderPlaceID = &id
	}

	if c.Category != "" && c.Emoji == "" {
		cat, ok := category.Lookup(c.Category)
		if !ok {
			return storage.NewTrip{}, fmt.Errorf("unknown category %q: pass --emoji to use a custom key", c.Category)
		}
		in.CategoryEmoji = cat.Emoji
	}
	return in, nil
}

// executeWithStore runs the add logic against a provided store (used by tests).
func (c *AddCommand) executeWithStore(store storage.Store) error {
	in, err := c.newTrip()
	if err != nil {
		return err
	}

	trip, err := store.CreateTrip(context.Background(), in)
	metrics.RecordTripMutation("create", err)
	if err != nil {
		return fmt.Errorf("add trip: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(trip)
	}
	fmt.Printf("Added trip %d: %s %s (%s)\n", trip.ID, trip.CategoryEmoji, trip.PlaceName, formatDateRange(*trip))
	return nil
}
