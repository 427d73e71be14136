package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/travelpins/internal/storage"
)

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	return withStore(c.globals, func(store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(store)
	})
}

// executeWithStore runs list against a provided store (for testing).
func (c *ListCommand) executeWithStore(store storage.Store) error {
	trips, err := store.ListTrips(context.Background())
	if err != nil {
		return fmt.Errorf("list trips: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(trips)
	}

	if len(trips) == 0 {
		fmt.Println("No trips yet.")
		return nil
	}

	for _, t := range trips {
		fmt.Printf("%5d  %s  %-24s %s\n", t.ID, t.CategoryEmoji, formatDateRange(t), t.PlaceName)
	}
	fmt.Printf("\n%s trips\n", formatNumber(int64(len(trips))))
	return nil
}

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.ID == 0 {
		return fmt.Errorf("--id is required for show command")
	}
	return withStore(c.globals, func(store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(store)
	})
}

// executeWithStore runs show against a provided store (for testing).
func (c *ShowCommand) executeWithStore(store storage.Store) error {
	trip, err := store.GetTrip(context.Background(), c.ID)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(trip)
	}

	fmt.Printf("Trip %d\n", trip.ID)
	fmt.Printf("Place:     %s\n", trip.PlaceName)
	fmt.Printf("Category:  %s %s\n", trip.CategoryEmoji, trip.CategoryKey)
	fmt.Printf("Dates:     %s\n", formatDateRange(*trip))
	fmt.Printf("Location:  %.5f, %.5f\n", trip.Lat, trip.Lon)
	if trip.ProviderPlaceID != nil {
		fmt.Printf("Provider:  %s #%s\n", trip.Provider, *trip.ProviderPlaceID)
	} else {
		fmt.Printf("Provider:  %s\n", trip.Provider)
	}
	fmt.Printf("Created:   %s\n", trip.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Updated:   %s\n", trip.UpdatedAt.Local().Format("2006-01-02 15:04"))
	return nil
}
