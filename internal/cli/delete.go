package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/travelpins/internal/metrics"
	"github.com/runnerr0/travelpins/internal/storage"
)

// Execute implements the go-flags Commander interface for DeleteCommand.
func (c *DeleteCommand) Execute(args []string) error {
	if c.ID == 0 {
		return fmt.Errorf("--id is required for delete command")
	}
	return withStore(c.globals, func(store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(store)
	})
}

// executeWithStore runs delete against a provided store (for testing).
func (c *DeleteCommand) executeWithStore(store storage.Store) error {
	err := store.DeleteTrip(context.Background(), c.ID)
	metrics.RecordTripMutation("delete", err)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]bool{"ok": true})
	}
	fmt.Printf("Deleted trip %d\n", c.ID)
	return nil
}
