package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/runnerr0/travelpins/internal/storage"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	return withStore(c.globals, func(store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(store)
	})
}

// executeWithStore runs export against a provided store (for testing).
func (c *ExportCommand) executeWithStore(store storage.Store) error {
	export, err := store.Export(context.Background())
	if err != nil {
		return fmt.Errorf("export trips: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	data = append(data, '\n')

	if c.Out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(c.Out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	fmt.Fprintf(os.Stderr, "Exported %s trips to %s\n", formatNumber(int64(len(export.Trips))), c.Out)
	return nil
}
