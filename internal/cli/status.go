package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/travelpins/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string              `json:"version"`
	DatabasePath      string              `json:"database_path"`
	DatabaseSizeBytes int64               `json:"database_size_bytes"`
	TotalTrips        int64               `json:"total_trips"`
	EarliestStart     string              `json:"earliest_start,omitempty"`
	LatestStart       string              `json:"latest_start,omitempty"`
	Categories        []categoryCountJSON `json:"categories"`
}

type categoryCountJSON struct {
	Key   string `json:"key"`
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withStore(c.globals, func(store *storage.SQLiteStore, db *sql.DB, dbPath string) error {
		return c.executeWithStore(store, db, dbPath)
	})
}

// executeWithStore runs status against a provided store and db (for testing).
func (c *StatusCommand) executeWithStore(store storage.Store, db *sql.DB, dbPath string) error {
	stats, err := store.GetStats(context.Background())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dbSize := getDatabaseSize(db, dbPath)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(stats, dbPath, dbSize)
	}
	c.printStatusHuman(stats, dbPath, dbSize)
	return nil
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, dbPath string, dbSize int64) {
	fmt.Println("Travelpins Status")
	fmt.Println("=================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", shortenPath(dbPath), formatBytes(dbSize))
	fmt.Printf("Trips:         %s\n", formatNumber(stats.TotalTrips))

	if stats.TotalTrips > 0 {
		fmt.Printf("Earliest:      %s\n", stats.EarliestStart)
		fmt.Printf("Latest:        %s\n", stats.LatestStart)
	}

	if len(stats.Categories) > 0 {
		fmt.Println()
		fmt.Println("Categories:")
		for _, cc := range stats.Categories {
			fmt.Printf("  %s %-12s %s\n", cc.Emoji, cc.Key, formatNumber(cc.Count))
		}
	}
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, dbPath string, dbSize int64) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      dbPath,
		DatabaseSizeBytes: dbSize,
		TotalTrips:        stats.TotalTrips,
		EarliestStart:     stats.EarliestStart,
		LatestStart:       stats.LatestStart,
		Categories:        make([]categoryCountJSON, len(stats.Categories)),
	}
	for i, cc := range stats.Categories {
		out.Categories[i] = categoryCountJSON{Key: cc.Key, Emoji: cc.Emoji, Count: cc.Count}
	}
	return printJSON(out)
}
