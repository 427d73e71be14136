package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/travelpins/internal/search"
)

type placeSearcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	initLogging(cfg, c.globals)

	gateway, err := newGateway(cfg.Geocoder)
	if err != nil {
		return err
	}
	return c.executeWithSearcher(gateway, query)
}

// executeWithSearcher runs the search against a provided searcher (for testing).
func (c *SearchCommand) executeWithSearcher(searcher placeSearcher, query string) error {
	results, err := searcher.Search(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Printf("No places found for %q.\n", query)
		return nil
	}

	for i, r := range results {
		fmt.Printf("%2d. %s %-9s %s\n", i+1, r.CategoryEmoji, r.CategoryKey, r.DisplayName)
		fmt.Printf("    %.5f, %.5f  (%s #%s)\n", r.Lat, r.Lon, r.Provider, r.ProviderPlaceID)
	}
	return nil
}
