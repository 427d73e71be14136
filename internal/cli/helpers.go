package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/runnerr0/travelpins/internal/config"
	"github.com/runnerr0/travelpins/internal/geocoder"
	"github.com/runnerr0/travelpins/internal/logging"
	"github.com/runnerr0/travelpins/internal/search"
	"github.com/runnerr0/travelpins/internal/storage"
)

// loadConfig reads .env, the config file (created with defaults when
// missing) and environment overrides, in that order.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	var (
		cfg *config.Config
		err error
	)
	if globals != nil && globals.Config != "" {
		cfg, err = config.LoadOrCreateAt(globals.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// initLogging configures the global logger from cfg. --verbose forces
// debug level.
func initLogging(cfg *config.Config, globals *GlobalFlags) {
	level := cfg.Logging.Level
	if globals != nil && globals.Verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: cfg.Logging.Format})
}

// openStore opens the configured database with migrations applied.
func openStore(ctx context.Context, cfg *config.Config) (*storage.SQLiteStore, *sql.DB, string, error) {
	dbPath, err := cfg.Storage.DBPath()
	if err != nil {
		return nil, nil, "", err
	}
	store, db, err := storage.Open(ctx, dbPath, cfg.Storage.SQLiteJournalMode)
	if err != nil {
		return nil, nil, "", err
	}
	return store, db, dbPath, nil
}

// withStore loads config, opens the store and runs fn against it.
func withStore(globals *GlobalFlags, fn func(store *storage.SQLiteStore, db *sql.DB, dbPath string) error) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}
	initLogging(cfg, globals)

	store, db, dbPath, err := openStore(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	defer store.Close()

	return fn(store, db, dbPath)
}

// newGateway builds the search gateway over the configured geocoder.
func newGateway(cfg config.GeocoderConfig) (*search.Gateway, error) {
	client, err := geocoder.NewClient(geocoder.Options{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		Limit:          cfg.ResultLimit,
		Timeout:        cfg.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("geocoder client: %w", err)
	}
	return search.NewGateway(client, search.NewTTLCache(cfg.CacheTTL()), search.NewGate(cfg.MinInterval())), nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

// formatDateRange renders a trip's dates as "start" or "start → end".
func formatDateRange(t storage.Trip) string {
	if t.DateEnd == nil || *t.DateEnd == t.DateStart {
		return t.DateStart
	}
	return t.DateStart + " → " + *t.DateEnd
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if dbPath != storage.MemoryPath {
		if info, err := os.Stat(dbPath); err == nil {
			return info.Size()
		}
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// shortenPath replaces the home directory prefix with ~.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		return filepath.Join("~", rel)
	}
	return path
}
