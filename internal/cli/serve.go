package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/runnerr0/travelpins/internal/api"
	"github.com/runnerr0/travelpins/internal/config"
	"github.com/runnerr0/travelpins/internal/logging"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	c.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	initLogging(cfg, c.globals)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, db, dbPath, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	defer store.Close()

	gateway, err := newGateway(cfg.Geocoder)
	if err != nil {
		return err
	}

	handler := api.NewRouter(api.NewHandler(store, gateway), api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow(),
	})

	logging.Info().
		Str("version", c.version).
		Str("database", dbPath).
		Str("geocoder", cfg.Geocoder.BaseURL).
		Dur("min_interval", cfg.Geocoder.MinInterval()).
		Dur("cache_ttl", cfg.Geocoder.CacheTTL()).
		Msg("starting travelpins")

	return api.Serve(ctx, cfg.Server.Addr(), handler, cfg.Server.ShutdownTimeout())
}

// applyOverrides lets flags win over the config file and environment.
func (c *ServeCommand) applyOverrides(cfg *config.Config) {
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Logging.Level = c.LogLevel
	}
}
