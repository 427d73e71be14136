package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/travelpins/config.yaml"

// Config holds all travelpins configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host                   string   `yaml:"host"`
	Port                   int      `yaml:"port"`
	CORSAllowedOrigins     []string `yaml:"cors_allowed_origins"`
	RateLimitRequests      int      `yaml:"rate_limit_requests"`
	RateLimitWindowSeconds int      `yaml:"rate_limit_window_seconds"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds"`
}

type GeocoderConfig struct {
	BaseURL         string `yaml:"base_url"`
	UserAgent       string `yaml:"user_agent"`
	AcceptLanguage  string `yaml:"accept_language"`
	ResultLimit     int    `yaml:"result_limit"`
	MinIntervalMS   int    `yaml:"min_interval_ms"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

type StorageConfig struct {
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RateLimitWindow returns the inbound rate limit window.
func (s ServerConfig) RateLimitWindow() time.Duration {
	return time.Duration(s.RateLimitWindowSeconds) * time.Second
}

// ShutdownTimeout returns how long in-flight requests get on shutdown.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// MinInterval returns the minimum spacing between upstream geocoder calls.
func (g GeocoderConfig) MinInterval() time.Duration {
	return time.Duration(g.MinIntervalMS) * time.Millisecond
}

// CacheTTL returns the lifetime of a cached search result.
func (g GeocoderConfig) CacheTTL() time.Duration {
	return time.Duration(g.CacheTTLSeconds) * time.Second
}

// Timeout returns the HTTP timeout for one upstream call.
func (g GeocoderConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// DBPath returns the resolved SQLite database path. The special value
// ":memory:" is returned unchanged.
func (s StorageConfig) DBPath() (string, error) {
	if s.SQLiteFile == ":memory:" || filepath.IsAbs(s.SQLiteFile) {
		return s.SQLiteFile, nil
	}
	dir, err := expandPath(s.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, s.SQLiteFile), nil
}

// Validate reports configuration values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Geocoder.BaseURL == "" {
		return fmt.Errorf("geocoder.base_url is required")
	}
	if c.Geocoder.UserAgent == "" {
		return fmt.Errorf("geocoder.user_agent is required")
	}
	if c.Geocoder.ResultLimit <= 0 {
		return fmt.Errorf("geocoder.result_limit must be positive")
	}
	if c.Geocoder.MinIntervalMS < 0 {
		return fmt.Errorf("geocoder.min_interval_ms must not be negative")
	}
	if c.Geocoder.CacheTTLSeconds <= 0 {
		return fmt.Errorf("geocoder.cache_ttl_seconds must be positive")
	}
	if c.Storage.SQLiteFile == "" {
		return fmt.Errorf("storage.sqlite_file is required")
	}
	return nil
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
