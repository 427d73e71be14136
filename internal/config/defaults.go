package config

// DefaultUserAgent identifies this client to the geocoder. Nominatim's
// usage policy requires a real contact; override it in production.
const DefaultUserAgent = "TravelPinsMap/1.0 (private couple app; contact: you@example.com)"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                   "127.0.0.1",
			Port:                   3000,
			CORSAllowedOrigins:     []string{"*"},
			RateLimitRequests:      300,
			RateLimitWindowSeconds: 60,
			ShutdownTimeoutSeconds: 10,
		},
		Geocoder: GeocoderConfig{
			BaseURL:         "https://nominatim.openstreetmap.org",
			UserAgent:       DefaultUserAgent,
			AcceptLanguage:  "en",
			ResultLimit:     8,
			MinIntervalMS:   1000,
			CacheTTLSeconds: 900,
			TimeoutSeconds:  10,
		},
		Storage: StorageConfig{
			Path:              "~/.config/travelpins",
			SQLiteFile:        "travelpins.db",
			SQLiteJournalMode: "wal",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
