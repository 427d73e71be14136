package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment. Missing files are not an error, and
// variables that are already set win over the file.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from environment variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("HOST"); ok && v != "" {
		c.Server.Host = v
	}
	if v, ok := lookup("GEOCODER_USER_AGENT"); ok && v != "" {
		c.Geocoder.UserAgent = v
	}
	if v, ok := lookup("GEOCODER_BASE_URL"); ok && v != "" {
		c.Geocoder.BaseURL = v
	}
	if v, ok := lookup("TRAVELPINS_DB"); ok && v != "" {
		c.Storage.SQLiteFile = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		c.Logging.Format = v
	}
	return nil
}
