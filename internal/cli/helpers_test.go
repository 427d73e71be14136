package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/travelpins/internal/config"
	"github.com/runnerr0/travelpins/internal/storage"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := loadConfig(&GlobalFlags{Config: path})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.Port, cfg.Server.Port)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config is written")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("PORT", "4321")
	t.Setenv("GEOCODER_USER_AGENT", "TestAgent/1.0")
	t.Setenv("TRAVELPINS_DB", ":memory:")

	cfg, err := loadConfig(&GlobalFlags{Config: path})
	require.NoError(t, err)
	assert.Equal(t, 4321, cfg.Server.Port)
	assert.Equal(t, "TestAgent/1.0", cfg.Geocoder.UserAgent)

	dbPath, err := cfg.Storage.DBPath()
	require.NoError(t, err)
	assert.Equal(t, storage.MemoryPath, dbPath)
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("PORT", "not-a-port")

	_, err := loadConfig(&GlobalFlags{Config: path})
	assert.Error(t, err)
}

func TestServeOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cmd := &ServeCommand{Host: "0.0.0.0", Port: 8088, LogLevel: "debug"}
	cmd.applyOverrides(cfg)

	assert.Equal(t, "0.0.0.0:8088", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Logging.Level)

	cfg = config.DefaultConfig()
	(&ServeCommand{}).applyOverrides(cfg)
	assert.Equal(t, config.DefaultConfig().Server, cfg.Server)
}

func TestNewGateway(t *testing.T) {
	gw, err := newGateway(config.DefaultConfig().Geocoder)
	require.NoError(t, err)
	assert.NotNil(t, gw)

	bad := config.DefaultConfig().Geocoder
	bad.UserAgent = ""
	_, err = newGateway(bad)
	assert.Error(t, err)
}

func TestFormatDateRange(t *testing.T) {
	end := "2024-05-03"
	same := "2024-05-01"

	assert.Equal(t, "2024-05-01", formatDateRange(storage.Trip{DateStart: "2024-05-01"}))
	assert.Equal(t, "2024-05-01", formatDateRange(storage.Trip{DateStart: "2024-05-01", DateEnd: &same}))
	assert.Equal(t, "2024-05-01 → 2024-05-03", formatDateRange(storage.Trip{DateStart: "2024-05-01", DateEnd: &end}))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
	assert.Equal(t, "1.0 GB", formatBytes(1<<30))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "12,345", formatNumber(12345))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestShortenPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("~", ".config", "travelpins", "travelpins.db"),
		shortenPath(filepath.Join(home, ".config", "travelpins", "travelpins.db")))
	assert.Equal(t, storage.MemoryPath, shortenPath(storage.MemoryPath))
}
