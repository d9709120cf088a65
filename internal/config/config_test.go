package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "page=%d", cfg.Scraper.PaginationPattern)
	assert.Equal(t, 30, cfg.Scraper.MinListings)
	assert.Equal(t, 10, cfg.Scraper.MaxPages)
	assert.Equal(t, 10*time.Second, cfg.Scraper.RequestDelay)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "bus_scraper", cfg.Database.DBName)
	assert.Equal(t, "stream:vehicle_listings", cfg.Redis.Stream)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_BASE_URL", "https://rossbus.com/used-buses")
	t.Setenv("SCRAPER_MIN_LISTINGS", "5")
	t.Setenv("SCRAPER_REQUEST_DELAY", "2s")
	t.Setenv("SCRAPER_USE_BROWSER", "true")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://rossbus.com/used-buses", cfg.Scraper.BaseURL)
	assert.Equal(t, 5, cfg.Scraper.MinListings)
	assert.Equal(t, 2*time.Second, cfg.Scraper.RequestDelay)
	assert.True(t, cfg.Scraper.UseBrowser)
	assert.False(t, cfg.Browser.Headless)
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
scraper:
  base_url: https://microbird.com/school-vehicles
  min_listings: 12
  follow_depth: 2
output:
  dir: /tmp/bus-output
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyFile(path))

	assert.Equal(t, "https://microbird.com/school-vehicles", cfg.Scraper.BaseURL)
	assert.Equal(t, 12, cfg.Scraper.MinListings)
	assert.Equal(t, 2, cfg.Scraper.FollowDepth)
	assert.Equal(t, "/tmp/bus-output", cfg.Output.Dir)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.Scraper.MaxPages)
}

func TestApplyFileMissing(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.ApplyFile("/nonexistent/config.yaml"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"zero retries", func(c *Config) { c.Scraper.MaxRetries = 0 }, true},
		{"zero max pages", func(c *Config) { c.Scraper.MaxPages = 0 }, true},
		{"pattern without placeholder", func(c *Config) { c.Scraper.PaginationPattern = "page=" }, true},
		{"negative delay", func(c *Config) { c.Scraper.RequestDelay = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
