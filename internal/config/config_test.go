package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"songrank/internal/chart"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "GCP_PROJECT_ID", "SONGRANK_GCP_PROJECT_ID", "SONGRANK_CACHE_DIR")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://kma.kkbox.com", cfg.BaseURL)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 30*time.Second, cfg.PageTimeout)
	assert.Equal(t, 15*time.Second, cfg.RenderTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 6*time.Hour, cfg.CacheTTL)
	assert.Equal(t, "chart_rows", cfg.FirestoreCollection)
	assert.Empty(t, cfg.CacheDir)
	assert.Empty(t, cfg.ProjectID)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SONGRANK_RENDER_TIMEOUT", "5s")
	t.Setenv("SONGRANK_HEADLESS", "false")
	t.Setenv("SONGRANK_LOG_FORMAT", "json")
	t.Setenv("SONGRANK_CACHE_DIR", "/tmp/songrank")
	t.Setenv("SONGRANK_GCS_BUCKET", "charts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.RenderTimeout)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/songrank", cfg.CacheDir)
	assert.Equal(t, "charts", cfg.GCSBucket)
}

func TestLoadIgnoresUnprefixedVariables(t *testing.T) {
	unsetEnv(t, "SONGRANK_LOG_LEVEL", "SONGRANK_HEADLESS", "SONGRANK_BASE_URL", "SONGRANK_CACHE_DIR", "SONGRANK_LOG_FILE")
	t.Setenv("LOG_LEVEL", "trace")
	t.Setenv("HEADLESS", "false")
	t.Setenv("BASE_URL", "not a url")
	t.Setenv("CACHE_DIR", "/somewhere/else")
	t.Setenv("LOG_FILE", "/var/log/other.log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "https://kma.kkbox.com", cfg.BaseURL)
	assert.Empty(t, cfg.CacheDir)
	assert.Empty(t, cfg.LogFile)
}

func TestLoadMultiWordNames(t *testing.T) {
	t.Setenv("SONGRANK_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("SONGRANK_LOG_MAX_SIZE_MB", "5")
	t.Setenv("SONGRANK_CACHE_TTL", "1h")
	t.Setenv("SONGRANK_FIRESTORE_COLLECTION", "charts")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	assert.Equal(t, 5, cfg.LogMaxSizeMB)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "charts", cfg.FirestoreCollection)
}

func TestLoadUnprefixedFallback(t *testing.T) {
	unsetEnv(t, "SONGRANK_CHROME_PATH", "SONGRANK_GCP_PROJECT_ID")
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")
	t.Setenv("GCP_PROJECT_ID", "my-project")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/chromium", cfg.ChromePath)
	assert.Equal(t, "my-project", cfg.ProjectID)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("SONGRANK_PAGE_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			BaseURL:       "https://kma.kkbox.com",
			PageTimeout:   30 * time.Second,
			RenderTimeout: 15 * time.Second,
			PollInterval:  250 * time.Millisecond,
			LogConfig:     LogConfig{LogLevel: "info", LogFormat: "text"},
			CacheConfig:   CacheConfig{CacheTTL: time.Hour},
			FirestoreConfig: FirestoreConfig{
				FirestoreCollection: "chart_rows",
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, "BASE_URL"},
		{"relative base url", func(c *Config) { c.BaseURL = "/charts" }, "BASE_URL"},
		{"zero page timeout", func(c *Config) { c.PageTimeout = 0 }, "PAGE_TIMEOUT"},
		{"zero render timeout", func(c *Config) { c.RenderTimeout = 0 }, "RENDER_TIMEOUT"},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, "POLL_INTERVAL"},
		{"poll exceeds render", func(c *Config) { c.PollInterval = time.Minute }, "POLL_INTERVAL"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"cache without ttl", func(c *Config) { c.CacheDir = "/tmp/c"; c.CacheTTL = 0 }, "CACHE_TTL"},
		{"ttl ignored without cache", func(c *Config) { c.CacheTTL = 0 }, ""},
		{"firestore without collection", func(c *Config) {
			c.ProjectID = "p"
			c.FirestoreCollection = ""
		}, "FIRESTORE_COLLECTION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestLoadSelectorsDefaults(t *testing.T) {
	s, err := LoadSelectors("")
	require.NoError(t, err)
	assert.Equal(t, chart.DefaultSelectors(), s)
}

func TestLoadSelectorsMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("row: li.chart-row\ntitle: .song-name\n"), 0644))

	s, err := LoadSelectors(path)
	require.NoError(t, err)

	want := chart.DefaultSelectors()
	want.Row = "li.chart-row"
	want.Title = ".song-name"
	assert.Equal(t, want, s)
}

func TestLoadSelectorsRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("artist: \"\"\n"), 0644))

	_, err := LoadSelectors(path)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "selectors.artist", cerr.Field)
}

func TestLoadSelectorsMissingFile(t *testing.T) {
	_, err := LoadSelectors(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadSelectorsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte("row: [unterminated\n"), 0644))

	_, err := LoadSelectors(path)
	assert.Error(t, err)
}
