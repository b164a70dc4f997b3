// Package config loads songrank's runtime configuration from the environment
// and the optional selector file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. SONGRANK_RENDER_TIMEOUT.
// Only CHROME_PATH and GCP_PROJECT_ID also fall back to their bare names;
// everything else ignores unprefixed variables.
const EnvPrefix = "SONGRANK"

// Config is the startup configuration. Nothing else in the program reads
// the environment.
type Config struct {
	BaseURL       string        `split_words:"true" default:"https://kma.kkbox.com"`
	ChromePath    string        `envconfig:"CHROME_PATH"`
	Headless      bool          `split_words:"true" default:"true"`
	UserAgent     string        `split_words:"true" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"`
	PageTimeout   time.Duration `split_words:"true" default:"30s"`
	RenderTimeout time.Duration `split_words:"true" default:"15s"`
	PollInterval  time.Duration `split_words:"true" default:"250ms"`
	SelectorsFile string        `split_words:"true"`

	LogConfig
	CacheConfig
	ArchiveConfig
	FirestoreConfig
}

// LogConfig controls the slog handler.
type LogConfig struct {
	LogLevel      string `split_words:"true" default:"info"`
	LogFormat     string `split_words:"true" default:"text"`
	LogFile       string `split_words:"true"`
	LogMaxSizeMB  int    `split_words:"true" default:"10"`
	LogMaxBackups int    `split_words:"true" default:"3"`
	LogMaxAgeDays int    `split_words:"true" default:"28"`
}

// CacheConfig enables the per-date row cache when CacheDir is set.
type CacheConfig struct {
	CacheDir string        `split_words:"true"`
	CacheTTL time.Duration `split_words:"true" default:"6h"`
}

// ArchiveConfig selects where written CSV files are archived. GCSBucket
// wins over ArchiveDir; both empty disables archiving.
type ArchiveConfig struct {
	GCSBucket  string `split_words:"true"`
	ArchiveDir string `split_words:"true"`
}

// FirestoreConfig enables row persistence when ProjectID is set.
type FirestoreConfig struct {
	ProjectID           string `envconfig:"GCP_PROJECT_ID"`
	FirestoreCollection string `split_words:"true" default:"chart_rows"`
}

// Error reports an invalid configuration value.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Msg)
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot enforce through tags.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return &Error{Field: "BASE_URL", Msg: "is required"}
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return &Error{Field: "BASE_URL", Msg: fmt.Sprintf("must be an absolute URL, got %q", c.BaseURL)}
	}
	if c.PageTimeout <= 0 {
		return &Error{Field: "PAGE_TIMEOUT", Msg: "must be > 0"}
	}
	if c.RenderTimeout <= 0 {
		return &Error{Field: "RENDER_TIMEOUT", Msg: "must be > 0"}
	}
	if c.PollInterval <= 0 {
		return &Error{Field: "POLL_INTERVAL", Msg: "must be > 0"}
	}
	if c.PollInterval > c.RenderTimeout {
		return &Error{Field: "POLL_INTERVAL", Msg: "must not exceed RENDER_TIMEOUT"}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return &Error{Field: "LOG_FORMAT", Msg: fmt.Sprintf("must be text or json, got %q", c.LogFormat)}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &Error{Field: "LOG_LEVEL", Msg: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	if c.CacheDir != "" && c.CacheTTL <= 0 {
		return &Error{Field: "CACHE_TTL", Msg: "must be > 0 when CACHE_DIR is set"}
	}
	if c.ProjectID != "" && c.FirestoreCollection == "" {
		return &Error{Field: "FIRESTORE_COLLECTION", Msg: "is required when GCP_PROJECT_ID is set"}
	}
	return nil
}
