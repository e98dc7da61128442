package config

import "time"

// Config holds runtime settings for the DNI admin client.
//
// Fields:
//   - ServerURL: base URL of the lookup service, e.g. "http://127.0.0.1:8000".
//   - RequestTimeout: per-request HTTP timeout (single attempt, no retries).
//   - SearchDebounce: quiescence window for free-text search input.
//   - PageSize: initial page size for the persona list.
//   - BackupDir: subdirectory (under the working directory) for backup files.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	PageSize       int
	BackupDir      string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 15 * time.Second
	c.SearchDebounce = time.Second
	c.PageSize = 10
	c.BackupDir = "backups"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
