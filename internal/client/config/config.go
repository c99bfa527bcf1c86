// Package config holds runtime settings for the projectmanager CLI.
package config

import "time"

// Config holds runtime settings for the CLI.
//
// Fields:
//   - ServerURL: base URL of the projectmanager HTTP API.
//   - RequestTimeout: upper bound for a single HTTP round trip.
//   - HealthCheckInterval: how often the CLI checks server reachability.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	HealthCheckInterval time.Duration
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.RequestTimeout = 10 * time.Second
	c.HealthCheckInterval = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
