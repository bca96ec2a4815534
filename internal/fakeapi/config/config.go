// Package config handles configuration of the fake chat API, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings of the fake API.
//
// Fields:
//   - Address: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - TokenTTL: lifetime of an issued access token; also drives the expiry header.
//   - LogLevel: zap level name.
type Config struct {
	Address   string
	SecretKey string
	TokenTTL  time.Duration
	LogLevel  string
}

// LoadDefaults populates Config with local development defaults.
func (c *Config) LoadDefaults() {
	c.Address = "localhost:3000"
	c.SecretKey = "secretKey"
	c.TokenTTL = 24 * time.Hour
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
