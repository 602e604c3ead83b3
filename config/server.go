package config

import "fmt"

// ServerConfig configures the local HTTP adapter. An empty address disables it.
type ServerConfig struct {
	Address string `json:"address"`
	// RateLimit is the sustained number of requests per second per client IP.
	RateLimit float64 `json:"rate_limit"`
	Burst     int     `json:"burst"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.RateLimit <= 0 {
		c.RateLimit = 5
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Burst < 1 {
		return fmt.Errorf("server: burst must be at least 1")
	}
	return nil
}

// StationsConfig points at an optional station fixture. Without a file the
// built-in Kigali stations are used.
type StationsConfig struct {
	File string `json:"file"`
}
