package main

import (
	"fmt"
	"time"
)

// Config holds parameters for the simulator.
type Config struct {
	Broker     string
	ClientID   string
	AckLatency time.Duration
	// DropRate is the share of orders never answered, RejectRate the share
	// declined.
	DropRate   float64
	RejectRate float64
	// Device, when set, streams a walking rider on device/<id>/... topics.
	Device   string
	Interval time.Duration
	Verbose  bool
}

// Validate checks the flag values.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("drop-rate must be in [0,1]")
	}
	if c.RejectRate < 0 || c.RejectRate > 1 {
		return fmt.Errorf("reject-rate must be in [0,1]")
	}
	if c.Device != "" && c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	return nil
}
