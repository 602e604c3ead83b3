package delivery

import (
	"fmt"
	"strings"
	"time"

	"github.com/muhirwa45/E-moto/core/eta"
)

// Confirmation modes.
const (
	ConfirmInstant = "instant"
	ConfirmDelay   = "delay"
	ConfirmMQTT    = "mqtt"
)

// Config holds the delivery lifecycle settings.
type Config struct {
	ETA            eta.Model `json:"eta"`
	TickIntervalMS int       `json:"tick_interval_ms"`
	// ConfirmMode is "instant", "delay" or "mqtt".
	ConfirmMode       string `json:"confirm_mode"`
	ConfirmDelayMS    int    `json:"confirm_delay_ms"`
	AckTimeoutSeconds int    `json:"ack_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	c.ETA.SetDefaults()
	if c.TickIntervalMS <= 0 {
		c.TickIntervalMS = 1000
	}
	if c.ConfirmMode == "" {
		c.ConfirmMode = ConfirmDelay
	}
	c.ConfirmMode = strings.ToLower(c.ConfirmMode)
	if c.ConfirmDelayMS <= 0 {
		c.ConfirmDelayMS = int(DefaultConfirmDelay / time.Millisecond)
	}
	if c.AckTimeoutSeconds <= 0 {
		c.AckTimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if err := c.ETA.Validate(); err != nil {
		return err
	}
	switch c.ConfirmMode {
	case ConfirmInstant, ConfirmDelay, ConfirmMQTT:
	default:
		return fmt.Errorf("delivery: unknown confirm_mode %s", c.ConfirmMode)
	}
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("delivery: tick_interval_ms must be positive")
	}
	return nil
}

// TickInterval returns the tracking tick period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// ConfirmDelay returns the simulated acknowledgment delay.
func (c Config) ConfirmDelay() time.Duration {
	return time.Duration(c.ConfirmDelayMS) * time.Millisecond
}

// AckTimeout bounds the wait for a station acknowledgment in MQTT mode.
func (c Config) AckTimeout() time.Duration {
	return time.Duration(c.AckTimeoutSeconds) * time.Second
}
