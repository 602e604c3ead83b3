package config

import (
	"fmt"
	"time"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/station"
)

// Location modes.
const (
	LocationStatic = "static"
	LocationMQTT   = "mqtt"
)

// LocationConfig selects where the rider position and heading come from.
type LocationConfig struct {
	// Mode is "static" or "mqtt".
	Mode string `json:"mode"`
	// Static is the fixed position in static mode. Defaults to central Kigali.
	Static *geo.Coordinates `json:"static"`
	// Heading is the fixed compass heading in static mode. Unset means the
	// compass is not calibrated.
	Heading *float64 `json:"heading"`
	// DeviceID names the device/<id>/... topics in mqtt mode.
	DeviceID      string `json:"device_id"`
	MaxAgeSeconds int    `json:"max_age_seconds"`
}

// SetDefaults applies sane defaults.
func (c *LocationConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = LocationStatic
	}
	if c.Mode == LocationStatic && c.Static == nil {
		center := station.KigaliCenter
		c.Static = &center
	}
	if c.MaxAgeSeconds <= 0 {
		c.MaxAgeSeconds = 30
	}
}

// Validate checks mandatory fields.
func (c LocationConfig) Validate() error {
	switch c.Mode {
	case LocationStatic:
		if c.Static == nil {
			return fmt.Errorf("location: static mode requires coordinates")
		}
		return c.Static.Validate()
	case LocationMQTT:
		if c.DeviceID == "" {
			return fmt.Errorf("location: mqtt mode requires device_id")
		}
		return nil
	default:
		return fmt.Errorf("location: unknown mode %s", c.Mode)
	}
}

// MaxAge returns how long a streamed fix stays valid.
func (c LocationConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSeconds) * time.Second
}
