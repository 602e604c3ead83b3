// Package config loads the service configuration from a YAML or JSON file
// with K_ prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/muhirwa45/E-moto/core/ar"
	"github.com/muhirwa45/E-moto/core/delivery"
	"github.com/muhirwa45/E-moto/core/eta"
	"github.com/muhirwa45/E-moto/core/metrics"
	"github.com/muhirwa45/E-moto/infra/logger"
	"github.com/muhirwa45/E-moto/infra/mqtt"
)

type Config struct {
	MQTT     mqtt.Config     `json:"mqtt"`
	Delivery delivery.Config `json:"delivery"`
	AR       ar.Projector    `json:"ar"`
	Stations StationsConfig  `json:"stations"`
	Location LocationConfig  `json:"location"`
	Metrics  metrics.Config  `json:"metrics"`
	Logging  logger.Config   `json:"logging"`
	Server   ServerConfig    `json:"server"`
}

// Load reads path, applies environment overrides such as
// K_DELIVERY__CONFIRM_MODE=instant, then defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	fillETA(k, &cfg.Delivery.ETA)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// fillETA defaults the ETA fields missing from a partial eta block. Values
// present in the file, zero included, are kept.
func fillETA(k *koanf.Koanf, m *eta.Model) {
	if !k.Exists("delivery.eta") {
		return
	}
	if !k.Exists("delivery.eta.speed_factor") {
		m.SpeedFactor = eta.DefaultSpeedFactor
	}
	if !k.Exists("delivery.eta.prep_minutes") {
		m.PrepMinutes = eta.DefaultPrepMinutes
	}
}

// Default returns a configuration that runs offline: built-in stations,
// a static location in central Kigali and simulated confirmations.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies defaults to every block.
func (c *Config) SetDefaults() {
	c.Delivery.SetDefaults()
	c.AR.SetDefaults()
	c.Location.SetDefaults()
	c.Logging.SetDefaults()
	c.Server.SetDefaults()
	if c.UsesMQTT() {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every block.
func (c Config) Validate() error {
	if err := c.Delivery.Validate(); err != nil {
		return err
	}
	if err := c.AR.Validate(); err != nil {
		return err
	}
	if err := c.Location.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.UsesMQTT() {
		if err := c.MQTT.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// UsesMQTT reports whether any component needs the broker connection.
func (c Config) UsesMQTT() bool {
	return c.MQTT.Broker != "" ||
		c.Delivery.ConfirmMode == delivery.ConfirmMQTT ||
		c.Location.Mode == LocationMQTT
}
