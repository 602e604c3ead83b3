package metrics

import (
	"fmt"

	"github.com/muhirwa45/E-moto/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr enables the /metrics endpoint when set, e.g. ":9100".
	PrometheusAddr string `json:"prometheus_addr"`
}

// Validate checks that every sink names a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	return nil
}
