package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/muhirwa45/E-moto/core/factory"
	coremetrics "github.com/muhirwa45/E-moto/core/metrics"
)

// InfluxConfig is the conf block of an "influx" sink entry.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func (c *InfluxConfig) setDefaults() {
	if c.Org == "" {
		c.Org = "emoto"
	}
	if c.Bucket == "" {
		c.Bucket = "deliveries"
	}
}

// init registers the delivery sinks selectable from metrics.sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.URL == "" {
			return nil, fmt.Errorf("influx sink: url is required")
		}
		c.setDefaults()
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
