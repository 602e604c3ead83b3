package metrics

import (
	"fmt"

	"github.com/muhirwa45/E-moto/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Types() }

// NewMetricsSink builds the configured delivery sinks. No entries yields a
// NopSink, several yield a MultiSink. A type may appear only once since
// sinks such as prometheus own global collectors.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	switch len(cfgs) {
	case 0:
		return NopSink{}, nil
	case 1:
		return createSink(cfgs[0])
	}
	seen := make(map[string]bool, len(cfgs))
	sinks := make([]MetricsSink, 0, len(cfgs))
	for _, c := range cfgs {
		if seen[c.Type] {
			closeSinks(sinks)
			return nil, fmt.Errorf("metrics sink %q configured twice", c.Type)
		}
		seen[c.Type] = true
		s, err := createSink(c)
		if err != nil {
			closeSinks(sinks)
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}

func createSink(c factory.ModuleConfig) (MetricsSink, error) {
	s, err := sinkRegistry.Create(c)
	if err != nil {
		return nil, fmt.Errorf("metrics sink %q: %w", c.Type, err)
	}
	return s, nil
}

func closeSinks(sinks []MetricsSink) {
	for _, s := range sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
