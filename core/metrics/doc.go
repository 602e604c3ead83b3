// Package metrics defines the sinks recording delivery observability data.
// Every sink records lifecycle events through MetricsSink; tracking samples,
// ratings and confirmation latency are optional recorder interfaces checked
// with a type assertion. Implementations such as PromSink and InfluxSink live
// in infra/metrics and register themselves with RegisterMetricsSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
