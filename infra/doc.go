// Package infra holds the adapters behind the delivery core: the MQTT
// broker link and sensor feed, the Prometheus and InfluxDB sinks, the
// zerolog logger and the sensor caches. Core packages never import it.
package infra
