package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/muhirwa45/E-moto/core/metrics"
)

// PromSink records delivery outcomes and station ratings in Prometheus metrics.
type PromSink struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	latency  *prometheus.HistogramVec
	rating   *prometheus.GaugeVec
}

// NewPromSink registers delivery metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_events_total",
		Help: "Delivery lifecycle events by station and outcome",
	}, []string{"station_id", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "delivery_duration_seconds",
		Help:    "Time from confirmation to arrival of completed deliveries",
		Buckets: []float64{60, 180, 300, 600, 900, 1200, 1800, 3600},
	}, []string{"station_id"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "station_confirm_latency_seconds",
		Help:    "Time between order and station acknowledgment",
		Buckets: prometheus.DefBuckets,
	}, []string{"station_id", "confirmed"})
	rating := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "station_rating",
		Help: "Current average rating of a station",
	}, []string{"station_id"})

	if err := reg.Register(events); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			events = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(rating); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			rating = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{events: events, duration: duration, latency: latency, rating: rating}, nil
}

// RecordDelivery counts the event and observes the duration of completed
// deliveries.
func (s *PromSink) RecordDelivery(ev coremetrics.DeliveryEvent) error {
	id := strconv.Itoa(ev.StationID)
	s.events.WithLabelValues(id, string(ev.Outcome)).Inc()
	if ev.Outcome == coremetrics.OutcomeDelivered {
		s.duration.WithLabelValues(id).Observe(ev.Elapsed.Seconds())
	}
	return nil
}

// RecordConfirmLatency records the station acknowledgment latency.
func (s *PromSink) RecordConfirmLatency(l coremetrics.ConfirmLatency) error {
	s.latency.WithLabelValues(strconv.Itoa(l.StationID), strconv.FormatBool(l.Confirmed)).Observe(l.Latency.Seconds())
	return nil
}

// RecordRating sets the station rating gauge.
func (s *PromSink) RecordRating(ev coremetrics.RatingEvent) error {
	s.rating.WithLabelValues(strconv.Itoa(ev.StationID)).Set(ev.Average)
	return nil
}
