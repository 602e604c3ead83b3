package delivery

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	deliveryRequests      *prometheus.CounterVec
	deliveryCancellations prometheus.Counter
	stateTransitions      *prometheus.CounterVec
	trackingTicks         prometheus.Counter
	etaMinutes            prometheus.Gauge
	confirmLatency        *prometheus.HistogramVec
)

type collectors struct {
	requests    *prometheus.CounterVec
	cancels     prometheus.Counter
	transitions *prometheus.CounterVec
	ticks       prometheus.Counter
	eta         prometheus.Gauge
	latency     *prometheus.HistogramVec
}

// newCollectors creates new metric collectors.
func newCollectors() collectors {
	return collectors{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delivery_requests_total",
				Help: "Number of accepted battery delivery requests",
			},
			[]string{"battery_type"},
		),
		cancels: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "delivery_cancellations_total",
				Help: "Number of deliveries cancelled by the user",
			},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delivery_state_transitions_total",
				Help: "Lifecycle transitions of the delivery state machine",
			},
			[]string{"from", "to"},
		),
		ticks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "delivery_tracking_ticks_total",
				Help: "Number of tracking updates applied to active deliveries",
			},
		),
		eta: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "delivery_eta_minutes",
				Help: "Remaining minutes of the active delivery",
			},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "delivery_confirm_latency_seconds",
				Help:    "Time between request and station confirmation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"confirmed"},
		),
	}
}

func (c collectors) install() {
	deliveryRequests = c.requests
	deliveryCancellations = c.cancels
	stateTransitions = c.transitions
	trackingTicks = c.ticks
	etaMinutes = c.eta
	confirmLatency = c.latency
}

func init() {
	newCollectors().install()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers delivery metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(deliveryRequests, deliveryCancellations, stateTransitions, trackingTicks, etaMinutes, confirmLatency)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors().install()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
