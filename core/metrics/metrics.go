package metrics

import (
	"time"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
)

// Outcome labels a step of a delivery's life.
type Outcome string

const (
	OutcomeRequested Outcome = "requested"
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeDelivered Outcome = "delivered"
)

// DeliveryEvent represents a lifecycle step of a delivery to be recorded.
type DeliveryEvent struct {
	DeliveryID  string
	StationID   int
	BatteryType model.BatteryType
	Outcome     Outcome
	ETAMinutes  float64
	DistanceKm  float64
	// Elapsed is the time since the delivery started, zero before confirmation.
	Elapsed time.Duration
	Time    time.Time
}

// MetricsSink records delivery lifecycle events for observability purposes.
type MetricsSink interface {
	RecordDelivery(ev DeliveryEvent) error
}

// TrackingSample is the vehicle state after a tracking tick.
type TrackingSample struct {
	DeliveryID string
	StationID  int
	Progress   float64
	ETAMinutes float64
	DistanceKm float64
	Vehicle    geo.Coordinates
	Time       time.Time
}

// TrackingRecorder records tracking samples.
type TrackingRecorder interface {
	RecordTracking(s TrackingSample) error
}

// RatingEvent captures a rating folded into a station average.
type RatingEvent struct {
	StationID int
	Rating    int
	Average   float64
	Count     int
	Time      time.Time
}

// RatingRecorder records station ratings.
type RatingRecorder interface {
	RecordRating(ev RatingEvent) error
}

// ConfirmLatency is the time the dispatch confirmation took.
type ConfirmLatency struct {
	StationID int
	Confirmed bool
	Latency   time.Duration
	Time      time.Time
}

// LatencyRecorder is implemented by sinks able to record confirmation latency.
type LatencyRecorder interface {
	RecordConfirmLatency(l ConfirmLatency) error
}

// TransitionEvent is a lifecycle state change.
type TransitionEvent struct {
	DeliveryID string
	StationID  int
	From       model.DeliveryState
	To         model.DeliveryState
	Time       time.Time
}

// TransitionRecorder records lifecycle transitions.
type TransitionRecorder interface {
	RecordTransition(ev TransitionEvent) error
}

// NopSink implements MetricsSink and all optional recorders with no-op methods.
type NopSink struct{}

func (NopSink) RecordDelivery(DeliveryEvent) error        { return nil }
func (NopSink) RecordTracking(TrackingSample) error       { return nil }
func (NopSink) RecordRating(RatingEvent) error            { return nil }
func (NopSink) RecordConfirmLatency(ConfirmLatency) error { return nil }
func (NopSink) RecordTransition(TransitionEvent) error    { return nil }
