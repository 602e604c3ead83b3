package events

import (
	"time"

	"github.com/muhirwa45/E-moto/core/model"
)

// Event is any value published on the delivery bus.
type Event interface{}

// StateEvent is published on every lifecycle transition.
type StateEvent struct {
	From       model.DeliveryState
	To         model.DeliveryState
	StationID  int
	DeliveryID string
	Time       time.Time
}

// TrackingEvent carries a snapshot of the delivery after a tracking tick.
type TrackingEvent struct {
	Delivery   model.Delivery
	DistanceKm float64
	Time       time.Time
}

// RequestFailedEvent is published when the dispatch confirmation fails.
type RequestFailedEvent struct {
	StationID   int
	BatteryType model.BatteryType
	Err         error
	Latency     time.Duration
	Time        time.Time
}

// RatingEvent is published after a rating was folded into a station average.
type RatingEvent struct {
	StationID   int
	Rating      int
	Average     float64
	RatingCount int
	Time        time.Time
}
