package mqtt

import (
	"context"
	"encoding/json"

	"github.com/muhirwa45/E-moto/core/events"
	"github.com/muhirwa45/E-moto/core/logger"
	"github.com/muhirwa45/E-moto/internal/eventbus"
)

// Publisher sends raw payloads to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

type trackingMessage struct {
	DeliveryID string  `json:"delivery_id"`
	StationID  int     `json:"station_id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Progress   float64 `json:"progress"`
	ETAMinutes float64 `json:"eta_minutes"`
	DistanceKm float64 `json:"distance_km"`
	Timestamp  int64   `json:"timestamp"`
}

type stateMessage struct {
	DeliveryID string `json:"delivery_id"`
	StationID  int    `json:"station_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Timestamp  int64  `json:"timestamp"`
}

// StartTrackingPublisher forwards tracking ticks and lifecycle transitions
// from the bus to delivery/<id>/tracking and delivery/<id>/state until ctx is
// done or the bus closes.
func StartTrackingPublisher(ctx context.Context, bus eventbus.EventBus, pub Publisher, log logger.Logger) {
	log = logger.OrNop(log)
	ch := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				topic, msg := encode(ev)
				if topic == "" {
					continue
				}
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Errorf("encode %s: %v", topic, err)
					continue
				}
				if err := pub.Publish(topic, payload); err != nil {
					log.Errorf("publish %s: %v", topic, err)
				}
			}
		}
	}()
}

func encode(ev eventbus.Event) (string, any) {
	switch e := ev.(type) {
	case events.TrackingEvent:
		d := e.Delivery
		return TrackingTopic(d.ID), trackingMessage{
			DeliveryID: d.ID,
			StationID:  d.Station.ID,
			Lat:        d.VehicleLocation.Lat,
			Lng:        d.VehicleLocation.Lng,
			Progress:   d.Progress,
			ETAMinutes: d.ETA,
			DistanceKm: e.DistanceKm,
			Timestamp:  e.Time.UnixMilli(),
		}
	case events.StateEvent:
		if e.DeliveryID == "" {
			return "", nil
		}
		return StateTopic(e.DeliveryID), stateMessage{
			DeliveryID: e.DeliveryID,
			StationID:  e.StationID,
			From:       e.From.String(),
			To:         e.To.String(),
			Timestamp:  e.Time.UnixMilli(),
		}
	}
	return "", nil
}
