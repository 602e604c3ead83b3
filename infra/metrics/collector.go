package metrics

import (
	"context"

	"github.com/muhirwa45/E-moto/core/events"
	coremetrics "github.com/muhirwa45/E-moto/core/metrics"
	"github.com/muhirwa45/E-moto/infra/logger"
	"github.com/muhirwa45/E-moto/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records lifecycle
// transitions on sinks that support them. It stops when the context is
// canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.TransitionRecorder)
	if !ok {
		return
	}
	log := logger.New("event-collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.StateEvent:
					if err := rec.RecordTransition(coremetrics.TransitionEvent{
						DeliveryID: e.DeliveryID,
						StationID:  e.StationID,
						From:       e.From,
						To:         e.To,
						Time:       e.Time,
					}); err != nil {
						log.Errorf("record transition: %v", err)
					}
				case events.RequestFailedEvent:
					log.Warnf("station %d failed to confirm %s: %v", e.StationID, e.BatteryType, e.Err)
				}
			}
		}
	}()
}
