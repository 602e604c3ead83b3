package delivery

import (
	"context"
	"time"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
)

// DefaultConfirmDelay is the simulated dispatch acknowledgment time.
const DefaultConfirmDelay = 1500 * time.Millisecond

// Order is the dispatch request sent to a station.
type Order struct {
	DeliveryID   string            `json:"delivery_id"`
	StationID    int               `json:"station_id"`
	BatteryType  model.BatteryType `json:"battery_type"`
	UserLocation geo.Coordinates   `json:"user_location"`
	Time         time.Time         `json:"time"`
}

// Confirmer obtains the station's acceptance of an order. It must return
// promptly with ctx.Err() once ctx is cancelled.
type Confirmer interface {
	Confirm(ctx context.Context, o Order) error
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, o Order) error

func (f ConfirmFunc) Confirm(ctx context.Context, o Order) error { return f(ctx, o) }

// DelayConfirmer accepts every order after a fixed delay.
type DelayConfirmer struct {
	Delay time.Duration
}

func (c DelayConfirmer) Confirm(ctx context.Context, _ Order) error {
	timer := time.NewTimer(c.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
