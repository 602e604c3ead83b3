package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/muhirwa45/E-moto/core/delivery"
)

// Confirmer confirms deliveries through a station round trip over Client.
type Confirmer struct {
	Client  Client
	Timeout time.Duration
}

// Confirm sends the order and blocks until the station acknowledges it, the
// timeout elapses or ctx is cancelled.
func (c Confirmer) Confirm(ctx context.Context, o delivery.Order) error {
	if c.Client == nil {
		return fmt.Errorf("mqtt confirmer: no client")
	}
	cmdID, err := c.Client.SendOrder(ctx, o)
	if err != nil {
		return fmt.Errorf("send order to station %d: %w", o.StationID, err)
	}
	ok, err := c.Client.WaitForAck(ctx, cmdID, c.Timeout)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderRejected
	}
	return nil
}

var _ delivery.Confirmer = Confirmer{}
