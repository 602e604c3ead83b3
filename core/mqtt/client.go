// Package mqtt defines the station dispatch port and the confirmer that turns
// a station acknowledgment into a confirmed delivery.
package mqtt

import (
	"context"
	"time"

	"github.com/muhirwa45/E-moto/core/delivery"
)

// Client sends dispatch orders to swap stations and waits for their
// acknowledgment.
type Client interface {
	// SendOrder publishes the order to the station and returns the command
	// identifier used to track the acknowledgment. Cancelling ctx stops
	// pending publish retries.
	SendOrder(ctx context.Context, o delivery.Order) (commandID string, err error)

	// WaitForAck waits for the station's answer to commandID. It returns
	// false with ErrOrderRejected when the station declines, and
	// ErrAckTimeout when nothing arrives in time.
	WaitForAck(ctx context.Context, commandID string, timeout time.Duration) (bool, error)
}
