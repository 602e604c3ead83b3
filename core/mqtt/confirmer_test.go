package mqtt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/delivery"
	coremqtt "github.com/muhirwa45/E-moto/core/mqtt"
	inframqtt "github.com/muhirwa45/E-moto/infra/mqtt"
)

func TestConfirmerAccepted(t *testing.T) {
	pub := inframqtt.NewMockPublisher()
	c := coremqtt.Confirmer{Client: pub, Timeout: time.Second}
	require.NoError(t, c.Confirm(context.Background(), delivery.Order{StationID: 1, DeliveryID: "d"}))
	require.Len(t, pub.Sent(), 1)
	assert.Equal(t, "d", pub.Sent()[0].DeliveryID)
}

func TestConfirmerFailures(t *testing.T) {
	pub := inframqtt.NewMockPublisher()
	pub.FailIDs[1] = true
	pub.Reject[2] = true
	pub.Silent[3] = true
	c := coremqtt.Confirmer{Client: pub, Timeout: 5 * time.Millisecond}

	assert.Error(t, c.Confirm(context.Background(), delivery.Order{StationID: 1}))
	assert.ErrorIs(t, c.Confirm(context.Background(), delivery.Order{StationID: 2}), coremqtt.ErrOrderRejected)
	assert.ErrorIs(t, c.Confirm(context.Background(), delivery.Order{StationID: 3}), coremqtt.ErrAckTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Timeout = time.Hour
	err := c.Confirm(ctx, delivery.Order{StationID: 3})
	assert.True(t, errors.Is(err, context.Canceled))

	assert.Error(t, coremqtt.Confirmer{}.Confirm(context.Background(), delivery.Order{}))
}
