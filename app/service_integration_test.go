//go:build integration

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/config"
	"github.com/muhirwa45/E-moto/core/delivery"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/infra/mqtt"
	"github.com/muhirwa45/E-moto/test/util"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// TestServiceOverMQTT drives a delivery with the rider location streamed by a
// device and the order acknowledged by a station, both over a real broker.
func TestServiceOverMQTT(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	peer := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("peer"))
	tok := peer.Connect()
	tok.Wait()
	require.NoError(t, tok.Error())
	defer peer.Disconnect(100)

	tok = peer.Subscribe(mqtt.DispatchTopic(1), 1, func(c paho.Client, m paho.Message) {
		var o struct {
			CommandID string `json:"command_id"`
		}
		if json.Unmarshal(m.Payload(), &o) == nil {
			ack, _ := json.Marshal(map[string]any{"command_id": o.CommandID, "accepted": true})
			c.Publish("station/1/ack", 1, false, ack)
		}
	})
	tok.Wait()
	require.NoError(t, tok.Error())
	tracking := make(chan []byte, 16)
	tok = peer.Subscribe("delivery/+/tracking", 1, func(_ paho.Client, m paho.Message) {
		select {
		case tracking <- m.Payload():
		default:
		}
	})
	tok.Wait()
	require.NoError(t, tok.Error())

	promAddr := freeAddr(t)
	cfg := config.Default()
	cfg.MQTT = mqtt.Config{Broker: broker, ClientID: "emoto-it"}
	cfg.Delivery = delivery.Config{ConfirmMode: delivery.ConfirmMQTT, TickIntervalMS: 50, AckTimeoutSeconds: 5}
	cfg.Location = config.LocationConfig{Mode: config.LocationMQTT, DeviceID: "phone"}
	cfg.Metrics.PrometheusAddr = promAddr
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()
	go func() { _ = svc.Run(ctx) }()

	loc, _ := json.Marshal(map[string]float64{"lat": -1.9441, "lng": 30.0619})
	require.Eventually(t, func() bool {
		peer.Publish(mqtt.LocationTopic("phone"), 1, false, loc).Wait()
		_, err := svc.Location.Location()
		return err == nil
	}, 5*time.Second, 100*time.Millisecond, "location never arrived")

	_, err = svc.Manager.RequestDelivery(1, model.Battery60V)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return svc.Manager.State() == model.StateDelivering
	}, 5*time.Second, 20*time.Millisecond)

	select {
	case payload := <-tracking:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(payload, &msg))
		require.EqualValues(t, 1, msg["station_id"])
	case <-time.After(5 * time.Second):
		t.Fatal("no tracking update published")
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, util.MetricTimeout)
	defer waitCancel()
	require.NoError(t, util.WaitForMetric(waitCtx, fmt.Sprintf("http://%s/metrics", promAddr), "delivery_tracking_ticks_total"))
}
