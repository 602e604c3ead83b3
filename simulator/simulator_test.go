package main

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/station"
)

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (doneToken) Error() error { return nil }

type published struct {
	topic   string
	payload []byte
}

type fakePub struct {
	mu  sync.Mutex
	out []published
}

func (f *fakePub) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, published{topic: topic, payload: payload.([]byte)})
	return doneToken{}
}

func (f *fakePub) messages() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.out...)
}

type ack struct {
	CommandID string `json:"command_id"`
	Accepted  bool   `json:"accepted"`
}

func TestAutoAck(t *testing.T) {
	pub := &fakePub{}
	AutoAck{}.Ack(context.Background(), pub, 3, "cmd-1")
	msgs := pub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "station/3/ack", msgs[0].topic)
	var a ack
	require.NoError(t, json.Unmarshal(msgs[0].payload, &a))
	assert.Equal(t, ack{CommandID: "cmd-1", Accepted: true}, a)
}

func TestRandomAckRates(t *testing.T) {
	pub := &fakePub{}
	RandomAck{DropRate: 1}.Ack(context.Background(), pub, 1, "dropped")
	assert.Empty(t, pub.messages())

	RandomAck{RejectRate: 1}.Ack(context.Background(), pub, 1, "declined")
	msgs := pub.messages()
	require.Len(t, msgs, 1)
	var a ack
	require.NoError(t, json.Unmarshal(msgs[0].payload, &a))
	assert.False(t, a.Accepted)
}

func TestAckCancelledDuringDelay(t *testing.T) {
	pub := &fakePub{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	AutoAck{Delay: time.Minute}.Ack(ctx, pub, 1, "late")
	assert.Empty(t, pub.messages())
}

func TestStationsHandle(t *testing.T) {
	pub := &fakePub{}
	s := NewStations(pub, AutoAck{})
	s.Handle(context.Background(), "station/2/dispatch", []byte(`{"command_id":"c1","delivery_id":"d1","station_id":2,"battery_type":"60V"}`))
	s.Handle(context.Background(), "station/2/dispatch", []byte(`not json`))
	s.Handle(context.Background(), "station/2/dispatch", []byte(`{"delivery_id":"d2"}`))
	s.Wait()

	assert.Equal(t, 1, s.Orders(2))
	msgs := pub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "station/2/ack", msgs[0].topic)
}

func TestRiderWalks(t *testing.T) {
	r := NewRider("phone")
	prev := station.KigaliCenter
	for i := 0; i < 5; i++ {
		pos, h := r.Next()
		require.NoError(t, pos.Validate())
		assert.True(t, h.Calibrated)
		assert.InDelta(t, geo.Bearing(prev, pos), h.Alpha, 1e-9)
		assert.Less(t, geo.Distance(prev, pos), 0.05)
		prev = pos
	}
}

func TestRiderRunPublishes(t *testing.T) {
	pub := &fakePub{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewRider("phone").Run(ctx, pub, 5*time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return len(pub.messages()) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	topics := map[string]bool{}
	for _, m := range pub.messages() {
		topics[m.topic] = true
	}
	assert.True(t, topics["device/phone/location"])
	assert.True(t, topics["device/phone/heading"])
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{Broker: "tcp://x:1883"}, true},
		{"no broker", Config{}, false},
		{"bad drop", Config{Broker: "b", DropRate: 2}, false},
		{"bad reject", Config{Broker: "b", RejectRate: -1}, false},
		{"device without interval", Config{Broker: "b", Device: "p"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
