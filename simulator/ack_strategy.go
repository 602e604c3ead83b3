package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/muhirwa45/E-moto/infra/logger"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func randFloat() float64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Float64()
}

// AckStrategy defines how a station answers delivery orders.
type AckStrategy interface {
	Ack(ctx context.Context, pub publisher, stationID int, commandID string)
}

// AutoAck accepts every order after an optional fixed delay.
type AutoAck struct {
	Delay time.Duration
}

// Ack implements AckStrategy.
func (a AutoAck) Ack(ctx context.Context, pub publisher, stationID int, commandID string) {
	if !sleep(ctx, a.Delay) {
		return
	}
	publishAck(pub, stationID, commandID, true)
}

// RandomAck drops or declines orders with the configured probabilities and
// waits for the specified delay before answering.
type RandomAck struct {
	Delay      time.Duration
	DropRate   float64
	RejectRate float64
}

// Ack implements AckStrategy.
func (r RandomAck) Ack(ctx context.Context, pub publisher, stationID int, commandID string) {
	if r.DropRate > 0 && randFloat() < r.DropRate {
		logger.New("simulator").Debugf("station %d drops %s", stationID, commandID)
		return
	}
	accepted := !(r.RejectRate > 0 && randFloat() < r.RejectRate)
	if !sleep(ctx, r.Delay) {
		return
	}
	publishAck(pub, stationID, commandID, accepted)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func publishAck(pub publisher, stationID int, commandID string, accepted bool) {
	log := logger.New("simulator")
	payload, err := json.Marshal(struct {
		CommandID string `json:"command_id"`
		Accepted  bool   `json:"accepted"`
	}{CommandID: commandID, Accepted: accepted})
	if err != nil {
		log.Errorf("marshal ack: %v", err)
		return
	}
	token := pub.Publish(fmt.Sprintf("station/%d/ack", stationID), 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Warnf("ack publish timeout for station %d", stationID)
		return
	}
	if err := token.Error(); err != nil {
		log.Errorf("publish ack error for station %d: %v", stationID, err)
	}
}
