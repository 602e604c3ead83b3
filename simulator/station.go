package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/muhirwa45/E-moto/infra/logger"
	"github.com/muhirwa45/E-moto/infra/mqtt"
)

// dispatchFilter matches the order topic of every station.
const dispatchFilter = "station/+/dispatch"

type order struct {
	CommandID   string  `json:"command_id"`
	DeliveryID  string  `json:"delivery_id"`
	StationID   int     `json:"station_id"`
	BatteryType string  `json:"battery_type"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// Stations answers the orders sent to any station.
type Stations struct {
	pub      publisher
	strategy AckStrategy
	log      logger.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	orders map[int]int
}

// NewStations creates the simulated station side.
func NewStations(pub publisher, strategy AckStrategy) *Stations {
	return &Stations{pub: pub, strategy: strategy, log: logger.New("simulator"), orders: make(map[int]int)}
}

// Handle processes one order message. Answers are sent asynchronously.
func (s *Stations) Handle(ctx context.Context, topic string, payload []byte) {
	var o order
	if err := json.Unmarshal(payload, &o); err != nil || o.CommandID == "" {
		s.log.Warnf("invalid order on %s", topic)
		return
	}
	id, ok := mqtt.StationFromTopic(topic)
	if !ok {
		id = o.StationID
	}
	s.mu.Lock()
	s.orders[id]++
	s.mu.Unlock()
	s.log.Infof("station %d received %s battery order for delivery %s", id, o.BatteryType, o.DeliveryID)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.strategy.Ack(ctx, s.pub, id, o.CommandID)
	}()
}

// Orders returns the number of orders received by a station.
func (s *Stations) Orders(stationID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[stationID]
}

// Wait blocks until every pending answer was sent or dropped.
func (s *Stations) Wait() { s.wg.Wait() }
