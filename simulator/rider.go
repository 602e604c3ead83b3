package main

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/station"
	"github.com/muhirwa45/E-moto/infra/logger"
	"github.com/muhirwa45/E-moto/infra/mqtt"
)

// Rider walks slowly around the city centre, publishing its position and a
// compass heading facing the direction of travel.
type Rider struct {
	Device string
	Start  geo.Coordinates
	// StepDeg is the position change per update in degrees.
	StepDeg float64
	Turn    float64

	pos     geo.Coordinates
	heading float64
}

// NewRider creates a rider at the city centre.
func NewRider(device string) *Rider {
	return &Rider{Device: device, Start: station.KigaliCenter, StepDeg: 0.0002, Turn: 15}
}

// Next advances the rider by one step and returns its readings.
func (r *Rider) Next() (geo.Coordinates, model.Heading) {
	if r.pos == (geo.Coordinates{}) {
		r.pos = r.Start
	}
	next := geo.Coordinates{
		Lat: r.pos.Lat + r.StepDeg*cosDeg(r.heading),
		Lng: r.pos.Lng + r.StepDeg*sinDeg(r.heading),
	}
	h := model.Heading{Alpha: geo.Bearing(r.pos, next), Calibrated: true}
	r.pos = next
	r.heading = geo.NormalizeAngle(r.heading + r.Turn)
	return next, h
}

// Run publishes a reading every interval until ctx is done.
func (r *Rider) Run(ctx context.Context, pub publisher, interval time.Duration) {
	log := logger.New("simulator")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pos, h := r.Next()
			for topic, v := range map[string]any{
				mqtt.LocationTopic(r.Device): pos,
				mqtt.HeadingTopic(r.Device):  h,
			} {
				payload, err := json.Marshal(v)
				if err != nil {
					log.Errorf("marshal %s: %v", topic, err)
					continue
				}
				if tok := pub.Publish(topic, 0, false, payload); tok.WaitTimeout(time.Second) && tok.Error() != nil {
					log.Errorf("publish %s: %v", topic, tok.Error())
				}
			}
		}
	}
}

func cosDeg(d float64) float64 { return math.Cos(d * math.Pi / 180) }

func sinDeg(d float64) float64 { return math.Sin(d * math.Pi / 180) }
