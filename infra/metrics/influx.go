package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/muhirwa45/E-moto/core/metrics"
	"github.com/muhirwa45/E-moto/infra/logger"
)

// InfluxSink writes delivery events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client resources.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordDelivery writes a lifecycle step of a delivery.
func (s *InfluxSink) RecordDelivery(ev coremetrics.DeliveryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("delivery_event").
		AddTag("station_id", strconv.Itoa(ev.StationID)).
		AddTag("outcome", string(ev.Outcome)).
		AddTag("delivery_id", ev.DeliveryID)
	if ev.BatteryType != "" {
		p = p.AddTag("battery_type", string(ev.BatteryType))
	}
	p = p.AddField("eta_min", round3(ev.ETAMinutes)).
		AddField("distance_km", round3(ev.DistanceKm)).
		AddField("elapsed_s", round3(ev.Elapsed.Seconds())).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTracking writes the vehicle state after a tracking tick.
func (s *InfluxSink) RecordTracking(sample coremetrics.TrackingSample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("tracking_sample").
		AddTag("delivery_id", sample.DeliveryID).
		AddTag("station_id", strconv.Itoa(sample.StationID)).
		AddField("progress", round3(sample.Progress)).
		AddField("eta_min", round3(sample.ETAMinutes)).
		AddField("distance_km", round3(sample.DistanceKm)).
		AddField("lat", sample.Vehicle.Lat).
		AddField("lng", sample.Vehicle.Lng).
		SetTime(sample.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRating writes a station rating.
func (s *InfluxSink) RecordRating(ev coremetrics.RatingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("station_rating").
		AddTag("station_id", strconv.Itoa(ev.StationID)).
		AddField("rating", ev.Rating).
		AddField("average", round3(ev.Average)).
		AddField("count", ev.Count).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordConfirmLatency writes the station acknowledgment latency.
func (s *InfluxSink) RecordConfirmLatency(l coremetrics.ConfirmLatency) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("confirmation").
		AddTag("station_id", strconv.Itoa(l.StationID)).
		AddField("confirmed", l.Confirmed).
		AddField("latency_ms", round3(l.Latency.Seconds()*1000)).
		SetTime(l.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTransition writes a lifecycle state change.
func (s *InfluxSink) RecordTransition(ev coremetrics.TransitionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("delivery_state").
		AddTag("station_id", strconv.Itoa(ev.StationID)).
		AddTag("from", ev.From.String()).
		AddTag("to", ev.To.String())
	if ev.DeliveryID != "" {
		p = p.AddTag("delivery_id", ev.DeliveryID)
	}
	p = p.AddField("state", int(ev.To)).SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

var (
	_ coremetrics.TrackingRecorder   = (*InfluxSink)(nil)
	_ coremetrics.RatingRecorder     = (*InfluxSink)(nil)
	_ coremetrics.LatencyRecorder    = (*InfluxSink)(nil)
	_ coremetrics.TransitionRecorder = (*InfluxSink)(nil)
)
