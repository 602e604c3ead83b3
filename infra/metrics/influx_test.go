package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/muhirwa45/E-moto/core/geo"
	coremetrics "github.com/muhirwa45/E-moto/core/metrics"
	"github.com/muhirwa45/E-moto/core/model"
)

type lineCapture struct {
	mu     sync.Mutex
	bodies []string
}

func (c *lineCapture) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, strings.TrimSpace(string(b)))
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (c *lineCapture) expect(t *testing.T, points ...*write.Point) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.bodies) != len(points) {
		t.Fatalf("expected %d writes, got %#v", len(points), c.bodies)
	}
	for i, p := range points {
		exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
		if c.bodies[i] != exp {
			t.Errorf("write %d:\n got %s\nwant %s", i, c.bodies[i], exp)
		}
	}
}

func TestInfluxSink_RecordDelivery(t *testing.T) {
	var c lineCapture
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.DeliveryEvent{
		DeliveryID:  "d1",
		StationID:   3,
		BatteryType: model.Battery72V,
		Outcome:     coremetrics.OutcomeConfirmed,
		ETAMinutes:  14.1234,
		DistanceKm:  2.78,
		Time:        now,
	}
	if err := sink.RecordDelivery(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("delivery_event").
		AddTag("station_id", "3").
		AddTag("outcome", "confirmed").
		AddTag("delivery_id", "d1").
		AddTag("battery_type", "72V").
		AddField("eta_min", 14.123).
		AddField("distance_km", 2.78).
		AddField("elapsed_s", 0.0).
		SetTime(now)
	c.expect(t, p)
}

func TestInfluxSink_RecordTracking(t *testing.T) {
	var c lineCapture
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	s := coremetrics.TrackingSample{
		DeliveryID: "d1",
		StationID:  1,
		Progress:   0.5,
		ETAMinutes: 5,
		DistanceKm: 1.2,
		Vehicle:    geo.Coordinates{Lat: -1.93, Lng: 30.08},
		Time:       now,
	}
	if err := sink.RecordTracking(s); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("tracking_sample").
		AddTag("delivery_id", "d1").
		AddTag("station_id", "1").
		AddField("progress", 0.5).
		AddField("eta_min", 5.0).
		AddField("distance_km", 1.2).
		AddField("lat", -1.93).
		AddField("lng", 30.08).
		SetTime(now)
	c.expect(t, p)
}

func TestInfluxSink_RecordRatingAndLatency(t *testing.T) {
	var c lineCapture
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	if err := sink.RecordRating(coremetrics.RatingEvent{StationID: 2, Rating: 5, Average: 4.0909, Count: 11, Time: now}); err != nil {
		t.Fatalf("record rating: %v", err)
	}
	if err := sink.RecordConfirmLatency(coremetrics.ConfirmLatency{StationID: 2, Confirmed: true, Latency: 1500 * time.Millisecond, Time: now}); err != nil {
		t.Fatalf("record latency: %v", err)
	}
	p1 := write.NewPointWithMeasurement("station_rating").
		AddTag("station_id", "2").
		AddField("rating", 5).
		AddField("average", 4.091).
		AddField("count", 11).
		SetTime(now)
	p2 := write.NewPointWithMeasurement("confirmation").
		AddTag("station_id", "2").
		AddField("confirmed", true).
		AddField("latency_ms", 1500.0).
		SetTime(now)
	c.expect(t, p1, p2)
}

func TestInfluxSink_RecordTransition(t *testing.T) {
	var c lineCapture
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.TransitionEvent{StationID: 4, From: model.StateIdle, To: model.StateStationSelected, Time: now}
	if err := sink.RecordTransition(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("delivery_state").
		AddTag("station_id", "4").
		AddTag("from", "idle").
		AddTag("to", "station_selected").
		AddField("state", 1).
		SetTime(now)
	c.expect(t, p)
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
