package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/muhirwa45/E-moto/core/metrics"
)

func TestPromSink_RecordDelivery(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	for _, o := range []coremetrics.Outcome{coremetrics.OutcomeRequested, coremetrics.OutcomeConfirmed, coremetrics.OutcomeDelivered} {
		if err := sink.RecordDelivery(coremetrics.DeliveryEvent{StationID: 3, Outcome: o, Elapsed: 10 * time.Minute}); err != nil {
			t.Fatalf("record error: %v", err)
		}
	}

	expected := `
# HELP delivery_events_total Delivery lifecycle events by station and outcome
# TYPE delivery_events_total counter
delivery_events_total{outcome="confirmed",station_id="3"} 1
delivery_events_total{outcome="delivered",station_id="3"} 1
delivery_events_total{outcome="requested",station_id="3"} 1
`
	if err := testutil.CollectAndCompare(sink.events, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.duration); c != 1 {
		t.Errorf("expected one duration series, got %d", c)
	}
}

func TestPromSink_RatingAndLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordRating(coremetrics.RatingEvent{StationID: 1, Average: 4.5}); err != nil {
		t.Fatalf("rating: %v", err)
	}
	if v := testutil.ToFloat64(sink.rating.WithLabelValues("1")); v != 4.5 {
		t.Fatalf("rating gauge = %f", v)
	}
	if err := sink.RecordConfirmLatency(coremetrics.ConfirmLatency{StationID: 1, Confirmed: true, Latency: time.Second}); err != nil {
		t.Fatalf("latency: %v", err)
	}
	if c := testutil.CollectAndCount(sink.latency); c == 0 {
		t.Errorf("latency not recorded")
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = a.RecordDelivery(coremetrics.DeliveryEvent{StationID: 1, Outcome: coremetrics.OutcomeFailed})
	_ = b.RecordDelivery(coremetrics.DeliveryEvent{StationID: 1, Outcome: coremetrics.OutcomeFailed})
	if v := testutil.ToFloat64(a.events.WithLabelValues("1", "failed")); v != 2 {
		t.Fatalf("expected shared counter, got %f", v)
	}
}
