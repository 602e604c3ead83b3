package delivery

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/metrics"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/sensors"
	"github.com/muhirwa45/E-moto/core/station"
)

func TestLifecycleMetrics(t *testing.T) {
	h := newHarness(t, nil, prepOnly)
	reg := prometheus.NewRegistry()
	ResetMetrics(reg)

	_, err := h.m.RequestDelivery(3, model.Battery60V)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(deliveryRequests.WithLabelValues("60V")))
	assert.Equal(t, 10.0, testutil.ToFloat64(etaMinutes))

	h.clock.Advance(4 * time.Minute)
	h.sched.Fire()
	assert.Equal(t, 6.0, testutil.ToFloat64(etaMinutes))
	assert.Equal(t, 1.0, testutil.ToFloat64(trackingTicks))

	require.NoError(t, h.m.CancelDelivery())
	assert.Equal(t, 1.0, testutil.ToFloat64(deliveryCancellations))
	assert.Equal(t, 0.0, testutil.ToFloat64(etaMinutes))
	assert.Equal(t, 1.0, testutil.ToFloat64(stateTransitions.WithLabelValues("idle", "requesting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(stateTransitions.WithLabelValues("delivering", "idle")))

	n, err := testutil.GatherAndCount(reg, "delivery_state_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

type recordingSink struct {
	metrics.NopSink
	outcomes []metrics.Outcome
	samples  int
	ratings  []metrics.RatingEvent
}

func (r *recordingSink) RecordDelivery(ev metrics.DeliveryEvent) error {
	r.outcomes = append(r.outcomes, ev.Outcome)
	return nil
}

func (r *recordingSink) RecordTracking(metrics.TrackingSample) error {
	r.samples++
	return nil
}

func (r *recordingSink) RecordRating(ev metrics.RatingEvent) error {
	r.ratings = append(r.ratings, ev)
	return nil
}

func TestSinkReceivesLifecycle(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	sink := &recordingSink{}
	sched := &ManualScheduler{}
	clock := newFakeClock()
	loc := sensors.LocationFunc(func() (geo.Coordinates, error) { return station.KigaliCenter, nil })
	m, err := NewManager(station.NewKigaliDirectory(), loc, nil, Config{ETA: prepOnly}, sink, nil, nil)
	require.NoError(t, err)
	defer m.Close()
	m.SetClock(clock.Now)
	m.SetScheduler(sched)

	_, err = m.RequestDelivery(1, model.Battery72V)
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)
	sched.Fire()
	_, err = m.SubmitRating(1, 4)
	require.NoError(t, err)

	assert.Equal(t, []metrics.Outcome{
		metrics.OutcomeRequested,
		metrics.OutcomeConfirmed,
		metrics.OutcomeDelivered,
	}, sink.outcomes)
	assert.Equal(t, 1, sink.samples)
	require.Len(t, sink.ratings, 1)
	assert.Equal(t, 183, sink.ratings[0].Count)
}
