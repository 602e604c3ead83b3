// Package delivery implements the battery delivery lifecycle: station
// selection, dispatch confirmation, live tracking, completion and rating.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/muhirwa45/E-moto/core/eta"
	"github.com/muhirwa45/E-moto/core/events"
	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/logger"
	"github.com/muhirwa45/E-moto/core/metrics"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/sensors"
	"github.com/muhirwa45/E-moto/internal/eventbus"
)

// Inventory is the part of the station directory the lifecycle needs.
type Inventory interface {
	Get(id int) (model.Station, error)
	FindNearestAvailable(from *geo.Coordinates, types ...model.BatteryType) (model.Station, error)
	Reserve(id int, t model.BatteryType) (model.Station, error)
	Release(id int, t model.BatteryType) error
	ApplyRating(id, rating int) (model.Station, error)
}

// View is a read-only snapshot for renderers.
type View struct {
	State        model.DeliveryState `json:"state"`
	Selected     *model.Station      `json:"selected,omitempty"`
	Delivery     *model.Delivery     `json:"delivery,omitempty"`
	UserLocation *geo.Coordinates    `json:"userLocation,omitempty"`
	// DisplayETA is the delivery ETA rounded for display.
	DisplayETA int `json:"displayEta"`
}

type pendingRequest struct {
	id      string
	station model.Station
	battery model.BatteryType
	user    geo.Coordinates
	cancel  context.CancelFunc
}

type reservation struct {
	stationID int
	battery   model.BatteryType
}

// Manager owns the single delivery session. All transitions and tracking
// ticks run under one lock, so they are applied strictly in order.
type Manager struct {
	inv          Inventory
	location     sensors.LocationProvider
	confirmer    Confirmer
	eta          eta.Model
	tickInterval time.Duration
	sched        Scheduler
	now          func() time.Time
	metrics      metrics.MetricsSink
	bus          eventbus.EventBus
	logger       logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	state    model.DeliveryState
	selected *model.Station
	pending  *pendingRequest
	reserved *reservation
	delivery *model.Delivery
	tracker  Task
}

// NewManager creates a new manager in the Idle state.
// A nil confirmer confirms requests synchronously. sink, bus and log may be
// nil.
func NewManager(inv Inventory, loc sensors.LocationProvider, confirmer Confirmer, cfg Config, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Manager, error) {
	if inv == nil || loc == nil {
		return nil, fmt.Errorf("delivery: nil parameter provided to NewManager")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		inv:          inv,
		location:     loc,
		confirmer:    confirmer,
		eta:          cfg.ETA,
		tickInterval: cfg.TickInterval(),
		sched:        TickerScheduler{},
		now:          time.Now,
		metrics:      sink,
		bus:          bus,
		logger:       logger.OrNop(log),
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// SetClock replaces the time source used for delivery start and tracking.
func (m *Manager) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// SetScheduler replaces the scheduler used for tracking ticks. It only
// affects deliveries confirmed afterwards.
func (m *Manager) SetScheduler(s Scheduler) {
	if s == nil {
		return
	}
	m.mu.Lock()
	m.sched = s
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *Manager) State() model.DeliveryState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns the current session for rendering.
func (m *Manager) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := View{State: m.state}
	if m.selected != nil {
		s := m.selected.Clone()
		v.Selected = &s
	}
	if m.delivery != nil {
		d := *m.delivery
		d.Station = d.Station.Clone()
		v.Delivery = &d
		v.DisplayETA = eta.Display(d.ETA)
	}
	if loc, err := sensors.CurrentLocation(m.location); err == nil {
		v.UserLocation = loc
	}
	return v
}

// SelectStation focuses a station. Offline stations can't be selected.
func (m *Manager) SelectStation(id int) (model.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Active() {
		return model.Station{}, fmt.Errorf("%w: delivery in progress", model.ErrInvalidState)
	}
	st, err := m.inv.Get(id)
	if err != nil {
		return model.Station{}, fmt.Errorf("%w: %v", model.ErrInvalidRequest, err)
	}
	if st.Status == model.StatusOffline {
		return model.Station{}, fmt.Errorf("%w: station %d is offline", model.ErrInvalidRequest, id)
	}
	m.selected = &st
	m.transitionLocked(model.StateStationSelected)
	return st.Clone(), nil
}

// Recenter drops the selection and returns to Idle. Outside StationSelected
// it has no effect.
func (m *Manager) Recenter() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != model.StateStationSelected {
		return
	}
	m.selected = nil
	m.transitionLocked(model.StateIdle)
}

// RequestDelivery reserves one battery at the station and starts the
// dispatch confirmation. It returns once the request has been accepted; the
// move to Delivering happens when the confirmer succeeds.
func (m *Manager) RequestDelivery(stationID int, bt model.BatteryType) (model.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return model.Delivery{}, fmt.Errorf("%w: manager closed", model.ErrInvalidState)
	}
	if m.state.Active() {
		return model.Delivery{}, fmt.Errorf("%w: delivery already in progress", model.ErrInvalidState)
	}
	if !bt.Valid() {
		return model.Delivery{}, fmt.Errorf("%w: unknown battery type %q", model.ErrInvalidRequest, bt)
	}
	user, err := sensors.CurrentLocation(m.location)
	if err != nil {
		return model.Delivery{}, err
	}
	st, err := m.inv.Reserve(stationID, bt)
	if err != nil {
		return model.Delivery{}, err
	}
	m.reserved = &reservation{stationID: stationID, battery: bt}

	ctx, cancel := context.WithCancel(m.ctx)
	p := &pendingRequest{id: newDeliveryID(), station: st, battery: bt, user: *user, cancel: cancel}
	m.pending = p
	m.selected = &st
	deliveryRequests.WithLabelValues(string(bt)).Inc()
	m.transitionLocked(model.StateRequesting)
	m.record(metrics.DeliveryEvent{
		DeliveryID:  p.id,
		StationID:   st.ID,
		BatteryType: bt,
		Outcome:     metrics.OutcomeRequested,
		DistanceKm:  geo.Distance(*user, st.Coords),
		ETAMinutes:  m.eta.Estimate(geo.Distance(*user, st.Coords)),
		Time:        m.now(),
	})
	m.logger.Infof("delivery %s requested from station %d (%s)", p.id, st.ID, bt)

	if m.confirmer == nil {
		m.confirmLocked(p, 0)
		return m.delivery.Clone(), nil
	}
	order := Order{DeliveryID: p.id, StationID: st.ID, BatteryType: bt, UserLocation: *user, Time: m.now()}
	m.wg.Add(1)
	go m.awaitConfirmation(ctx, p, order)
	return model.Delivery{
		ID:              p.id,
		Station:         st.Clone(),
		BatteryType:     bt,
		UserLocation:    *user,
		VehicleLocation: st.Coords,
		ETA:             m.eta.Estimate(geo.Distance(*user, st.Coords)),
	}, nil
}

// RequestSOS dispatches from the nearest available station stocking bt.
func (m *Manager) RequestSOS(bt model.BatteryType) (model.Delivery, error) {
	user, err := sensors.CurrentLocation(m.location)
	if err != nil {
		return model.Delivery{}, err
	}
	st, err := m.inv.FindNearestAvailable(user, bt)
	if err != nil {
		return model.Delivery{}, err
	}
	m.logger.Infof("SOS dispatch: nearest station %d", st.ID)
	return m.RequestDelivery(st.ID, bt)
}

func (m *Manager) awaitConfirmation(ctx context.Context, p *pendingRequest, o Order) {
	defer m.wg.Done()
	start := time.Now()
	err := m.confirmer.Confirm(ctx, o)
	latency := time.Since(start)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != p {
		// cancelled or superseded while waiting
		return
	}
	confirmLatency.WithLabelValues(strconv.FormatBool(err == nil)).Observe(latency.Seconds())
	if lr, ok := m.metrics.(metrics.LatencyRecorder); ok {
		if rerr := lr.RecordConfirmLatency(metrics.ConfirmLatency{StationID: p.station.ID, Confirmed: err == nil, Latency: latency, Time: m.now()}); rerr != nil {
			m.logger.Errorf("latency metrics error: %v", rerr)
		}
	}
	if err != nil {
		m.failLocked(p, err, latency)
		return
	}
	m.confirmLocked(p, latency)
}

func (m *Manager) confirmLocked(p *pendingRequest, latency time.Duration) {
	p.cancel()
	m.pending = nil
	m.stopTrackingLocked()

	dist := geo.Distance(p.user, p.station.Coords)
	d := &model.Delivery{
		ID:              p.id,
		Station:         p.station,
		BatteryType:     p.battery,
		UserLocation:    p.user,
		VehicleLocation: p.station.Coords,
		StartTime:       m.now(),
		ETA:             m.eta.Estimate(dist),
	}
	m.delivery = d
	m.transitionLocked(model.StateDelivering)
	etaMinutes.Set(d.ETA)
	m.record(metrics.DeliveryEvent{
		DeliveryID:  d.ID,
		StationID:   d.Station.ID,
		BatteryType: d.BatteryType,
		Outcome:     metrics.OutcomeConfirmed,
		ETAMinutes:  d.ETA,
		DistanceKm:  dist,
		Time:        d.StartTime,
	})
	m.logger.Infof("delivery %s confirmed after %s, eta %.1f min", d.ID, latency, d.ETA)

	id := d.ID
	m.tracker = m.sched.Every(m.tickInterval, func() { m.tick(id) })
}

func (m *Manager) failLocked(p *pendingRequest, err error, latency time.Duration) {
	p.cancel()
	m.pending = nil
	m.releaseLocked()
	m.transitionLocked(model.StateStationSelected)
	m.record(metrics.DeliveryEvent{
		DeliveryID:  p.id,
		StationID:   p.station.ID,
		BatteryType: p.battery,
		Outcome:     metrics.OutcomeFailed,
		Time:        m.now(),
	})
	m.publish(events.RequestFailedEvent{StationID: p.station.ID, BatteryType: p.battery, Err: err, Latency: latency, Time: m.now()})
	m.logger.Warnf("delivery %s not confirmed by station %d: %v", p.id, p.station.ID, err)
}

// Tick applies one tracking update to the active delivery.
func (m *Manager) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delivery != nil {
		m.tickLocked(m.delivery.ID)
	}
}

func (m *Manager) tick(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickLocked(id)
}

func (m *Manager) tickLocked(id string) {
	d := m.delivery
	if m.state != model.StateDelivering || d == nil || d.ID != id {
		return
	}
	if loc, err := sensors.CurrentLocation(m.location); err == nil {
		d.UserLocation = *loc
	} else {
		m.logger.Debugf("tracking with last known location: %v", err)
	}
	now := m.now()
	total := m.eta.Estimate(geo.Distance(d.Station.Coords, d.UserLocation))
	elapsed := math.Max(0, now.Sub(d.StartTime).Minutes())
	progress := 1.0
	if total > 0 {
		progress = math.Min(1, elapsed/total)
	}
	trackingTicks.Inc()

	arrived := progress >= 1
	if arrived {
		d.Progress = 1
		d.VehicleLocation = d.UserLocation
		d.ETA = 0
	} else {
		d.Progress = progress
		d.VehicleLocation = geo.Interpolate(d.Station.Coords, d.UserLocation, progress)
		d.ETA = math.Max(0, total-elapsed)
	}
	etaMinutes.Set(d.ETA)
	m.publish(events.TrackingEvent{Delivery: d.Clone(), DistanceKm: geo.Distance(d.VehicleLocation, d.UserLocation), Time: now})
	if tr, ok := m.metrics.(metrics.TrackingRecorder); ok {
		if err := tr.RecordTracking(metrics.TrackingSample{
			DeliveryID: d.ID,
			StationID:  d.Station.ID,
			Progress:   d.Progress,
			ETAMinutes: d.ETA,
			DistanceKm: geo.Distance(d.VehicleLocation, d.UserLocation),
			Vehicle:    d.VehicleLocation,
			Time:       now,
		}); err != nil {
			m.logger.Errorf("tracking metrics error: %v", err)
		}
	}
	if !arrived {
		return
	}
	m.stopTrackingLocked()
	// the reserved battery has been handed over
	m.reserved = nil
	m.transitionLocked(model.StateDelivered)
	m.record(metrics.DeliveryEvent{
		DeliveryID:  d.ID,
		StationID:   d.Station.ID,
		BatteryType: d.BatteryType,
		Outcome:     metrics.OutcomeDelivered,
		Elapsed:     now.Sub(d.StartTime),
		Time:        now,
	})
	m.logger.Infof("delivery %s arrived", d.ID)
}

// CancelDelivery aborts the selection, pending request or active delivery and
// returns to Idle. A reserved battery goes back to the station.
func (m *Manager) CancelDelivery() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case model.StateStationSelected:
		m.selected = nil
		m.transitionLocked(model.StateIdle)
		return nil
	case model.StateRequesting, model.StateDelivering:
	default:
		return fmt.Errorf("%w: nothing to cancel in state %s", model.ErrInvalidState, m.state)
	}
	ev := metrics.DeliveryEvent{Outcome: metrics.OutcomeCancelled, Time: m.now()}
	if p := m.pending; p != nil {
		p.cancel()
		m.pending = nil
		ev.DeliveryID, ev.StationID, ev.BatteryType = p.id, p.station.ID, p.battery
	}
	if d := m.delivery; d != nil {
		ev.DeliveryID, ev.StationID, ev.BatteryType = d.ID, d.Station.ID, d.BatteryType
		ev.ETAMinutes = d.ETA
		ev.Elapsed = m.now().Sub(d.StartTime)
	}
	m.stopTrackingLocked()
	m.releaseLocked()
	m.selected = nil
	m.transitionLocked(model.StateIdle)
	m.delivery = nil
	etaMinutes.Set(0)
	deliveryCancellations.Inc()
	m.record(ev)
	m.logger.Infof("delivery %s cancelled", ev.DeliveryID)
	return nil
}

// SubmitRating rates the station that completed the delivery and returns to
// Idle.
func (m *Manager) SubmitRating(stationID, rating int) (model.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != model.StateDelivered || m.delivery == nil {
		return model.Station{}, fmt.Errorf("%w: no completed delivery to rate", model.ErrInvalidState)
	}
	if stationID != m.delivery.Station.ID {
		return model.Station{}, fmt.Errorf("%w: station %d did not deliver", model.ErrInvalidRating, stationID)
	}
	st, err := m.inv.ApplyRating(stationID, rating)
	if err != nil {
		return model.Station{}, err
	}
	now := m.now()
	m.publish(events.RatingEvent{StationID: st.ID, Rating: rating, Average: st.Rating, RatingCount: st.RatingCount, Time: now})
	if rr, ok := m.metrics.(metrics.RatingRecorder); ok {
		if err := rr.RecordRating(metrics.RatingEvent{StationID: st.ID, Rating: rating, Average: st.Rating, Count: st.RatingCount, Time: now}); err != nil {
			m.logger.Errorf("rating metrics error: %v", err)
		}
	}
	m.clearLocked()
	return st, nil
}

// Dismiss clears a completed delivery without rating it.
func (m *Manager) Dismiss() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != model.StateDelivered {
		return fmt.Errorf("%w: no completed delivery to dismiss", model.ErrInvalidState)
	}
	m.clearLocked()
	return nil
}

func (m *Manager) clearLocked() {
	m.selected = nil
	m.transitionLocked(model.StateIdle)
	m.delivery = nil
	etaMinutes.Set(0)
}

// Close stops tracking, abandons any pending confirmation and waits for
// background work to finish. A pending reservation is released.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	if m.pending != nil {
		m.pending.cancel()
		m.pending = nil
		m.releaseLocked()
	}
	m.stopTrackingLocked()
	m.cancel()
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}

func (m *Manager) stopTrackingLocked() {
	if m.tracker != nil {
		m.tracker.Stop()
		m.tracker = nil
	}
}

func (m *Manager) releaseLocked() {
	r := m.reserved
	if r == nil {
		return
	}
	m.reserved = nil
	if err := m.inv.Release(r.stationID, r.battery); err != nil {
		m.logger.Errorf("release %s at station %d: %v", r.battery, r.stationID, err)
	}
}

func (m *Manager) transitionLocked(to model.DeliveryState) {
	from := m.state
	m.state = to
	stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
	ev := events.StateEvent{From: from, To: to, Time: m.now()}
	switch {
	case m.delivery != nil:
		ev.StationID, ev.DeliveryID = m.delivery.Station.ID, m.delivery.ID
	case m.pending != nil:
		ev.StationID, ev.DeliveryID = m.pending.station.ID, m.pending.id
	case m.selected != nil:
		ev.StationID = m.selected.ID
	}
	m.publish(ev)
	m.logger.Debugw("state transition", map[string]any{"from": from.String(), "to": to.String(), "station_id": ev.StationID})
}

func (m *Manager) publish(ev events.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}

func (m *Manager) record(ev metrics.DeliveryEvent) {
	if err := m.metrics.RecordDelivery(ev); err != nil {
		m.logger.Errorf("delivery metrics error: %v", err)
	}
}

func newDeliveryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsUserError reports whether err is one of the recoverable lifecycle errors
// that should be surfaced to the user rather than logged as a fault.
func IsUserError(err error) bool {
	for _, target := range []error{
		model.ErrLocationUnavailable,
		model.ErrNoStationFound,
		model.ErrInvalidRequest,
		model.ErrInvalidRating,
		model.ErrInvalidState,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
