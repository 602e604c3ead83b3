package scenarios

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/delivery"
	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
	coremqtt "github.com/muhirwa45/E-moto/core/mqtt"
	"github.com/muhirwa45/E-moto/core/station"
	"github.com/muhirwa45/E-moto/infra/logger"
	"github.com/muhirwa45/E-moto/infra/metrics"
	"github.com/muhirwa45/E-moto/infra/mqtt"
	"github.com/muhirwa45/E-moto/internal/eventbus"
)

type user struct {
	mu  sync.Mutex
	loc geo.Coordinates
}

func (u *user) Location() (geo.Coordinates, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.loc, nil
}

func (u *user) set(c geo.Coordinates) {
	u.mu.Lock()
	u.loc = c
	u.mu.Unlock()
}

type session struct {
	mgr   *delivery.Manager
	dir   *station.Directory
	sched *delivery.ManualScheduler
	user  *user

	mu  sync.Mutex
	now time.Time
}

func (s *session) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *session) advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
	s.sched.Fire()
}

// RunScenario replays sc against a fresh Kigali directory. Orders go through
// a mock station link confirming over the MQTT confirmer.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	pub := mqtt.NewMockPublisher()
	for _, id := range sc.RejectStations {
		pub.Reject[id] = true
	}
	for _, id := range sc.FailStations {
		pub.FailIDs[id] = true
	}
	for _, id := range sc.SilentStations {
		pub.Silent[id] = true
	}

	u := &user{loc: station.KigaliCenter}
	if sc.User != nil {
		u.loc = *sc.User
	}
	cfg := delivery.Config{ConfirmMode: delivery.ConfirmMQTT}
	if sc.ETA != nil {
		cfg.ETA = *sc.ETA
	}
	s := &session{
		dir:   station.NewKigaliDirectory(),
		sched: &delivery.ManualScheduler{},
		user:  u,
		now:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	bus := eventbus.New()
	defer bus.Close()
	s.mgr, err = delivery.NewManager(s.dir, u, coremqtt.Confirmer{Client: pub, Timeout: 50 * time.Millisecond}, cfg, sink, bus, logger.NopLogger{})
	require.NoError(t, err)
	defer s.mgr.Close()
	s.mgr.SetClock(s.clock)
	s.mgr.SetScheduler(s.sched)

	for i, st := range sc.Steps {
		err := s.apply(t, st)
		if st.Error != "" {
			require.ErrorIsf(t, err, errorKinds[st.Error], "step %d (%s)", i, st.Action)
		} else {
			require.NoErrorf(t, err, "step %d (%s)", i, st.Action)
		}
		if st.State != "" {
			require.Equalf(t, st.State, s.mgr.State().String(), "state after step %d (%s)", i, st.Action)
		}
	}

	exp := sc.Expected
	if exp.State != "" {
		require.Equal(t, exp.State, s.mgr.State().String(), "final state")
	}
	for key, want := range exp.Stock {
		require.Equal(t, want, stock(t, s.dir, key), "stock %s", key)
	}
	for id, want := range exp.RatingCount {
		st, err := s.dir.Get(id)
		require.NoError(t, err)
		require.Equal(t, want, st.RatingCount, "rating count of station %d", id)
	}
	if len(exp.Outcomes) > 0 {
		got := outcomes(t, reg)
		for outcome, want := range exp.Outcomes {
			require.Equal(t, want, got[outcome], "outcome %s", outcome)
		}
	}
	if exp.Orders != nil {
		require.Len(t, pub.Sent(), *exp.Orders, "orders sent to stations")
	}
}

func (s *session) apply(t *testing.T, st Step) error {
	switch st.Action {
	case ActionSelect:
		_, err := s.mgr.SelectStation(st.Station)
		return err
	case ActionRecenter:
		s.mgr.Recenter()
		return nil
	case ActionRequest:
		bt, err := model.ParseBatteryType(st.Battery)
		if err != nil {
			return err
		}
		_, err = s.mgr.RequestDelivery(st.Station, bt)
		return err
	case ActionSOS:
		bt, err := model.ParseBatteryType(st.Battery)
		if err != nil {
			return err
		}
		_, err = s.mgr.RequestSOS(bt)
		return err
	case ActionAwait:
		require.Eventually(t, func() bool {
			return s.mgr.State() != model.StateRequesting
		}, 2*time.Second, 5*time.Millisecond, "confirmation did not settle")
		return nil
	case ActionAdvance:
		s.advance(time.Duration(st.Minutes * float64(time.Minute)))
		return nil
	case ActionMove:
		c := geo.Coordinates{Lat: st.Lat, Lng: st.Lng}
		if err := c.Validate(); err != nil {
			return err
		}
		s.user.set(c)
		return nil
	case ActionCancel:
		return s.mgr.CancelDelivery()
	case ActionRate:
		_, err := s.mgr.SubmitRating(st.Station, st.Rating)
		return err
	case ActionDismiss:
		return s.mgr.Dismiss()
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
}

func stock(t *testing.T, dir *station.Directory, key string) int {
	t.Helper()
	idStr, btStr, ok := strings.Cut(key, "/")
	require.True(t, ok, "stock key %q", key)
	id, err := strconv.Atoi(idStr)
	require.NoError(t, err)
	bt, err := model.ParseBatteryType(btStr)
	require.NoError(t, err)
	st, err := dir.Get(id)
	require.NoError(t, err)
	b, found := st.Battery(bt)
	require.True(t, found, "station %d has no %s line", id, bt)
	return b.Quantity
}

func outcomes(t *testing.T, g prometheus.Gatherer) map[string]int {
	t.Helper()
	mfs, err := g.Gather()
	require.NoError(t, err)
	out := make(map[string]int)
	for _, mf := range mfs {
		if mf.GetName() != "delivery_events_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "outcome" {
					out[lp.GetValue()] += int(m.GetCounter().GetValue())
				}
			}
		}
	}
	return out
}
