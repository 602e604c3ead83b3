package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/config"
	"github.com/muhirwa45/E-moto/core/factory"
	"github.com/muhirwa45/E-moto/core/delivery"
	"github.com/muhirwa45/E-moto/core/model"
)

func instantConfig() *config.Config {
	cfg := config.Default()
	cfg.Delivery.ConfirmMode = delivery.ConfirmInstant
	return cfg
}

func TestNewDefaults(t *testing.T) {
	svc, err := New(instantConfig())
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, 5, svc.Stations.Len())
	assert.Equal(t, model.StateIdle, svc.Manager.State())
	_, err = svc.Heading.Heading()
	require.NoError(t, err)

	d, err := svc.Manager.RequestDelivery(1, model.Battery60V)
	require.NoError(t, err)
	assert.Equal(t, model.StateDelivering, svc.Manager.State())
	assert.Equal(t, 1, d.Station.ID)
}

func TestNewStationsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.yaml")
	data := `stations:
  - id: 7
    name: Kicukiro Hub
    coords: {lat: -1.97, lng: 30.10}
    status: Available
    batteries:
      - {type: 60V, quantity: 4, price: 1500}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg := instantConfig()
	cfg.Stations.File = path
	svc, err := New(cfg)
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, 1, svc.Stations.Len())

	cfg.Stations.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := instantConfig()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "missing"}}
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNewHandBuiltConfig(t *testing.T) {
	svc, err := New(&config.Config{})
	require.NoError(t, err)
	defer svc.Close()
	loc, err := svc.Location.Location()
	require.NoError(t, err)
	assert.NotZero(t, loc.Lat)

	_, err = New(&config.Config{Location: config.LocationConfig{Mode: "gps"}})
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	svc, err := New(instantConfig())
	require.NoError(t, err)
	defer svc.Close()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/stations/nearest?battery=60V", nil)
	svc.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Heading is uncalibrated without a configured value.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/ar/markers", nil)
	svc.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	svc, err := New(instantConfig())
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, svc.Close())
	assert.NoError(t, svc.Close())
}
