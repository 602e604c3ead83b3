package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/muhirwa45/E-moto/api"
	"github.com/muhirwa45/E-moto/config"
	"github.com/muhirwa45/E-moto/core/ar"
	"github.com/muhirwa45/E-moto/core/delivery"
	coremetrics "github.com/muhirwa45/E-moto/core/metrics"
	"github.com/muhirwa45/E-moto/core/model"
	coremqtt "github.com/muhirwa45/E-moto/core/mqtt"
	coresensors "github.com/muhirwa45/E-moto/core/sensors"
	"github.com/muhirwa45/E-moto/core/station"
	"github.com/muhirwa45/E-moto/infra/logger"
	"github.com/muhirwa45/E-moto/infra/metrics"
	"github.com/muhirwa45/E-moto/infra/mqtt"
	"github.com/muhirwa45/E-moto/infra/sensors"
	"github.com/muhirwa45/E-moto/internal/eventbus"
)

// Service wires the station directory, the delivery manager and the AR view
// to the configured sensors, confirmer and metrics sinks.
type Service struct {
	Stations *station.Directory
	Manager  *delivery.Manager
	AR       *ar.View
	Location coresensors.LocationProvider
	Heading  coresensors.HeadingProvider

	cfg    *config.Config
	bus    eventbus.EventBus
	sink   coremetrics.MetricsSink
	client *mqtt.PahoClient
	log    logger.Logger
	once   sync.Once
}

// New creates a Service from the configuration. It connects to the MQTT
// broker when a component needs it.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	logg := logger.New("service")
	dir, err := loadStations(cfg.Stations)
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}

	svc := &Service{Stations: dir, cfg: cfg, log: logg}
	if cfg.UsesMQTT() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
	}
	if err := svc.initSensors(); err != nil {
		svc.closeClient()
		return nil, err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		svc.closeClient()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.sink = sink
	svc.bus = eventbus.New()

	manager, err := delivery.NewManager(
		dir,
		svc.Location,
		svc.confirmer(),
		cfg.Delivery,
		sink,
		svc.bus,
		logger.New("delivery"),
	)
	if err != nil {
		svc.closeClient()
		return nil, fmt.Errorf("delivery manager: %w", err)
	}
	svc.Manager = manager
	svc.AR = ar.NewView(cfg.AR, &sensors.StubCamera{}, svc.Heading, logger.New("ar"))
	return svc, nil
}

func loadStations(cfg config.StationsConfig) (*station.Directory, error) {
	if cfg.File == "" {
		return station.NewKigaliDirectory(), nil
	}
	return station.LoadFile(cfg.File)
}

func (s *Service) initSensors() error {
	loc := s.cfg.Location
	switch loc.Mode {
	case config.LocationMQTT:
		cache := sensors.NewFixCache(loc.MaxAge())
		feed, err := mqtt.NewSensorFeed(loc.DeviceID, cache, logger.New("sensor_feed"))
		if err != nil {
			return err
		}
		if err := feed.Start(s.client); err != nil {
			return fmt.Errorf("sensor feed: %w", err)
		}
		s.Location, s.Heading = cache, cache
	default:
		s.Location = sensors.StaticLocation(*loc.Static)
		h := model.Heading{}
		if loc.Heading != nil {
			h = model.Heading{Alpha: *loc.Heading, Calibrated: true}
		}
		s.Heading = sensors.StaticHeading(h)
	}
	return nil
}

func (s *Service) confirmer() delivery.Confirmer {
	switch s.cfg.Delivery.ConfirmMode {
	case delivery.ConfirmInstant:
		return nil
	case delivery.ConfirmMQTT:
		return coremqtt.Confirmer{Client: s.client, Timeout: s.cfg.Delivery.AckTimeout()}
	default:
		return delivery.DelayConfirmer{Delay: s.cfg.Delivery.ConfirmDelay()}
	}
}

// Handler returns the HTTP adapter for this service.
func (s *Service) Handler() http.Handler {
	return api.NewRouter(api.Deps{
		Stations: s.Stations,
		Manager:  s.Manager,
		AR:       s.AR,
		Location: s.Location,
		Logger:   logger.New("api"),
	}, s.cfg.Server.RateLimit, s.cfg.Server.Burst)
}

// Bus exposes the delivery event bus to observers such as the CLI.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Run starts the observers and servers and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.client != nil {
		mqtt.StartTrackingPublisher(ctx, s.bus, s.client, logger.New("tracking_publisher"))
	}
	errCh := make(chan error, 2)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
				errCh <- err
			}
		}()
	}
	if addr := s.cfg.Server.Address; addr != "" {
		go func() {
			if err := s.serveHTTP(ctx, addr); err != nil {
				s.log.Errorf("http server: %v", err)
				errCh <- err
			}
		}()
	}
	s.log.Infof("service started with %d stations, confirm mode %s", s.Stations.Len(), s.cfg.Delivery.ConfirmMode)
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Service) serveHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http server shutdown: %v", err)
		}
	}()
	s.log.Infof("serving api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service. It is safe to call more than
// once.
func (s *Service) Close() error {
	var err error
	s.once.Do(func() {
		if s.AR != nil {
			err = errors.Join(err, s.AR.Close())
		}
		if s.Manager != nil {
			err = errors.Join(err, s.Manager.Close())
		}
		if c, ok := s.sink.(interface{ Close() }); ok {
			c.Close()
		}
		if s.bus != nil {
			s.bus.Close()
		}
		s.closeClient()
	})
	return err
}

func (s *Service) closeClient() {
	if s.client != nil {
		s.client.Disconnect()
	}
}
