// Package sensors provides the process-side implementations of the device
// ports: fixed readings for demos, an expiring cache fed by the MQTT sensor
// feed and a stub camera.
package sensors

import (
	"context"
	"fmt"
	"sync"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
	coresensors "github.com/muhirwa45/E-moto/core/sensors"
)

// StaticLocation always reports the same position.
type StaticLocation geo.Coordinates

func (s StaticLocation) Location() (geo.Coordinates, error) { return geo.Coordinates(s), nil }

// StaticHeading always reports the same orientation.
type StaticHeading model.Heading

func (s StaticHeading) Heading() (model.Heading, error) { return model.Heading(s), nil }

// StubCamera hands out streams without touching any hardware and counts how
// many are open.
type StubCamera struct {
	// Err, when set, is returned by Open.
	Err error

	mu   sync.Mutex
	open int
}

// Open returns a new stream or the configured error.
func (c *StubCamera) Open(ctx context.Context) (coresensors.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCameraUnavailable, err)
	}
	if c.Err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCameraUnavailable, c.Err)
	}
	c.mu.Lock()
	c.open++
	c.mu.Unlock()
	return &stubStream{cam: c}, nil
}

// OpenStreams returns the number of streams not yet closed.
func (c *StubCamera) OpenStreams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

type stubStream struct {
	cam  *StubCamera
	once sync.Once
}

func (s *stubStream) Close() error {
	s.once.Do(func() {
		s.cam.mu.Lock()
		s.cam.open--
		s.cam.mu.Unlock()
	})
	return nil
}

var (
	_ coresensors.LocationProvider = StaticLocation{}
	_ coresensors.HeadingProvider  = StaticHeading{}
	_ coresensors.CameraProvider   = (*StubCamera)(nil)
)
