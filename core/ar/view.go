package ar

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/logger"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/sensors"
)

// View is one AR session: an open camera stream plus heading-driven markers.
type View struct {
	projector Projector
	camera    sensors.CameraProvider
	heading   sensors.HeadingProvider
	logger    logger.Logger

	mu     sync.Mutex
	stream sensors.Stream
}

// NewView creates an AR session. camera may be nil when no camera is present.
func NewView(p Projector, camera sensors.CameraProvider, heading sensors.HeadingProvider, log logger.Logger) *View {
	p.SetDefaults()
	return &View{projector: p, camera: camera, heading: heading, logger: logger.OrNop(log)}
}

// Open acquires the camera. On failure the error wraps
// model.ErrCameraUnavailable; markers can still be computed.
func (v *View) Open(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stream != nil {
		return nil
	}
	if v.camera == nil {
		return fmt.Errorf("%w: no camera", model.ErrCameraUnavailable)
	}
	s, err := v.camera.Open(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrCameraUnavailable) {
			err = fmt.Errorf("%w: %v", model.ErrCameraUnavailable, err)
		}
		v.logger.Warnf("camera: %v", err)
		return err
	}
	v.stream = s
	return nil
}

// Streaming reports whether the camera stream is open.
func (v *View) Streaming() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stream != nil
}

// Markers reads the current heading and projects the stations.
func (v *View) Markers(user geo.Coordinates, stations []model.Station) ([]Marker, error) {
	if v.heading == nil {
		return nil, sensors.ErrHeadingNotSupported
	}
	h, err := v.heading.Heading()
	if err != nil {
		if !errors.Is(err, model.ErrHeadingUnavailable) {
			err = fmt.Errorf("%w: %v", model.ErrHeadingUnavailable, err)
		}
		return nil, err
	}
	return v.projector.Project(user, h, stations)
}

// Close releases the camera stream. It is safe to call more than once.
func (v *View) Close() error {
	v.mu.Lock()
	s := v.stream
	v.stream = nil
	v.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}
