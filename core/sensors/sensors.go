// Package sensors defines the device-facing ports the core consumes: user
// location, compass heading and the camera used by the AR view.
package sensors

import (
	"context"
	"errors"
	"fmt"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
)

// ErrLocating is returned while the first fix is still being resolved.
var ErrLocating = fmt.Errorf("%w: still locating", model.ErrLocationUnavailable)

// ErrHeadingNotSupported is returned when the device exposes no orientation.
var ErrHeadingNotSupported = fmt.Errorf("%w: device orientation not supported", model.ErrHeadingUnavailable)

// LocationProvider yields the current user position. Errors wrap
// model.ErrLocationUnavailable.
type LocationProvider interface {
	Location() (geo.Coordinates, error)
}

// HeadingProvider yields the current device orientation. An uncalibrated
// reading is returned without error with Calibrated set to false.
type HeadingProvider interface {
	Heading() (model.Heading, error)
}

// Stream is an open camera feed.
type Stream interface {
	Close() error
}

// CameraProvider opens the rear camera.
type CameraProvider interface {
	Open(ctx context.Context) (Stream, error)
}

// LocationFunc adapts a function to LocationProvider.
type LocationFunc func() (geo.Coordinates, error)

func (f LocationFunc) Location() (geo.Coordinates, error) { return f() }

// CurrentLocation returns a pointer to the current fix or nil when the
// provider has none. A nil provider has no fix.
func CurrentLocation(p LocationProvider) (*geo.Coordinates, error) {
	if p == nil {
		return nil, model.ErrLocationUnavailable
	}
	c, err := p.Location()
	if err != nil {
		if !errors.Is(err, model.ErrLocationUnavailable) {
			err = fmt.Errorf("%w: %v", model.ErrLocationUnavailable, err)
		}
		return nil, err
	}
	return &c, nil
}
