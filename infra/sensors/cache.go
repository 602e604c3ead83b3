package sensors

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
	coresensors "github.com/muhirwa45/E-moto/core/sensors"
)

const (
	locationKey = "location"
	headingKey  = "heading"
)

// DefaultMaxAge is how long a fix stays valid without a new reading.
const DefaultMaxAge = 30 * time.Second

// FixCache holds the latest location and heading readings of one device.
// Readings expire after maxAge so a silent device stops being tracked.
type FixCache struct {
	c *cache.Cache
	// located is set once the first location fix arrived.
	located atomic.Bool
}

// NewFixCache creates a cache whose readings expire after maxAge.
func NewFixCache(maxAge time.Duration) *FixCache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &FixCache{c: cache.New(maxAge, 2*maxAge)}
}

// SetLocation stores a new position fix.
func (f *FixCache) SetLocation(c geo.Coordinates) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f.c.SetDefault(locationKey, c)
	f.located.Store(true)
	return nil
}

// SetHeading stores a new orientation reading.
func (f *FixCache) SetHeading(h model.Heading) {
	f.c.SetDefault(headingKey, h)
}

// Location returns the latest fix. Before the first fix it reports
// ErrLocating; once fixes stop arriving it reports the location as
// unavailable.
func (f *FixCache) Location() (geo.Coordinates, error) {
	if v, ok := f.c.Get(locationKey); ok {
		return v.(geo.Coordinates), nil
	}
	if !f.located.Load() {
		return geo.Coordinates{}, coresensors.ErrLocating
	}
	return geo.Coordinates{}, fmt.Errorf("%w: fix expired", model.ErrLocationUnavailable)
}

// Heading returns the latest orientation, or ErrHeadingNotSupported when no
// reading is current.
func (f *FixCache) Heading() (model.Heading, error) {
	if v, ok := f.c.Get(headingKey); ok {
		return v.(model.Heading), nil
	}
	return model.Heading{}, coresensors.ErrHeadingNotSupported
}

// Flush drops all readings.
func (f *FixCache) Flush() {
	f.c.Flush()
	f.located.Store(false)
}

var (
	_ coresensors.LocationProvider = (*FixCache)(nil)
	_ coresensors.HeadingProvider  = (*FixCache)(nil)
)
