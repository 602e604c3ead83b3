// Package eta estimates delivery times from straight-line distance.
package eta

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultSpeedFactor is the number of minutes needed per kilometre.
	DefaultSpeedFactor = 4.0
	// DefaultPrepMinutes is the fixed dispatch and preparation overhead.
	DefaultPrepMinutes = 3.0
)

// Model is a linear ETA model: minutes = km * SpeedFactor + PrepMinutes.
type Model struct {
	SpeedFactor float64 `json:"speed_factor" yaml:"speed_factor"`
	PrepMinutes float64 `json:"prep_minutes" yaml:"prep_minutes"`
}

// Default returns the model used when nothing is configured.
func Default() Model {
	return Model{SpeedFactor: DefaultSpeedFactor, PrepMinutes: DefaultPrepMinutes}
}

// SetDefaults fills unset parameters. A zero model becomes Default.
func (m *Model) SetDefaults() {
	if m.SpeedFactor == 0 && m.PrepMinutes == 0 {
		*m = Default()
	}
}

// Validate rejects negative parameters.
func (m Model) Validate() error {
	if m.SpeedFactor < 0 || math.IsNaN(m.SpeedFactor) {
		return fmt.Errorf("eta: invalid speed_factor %f", m.SpeedFactor)
	}
	if m.PrepMinutes < 0 || math.IsNaN(m.PrepMinutes) {
		return fmt.Errorf("eta: invalid prep_minutes %f", m.PrepMinutes)
	}
	if m.SpeedFactor == 0 && m.PrepMinutes == 0 {
		return fmt.Errorf("eta: speed_factor and prep_minutes cannot both be zero")
	}
	return nil
}

// Estimate returns the expected minutes to cover distanceKm. The result is
// fractional and never negative.
func (m Model) Estimate(distanceKm float64) float64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	return math.Max(0, distanceKm*m.SpeedFactor+m.PrepMinutes)
}

// Duration is Estimate expressed as a time.Duration.
func (m Model) Duration(distanceKm float64) time.Duration {
	return time.Duration(m.Estimate(distanceKm) * float64(time.Minute))
}

// Display rounds minutes to the nearest whole minute with a floor of zero.
func Display(minutes float64) int {
	if minutes <= 0 || math.IsNaN(minutes) {
		return 0
	}
	return int(math.Round(minutes))
}
