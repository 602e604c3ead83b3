// Package ar projects stations onto the camera view from the user's position
// and compass heading.
package ar

import (
	"fmt"
	"math"
	"sort"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
)

const (
	// DefaultHorizontalFOV is a typical phone camera's horizontal field of
	// view in degrees.
	DefaultHorizontalFOV = 65.0
	// DefaultMaxVisibleDistanceKm caps the distance used to fade markers.
	DefaultMaxVisibleDistanceKm = 5.0
)

// Projector maps bearings to horizontal screen positions.
type Projector struct {
	HorizontalFOV        float64 `json:"horizontal_fov"`
	MaxVisibleDistanceKm float64 `json:"max_visible_distance_km"`
}

// Default returns a projector with the default camera parameters.
func Default() Projector {
	return Projector{HorizontalFOV: DefaultHorizontalFOV, MaxVisibleDistanceKm: DefaultMaxVisibleDistanceKm}
}

// SetDefaults fills unset parameters.
func (p *Projector) SetDefaults() {
	if p.HorizontalFOV == 0 {
		p.HorizontalFOV = DefaultHorizontalFOV
	}
	if p.MaxVisibleDistanceKm == 0 {
		p.MaxVisibleDistanceKm = DefaultMaxVisibleDistanceKm
	}
}

// Validate checks the camera parameters.
func (p Projector) Validate() error {
	if p.HorizontalFOV <= 0 || p.HorizontalFOV > 360 {
		return fmt.Errorf("ar: horizontal_fov must be in (0,360], got %f", p.HorizontalFOV)
	}
	if p.MaxVisibleDistanceKm <= 0 {
		return fmt.Errorf("ar: max_visible_distance_km must be positive")
	}
	return nil
}

// Marker is a station placed on the camera view.
type Marker struct {
	StationID int    `json:"stationId"`
	Name      string `json:"name"`
	// DistanceKm is rounded to one decimal for the label.
	DistanceKm float64 `json:"distanceKm"`
	Bearing    float64 `json:"bearing"`
	AngleDiff  float64 `json:"angleDiff"`
	// ScreenX is the horizontal offset from the centre in percent of the
	// view width, in [-50,50].
	ScreenX float64 `json:"screenX"`
	Scale   float64 `json:"scale"`
	Opacity float64 `json:"opacity"`
}

// Project returns the markers for stations inside the field of view, nearest
// first. An uncalibrated heading yields model.ErrHeadingUnavailable.
func (p Projector) Project(user geo.Coordinates, h model.Heading, stations []model.Station) ([]Marker, error) {
	if !h.Calibrated {
		return nil, fmt.Errorf("%w: compass not calibrated", model.ErrHeadingUnavailable)
	}
	half := p.HorizontalFOV / 2
	var out []Marker
	for _, s := range stations {
		bearing := geo.Bearing(user, s.Coords)
		diff := geo.NormalizeAngle(bearing - h.Alpha)
		if math.Abs(diff) > half {
			continue
		}
		dist := geo.Distance(user, s.Coords)
		ratio := math.Min(dist, p.MaxVisibleDistanceKm) / p.MaxVisibleDistanceKm
		out = append(out, Marker{
			StationID:  s.ID,
			Name:       s.Name,
			DistanceKm: math.Round(dist*10) / 10,
			Bearing:    bearing,
			AngleDiff:  diff,
			ScreenX:    diff / half * 50,
			Scale:      1.2 - ratio*0.5,
			Opacity:    1 - ratio*0.4,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out, nil
}
