// Package geo provides the spherical-earth helpers used for station search,
// delivery tracking and the AR overlay.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Validate checks that the point lies within the valid latitude/longitude ranges.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", c.Lat)
	}
	if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %f out of range", c.Lng)
	}
	return nil
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func toDeg(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the great-circle distance in kilometres between two points
// using the haversine formula.
func Distance(p1, p2 Coordinates) float64 {
	dLat := toRad(p2.Lat - p1.Lat)
	dLng := toRad(p2.Lng - p1.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p1.Lat))*math.Cos(toRad(p2.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push a marginally above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Bearing returns the initial compass bearing from p1 to p2 in degrees,
// normalised to [0, 360). 0 is north and angles grow clockwise.
func Bearing(p1, p2 Coordinates) float64 {
	lat1 := toRad(p1.Lat)
	lat2 := toRad(p2.Lat)
	dLng := toRad(p2.Lng - p1.Lng)
	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Mod(toDeg(math.Atan2(y, x))+360, 360)
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// NormalizeAngle maps an angle in degrees to the interval (-180, 180].
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}

// Interpolate returns the point at fraction t along the straight lat/lng
// segment from a to b. t is clamped to [0, 1].
func Interpolate(a, b Coordinates, t float64) Coordinates {
	t = math.Min(1, math.Max(0, t))
	return Coordinates{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}
