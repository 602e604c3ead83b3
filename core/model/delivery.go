package model

import (
	"time"

	"github.com/muhirwa45/E-moto/core/geo"
)

// DeliveryState is the position of the session in the delivery lifecycle.
type DeliveryState int

const (
	StateIdle DeliveryState = iota
	StateStationSelected
	StateRequesting
	StateDelivering
	StateDelivered
)

// String returns a human-readable representation of the state.
func (s DeliveryState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStationSelected:
		return "station_selected"
	case StateRequesting:
		return "requesting"
	case StateDelivering:
		return "delivering"
	case StateDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// MarshalText lets states appear by name in JSON payloads.
func (s DeliveryState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Active reports whether a delivery is in flight in this state.
func (s DeliveryState) Active() bool {
	return s == StateRequesting || s == StateDelivering || s == StateDelivered
}

// Delivery is an in-flight battery delivery to the user.
type Delivery struct {
	ID string `json:"id"`
	// Station is a snapshot taken when the delivery was confirmed. The
	// directory remains the owner of the live record.
	Station         Station         `json:"station"`
	BatteryType     BatteryType     `json:"batteryType"`
	UserLocation    geo.Coordinates `json:"userLocation"`
	VehicleLocation geo.Coordinates `json:"vehicleLocation"`
	StartTime       time.Time       `json:"startTime"`
	// ETA in fractional minutes.
	ETA      float64 `json:"eta"`
	Progress float64 `json:"progress"`
}

// Clone returns a copy that shares no inventory with d.
func (d Delivery) Clone() Delivery {
	d.Station = d.Station.Clone()
	return d
}

// Heading is a device orientation reading in degrees. Alpha is the compass
// heading; it is only meaningful once Calibrated is true.
type Heading struct {
	Alpha      float64 `json:"alpha"`
	Beta       float64 `json:"beta"`
	Gamma      float64 `json:"gamma"`
	Calibrated bool    `json:"calibrated"`
}
