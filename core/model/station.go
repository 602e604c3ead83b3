package model

import (
	"fmt"
	"strings"

	"github.com/muhirwa45/E-moto/core/geo"
)

// BatteryType identifies the pack voltage a scooter uses.
type BatteryType string

const (
	Battery60V BatteryType = "60V"
	Battery72V BatteryType = "72V"
)

// ParseBatteryType converts user input such as "72v" into a BatteryType.
func ParseBatteryType(s string) (BatteryType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "60V", "60":
		return Battery60V, nil
	case "72V", "72":
		return Battery72V, nil
	default:
		return "", fmt.Errorf("%w: unknown battery type %q", ErrInvalidRequest, s)
	}
}

func (t BatteryType) Valid() bool { return t == Battery60V || t == Battery72V }

// StationStatus is the operational status of a swap station.
type StationStatus string

const (
	StatusAvailable StationStatus = "Available"
	StatusBusy      StationStatus = "Busy"
	StatusOffline   StationStatus = "Offline"
)

// ParseStationStatus accepts any casing of the three known statuses.
func ParseStationStatus(s string) (StationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "available":
		return StatusAvailable, nil
	case "busy":
		return StatusBusy, nil
	case "offline":
		return StatusOffline, nil
	default:
		return "", fmt.Errorf("unknown station status %q", s)
	}
}

// Battery is one inventory line of a station.
type Battery struct {
	Type     BatteryType `json:"type" yaml:"type"`
	Quantity int         `json:"quantity" yaml:"quantity"`
	// Price in RWF.
	Price float64 `json:"price" yaml:"price"`
}

// Station is a battery swap point, either fixed or a mobile van.
type Station struct {
	ID          int             `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Coords      geo.Coordinates `json:"coords" yaml:"coords"`
	Status      StationStatus   `json:"status" yaml:"status"`
	Batteries   []Battery       `json:"batteries" yaml:"batteries"`
	IsVan       bool            `json:"isVan" yaml:"is_van"`
	IsFavorite  bool            `json:"isFavorite,omitempty" yaml:"is_favorite"`
	Rating      float64         `json:"rating" yaml:"rating"`
	RatingCount int             `json:"ratingCount" yaml:"rating_count"`
}

// Validate checks the station invariants.
func (s Station) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("station %d: name is required", s.ID)
	}
	if err := s.Coords.Validate(); err != nil {
		return fmt.Errorf("station %d: %w", s.ID, err)
	}
	switch s.Status {
	case StatusAvailable, StatusBusy, StatusOffline:
	default:
		return fmt.Errorf("station %d: unknown status %q", s.ID, s.Status)
	}
	if s.Rating < 0 || s.Rating > 5 {
		return fmt.Errorf("station %d: rating %f outside [0,5]", s.ID, s.Rating)
	}
	if s.RatingCount < 0 {
		return fmt.Errorf("station %d: negative rating count", s.ID)
	}
	seen := make(map[BatteryType]bool, len(s.Batteries))
	for _, b := range s.Batteries {
		if !b.Type.Valid() {
			return fmt.Errorf("station %d: unknown battery type %q", s.ID, b.Type)
		}
		if seen[b.Type] {
			return fmt.Errorf("station %d: duplicate battery type %s", s.ID, b.Type)
		}
		seen[b.Type] = true
		if b.Quantity < 0 || b.Price < 0 {
			return fmt.Errorf("station %d: negative quantity or price for %s", s.ID, b.Type)
		}
	}
	return nil
}

// Battery returns the inventory line for t.
func (s Station) Battery(t BatteryType) (Battery, bool) {
	for _, b := range s.Batteries {
		if b.Type == t {
			return b, true
		}
	}
	return Battery{}, false
}

// InStock reports whether at least one battery of any of the given types is
// available. Without types any stock counts.
func (s Station) InStock(types ...BatteryType) bool {
	for _, b := range s.Batteries {
		if b.Quantity <= 0 {
			continue
		}
		if len(types) == 0 {
			return true
		}
		for _, t := range types {
			if b.Type == t {
				return true
			}
		}
	}
	return false
}

// Stocked returns the inventory lines with a positive quantity.
func (s Station) Stocked() []Battery {
	out := make([]Battery, 0, len(s.Batteries))
	for _, b := range s.Batteries {
		if b.Quantity > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Clone returns a deep copy so callers can't mutate shared inventory.
func (s Station) Clone() Station {
	c := s
	if s.Batteries != nil {
		c.Batteries = append([]Battery(nil), s.Batteries...)
	}
	return c
}
