// Package presentation turns domain state into visual descriptors for map
// renderers. Every function here is pure.
package presentation

import "github.com/muhirwa45/E-moto/core/model"

// Marker colors by station status.
const (
	ColorAvailable = "#10B981"
	ColorBusy      = "#F59E0B"
	ColorOffline   = "#6B7280"
)

// SelectedScale and SelectedZIndex lift the selected station above the others.
const (
	SelectedScale  = 1.25
	SelectedZIndex = 1000
)

// Glyph identifies the icon drawn inside a marker.
type Glyph string

const (
	GlyphVan     Glyph = "van"
	GlyphScooter Glyph = "scooter"
)

// StationMarker describes how a station is drawn on the map.
type StationMarker struct {
	StationID int     `json:"stationId"`
	Label     string  `json:"label"`
	Color     string  `json:"color"`
	Glyph     Glyph   `json:"glyph"`
	Scale     float64 `json:"scale"`
	// ZIndex is 0 for the default stacking order.
	ZIndex      int  `json:"zIndex"`
	Highlighted bool `json:"highlighted"`
	Favorite    bool `json:"favorite"`
}

// VehicleMarker describes the moving delivery vehicle.
type VehicleMarker struct {
	Glyph Glyph  `json:"glyph"`
	Color string `json:"color"`
}

// StatusColor maps a station status to its marker color. Unknown statuses
// render as offline.
func StatusColor(s model.StationStatus) string {
	switch s {
	case model.StatusAvailable:
		return ColorAvailable
	case model.StatusBusy:
		return ColorBusy
	default:
		return ColorOffline
	}
}

func glyph(isVan bool) Glyph {
	if isVan {
		return GlyphVan
	}
	return GlyphScooter
}

// DescribeStation returns the marker for s.
func DescribeStation(s model.Station, selected bool) StationMarker {
	m := StationMarker{
		StationID:   s.ID,
		Label:       s.Name,
		Color:       StatusColor(s.Status),
		Glyph:       glyph(s.IsVan),
		Scale:       1,
		Highlighted: selected,
		Favorite:    s.IsFavorite,
	}
	if selected {
		m.Scale = SelectedScale
		m.ZIndex = SelectedZIndex
	}
	return m
}

// DescribeVehicle returns the marker for the delivery vehicle.
func DescribeVehicle(isVan bool) VehicleMarker {
	return VehicleMarker{Glyph: glyph(isVan), Color: "#2563EB"}
}

// DescribeStations describes a whole directory listing.
func DescribeStations(stations []model.Station, selectedID int) []StationMarker {
	out := make([]StationMarker, len(stations))
	for i, s := range stations {
		out[i] = DescribeStation(s, s.ID == selectedID)
	}
	return out
}
