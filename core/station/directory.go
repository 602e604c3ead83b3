// Package station holds the in-memory directory of swap stations and the
// inventory and rating operations applied to it.
package station

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
)

// Directory is a thread-safe, ordered set of stations. Reads return copies;
// all writes are serialised by the directory lock.
type Directory struct {
	mu       sync.RWMutex
	stations []model.Station
	index    map[int]int
}

// NewDirectory validates the stations and keeps them in the given order.
func NewDirectory(stations []model.Station) (*Directory, error) {
	d := &Directory{index: make(map[int]int, len(stations))}
	for _, s := range stations {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := d.index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate station id %d", s.ID)
		}
		d.index[s.ID] = len(d.stations)
		d.stations = append(d.stations, s.Clone())
	}
	return d, nil
}

// Len returns the number of stations.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.stations)
}

// List returns all stations in directory order.
func (d *Directory) List() []model.Station {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.Station, len(d.stations))
	for i, s := range d.stations {
		out[i] = s.Clone()
	}
	return out
}

// Get returns the station with the given id.
func (d *Directory) Get(id int) (model.Station, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i, ok := d.index[id]
	if !ok {
		return model.Station{}, fmt.Errorf("station %d not found", id)
	}
	return d.stations[i].Clone(), nil
}

// Search returns the stations whose name contains query, ignoring case.
// Queries of one character or less match nothing.
func (d *Directory) Search(query string) []model.Station {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) <= 1 {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []model.Station
	for _, s := range d.stations {
		if strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s.Clone())
		}
	}
	return out
}

// FindNearestAvailable returns the closest Available station with stock.
// When types are given the station must stock at least one of them. Ties
// resolve to the earlier station in directory order.
func (d *Directory) FindNearestAvailable(from *geo.Coordinates, types ...model.BatteryType) (model.Station, error) {
	if from == nil {
		return model.Station{}, model.ErrLocationUnavailable
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	best := -1
	bestDist := math.Inf(1)
	for i, s := range d.stations {
		if s.Status != model.StatusAvailable || !s.InStock(types...) {
			continue
		}
		if dist := geo.Distance(*from, s.Coords); dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return model.Station{}, model.ErrNoStationFound
	}
	return d.stations[best].Clone(), nil
}

// ApplyRating folds a 1-5 star rating into the station's running average.
func (d *Directory) ApplyRating(id, rating int) (model.Station, error) {
	if rating < 1 || rating > 5 {
		return model.Station{}, fmt.Errorf("%w: %d is outside 1-5", model.ErrInvalidRating, rating)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[id]
	if !ok {
		return model.Station{}, fmt.Errorf("%w: station %d not found", model.ErrInvalidRating, id)
	}
	s := &d.stations[i]
	avg := stat.Mean(
		[]float64{s.Rating, float64(rating)},
		[]float64{float64(s.RatingCount), 1},
	)
	s.Rating = math.Min(5, math.Max(0, avg))
	s.RatingCount++
	return s.Clone(), nil
}

// Reserve takes one battery of type t out of the station's inventory. The
// check and the decrement happen atomically.
func (d *Directory) Reserve(id int, t model.BatteryType) (model.Station, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[id]
	if !ok {
		return model.Station{}, fmt.Errorf("%w: station %d not found", model.ErrInvalidRequest, id)
	}
	s := &d.stations[i]
	if s.Status == model.StatusOffline {
		return model.Station{}, fmt.Errorf("%w: station %d is offline", model.ErrInvalidRequest, id)
	}
	for j := range s.Batteries {
		b := &s.Batteries[j]
		if b.Type != t {
			continue
		}
		if b.Quantity <= 0 {
			return model.Station{}, fmt.Errorf("%w: %s out of stock at station %d", model.ErrInvalidRequest, t, id)
		}
		b.Quantity--
		return s.Clone(), nil
	}
	return model.Station{}, fmt.Errorf("%w: station %d does not carry %s", model.ErrInvalidRequest, id, t)
}

// Release puts a previously reserved battery back into inventory.
func (d *Directory) Release(id int, t model.BatteryType) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[id]
	if !ok {
		return fmt.Errorf("station %d not found", id)
	}
	s := &d.stations[i]
	for j := range s.Batteries {
		if s.Batteries[j].Type == t {
			s.Batteries[j].Quantity++
			return nil
		}
	}
	return fmt.Errorf("station %d does not carry %s", id, t)
}

// SetStatus records an operational status change reported for a station.
func (d *Directory) SetStatus(id int, status model.StationStatus) error {
	switch status {
	case model.StatusAvailable, model.StatusBusy, model.StatusOffline:
	default:
		return fmt.Errorf("unknown station status %q", status)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[id]
	if !ok {
		return fmt.Errorf("station %d not found", id)
	}
	d.stations[i].Status = status
	return nil
}

// SetFavorite marks or unmarks a station as a user favourite.
func (d *Directory) SetFavorite(id int, fav bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[id]
	if !ok {
		return fmt.Errorf("station %d not found", id)
	}
	d.stations[i].IsFavorite = fav
	return nil
}
