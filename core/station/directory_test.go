package station

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
)

func TestNewDirectoryRejectsDuplicates(t *testing.T) {
	st := Kigali()
	st[1].ID = st[0].ID
	if _, err := NewDirectory(st); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestListKeepsOrderAndCopies(t *testing.T) {
	d := NewKigaliDirectory()
	list := d.List()
	require.Len(t, list, 5)
	for i, s := range list {
		assert.Equal(t, i+1, s.ID)
	}
	list[0].Batteries[0].Quantity = 0
	s, err := d.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Batteries[0].Quantity)
}

func TestFindNearestAvailable(t *testing.T) {
	d := NewKigaliDirectory()
	center := KigaliCenter

	// Kacyiru is closer but busy, Gikondo is offline.
	s, err := d.FindNearestAvailable(&center)
	require.NoError(t, err)
	assert.Equal(t, 3, s.ID)

	_, err = d.FindNearestAvailable(nil)
	assert.True(t, errors.Is(err, model.ErrLocationUnavailable))
}

func TestFindNearestSkipsEmptyStock(t *testing.T) {
	st := Kigali()
	st[2].Batteries[0].Quantity = 0
	d, err := NewDirectory(st)
	require.NoError(t, err)
	center := KigaliCenter

	// Nyamirambo still has 72V packs.
	s, err := d.FindNearestAvailable(&center)
	require.NoError(t, err)
	assert.Equal(t, 3, s.ID)

	s, err = d.FindNearestAvailable(&center, model.Battery60V)
	require.NoError(t, err)
	assert.Equal(t, 1, s.ID)
}

func TestFindNearestNoneQualifies(t *testing.T) {
	d, err := NewDirectory([]model.Station{Kigali()[3], Kigali()[4]})
	require.NoError(t, err)
	center := KigaliCenter
	_, err = d.FindNearestAvailable(&center)
	assert.True(t, errors.Is(err, model.ErrNoStationFound))
}

func TestFindNearestTieUsesDirectoryOrder(t *testing.T) {
	a := Kigali()[0]
	b := Kigali()[1]
	b.Coords = a.Coords
	d, err := NewDirectory([]model.Station{b, a})
	require.NoError(t, err)
	from := geo.Coordinates{Lat: 0, Lng: 0}
	s, err := d.FindNearestAvailable(&from)
	require.NoError(t, err)
	assert.Equal(t, b.ID, s.ID)
}

func TestApplyRating(t *testing.T) {
	st := Kigali()[0]
	st.Rating, st.RatingCount = 4.0, 10
	d, err := NewDirectory([]model.Station{st})
	require.NoError(t, err)

	got, err := d.ApplyRating(st.ID, 5)
	require.NoError(t, err)
	assert.InDelta(t, 45.0/11.0, got.Rating, 1e-9)
	assert.Equal(t, 11, got.RatingCount)

	_, err = d.ApplyRating(st.ID, 0)
	assert.True(t, errors.Is(err, model.ErrInvalidRating))
	_, err = d.ApplyRating(st.ID, 6)
	assert.True(t, errors.Is(err, model.ErrInvalidRating))
	_, err = d.ApplyRating(99, 3)
	assert.True(t, errors.Is(err, model.ErrInvalidRating))

	after, _ := d.Get(st.ID)
	assert.Equal(t, 11, after.RatingCount)
}

func TestApplyRatingFirstRating(t *testing.T) {
	st := Kigali()[0]
	st.Rating, st.RatingCount = 0, 0
	d, err := NewDirectory([]model.Station{st})
	require.NoError(t, err)
	got, err := d.ApplyRating(st.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Rating)
	assert.Equal(t, 1, got.RatingCount)
}

func TestReserveAndRelease(t *testing.T) {
	d := NewKigaliDirectory()
	s, err := d.Reserve(2, model.Battery72V)
	require.NoError(t, err)
	b, _ := s.Battery(model.Battery72V)
	assert.Equal(t, 2, b.Quantity)

	require.NoError(t, d.Release(2, model.Battery72V))
	s, _ = d.Get(2)
	b, _ = s.Battery(model.Battery72V)
	assert.Equal(t, 3, b.Quantity)
}

func TestReserveRejects(t *testing.T) {
	d := NewKigaliDirectory()
	cases := []struct {
		name string
		id   int
		bt   model.BatteryType
	}{
		{"unknown station", 42, model.Battery60V},
		{"offline", 5, model.Battery60V},
		{"out of stock", 4, model.Battery72V},
		{"not carried", 5, model.Battery72V},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := d.Reserve(c.id, c.bt)
			assert.True(t, errors.Is(err, model.ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestReserveIsAtomic(t *testing.T) {
	d := NewKigaliDirectory()
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Reserve(2, model.Battery72V); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, ok)
	s, _ := d.Get(2)
	b, _ := s.Battery(model.Battery72V)
	assert.Equal(t, 0, b.Quantity)
}

func TestSearch(t *testing.T) {
	d := NewKigaliDirectory()
	assert.Empty(t, d.Search("k"))
	assert.Empty(t, d.Search(" "))
	res := d.Search("VAN")
	require.Len(t, res, 1)
	assert.Equal(t, 3, res[0].ID)
	for _, s := range d.Search("ki") {
		assert.True(t, strings.Contains(strings.ToLower(s.Name), "ki"))
	}
	assert.Empty(t, d.Search("zzz"))
}

func TestSetStatusAndFavorite(t *testing.T) {
	d := NewKigaliDirectory()
	require.NoError(t, d.SetStatus(4, model.StatusAvailable))
	center := KigaliCenter
	s, err := d.FindNearestAvailable(&center)
	require.NoError(t, err)
	assert.Equal(t, 4, s.ID)

	assert.Error(t, d.SetStatus(4, "Closed"))
	assert.Error(t, d.SetStatus(99, model.StatusBusy))

	require.NoError(t, d.SetFavorite(1, true))
	s, _ = d.Get(1)
	assert.True(t, s.IsFavorite)
}
