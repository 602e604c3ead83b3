package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/geo"
)

func sampleStation() Station {
	return Station{
		ID:     1,
		Name:   "Remera Battery Hub",
		Coords: geo.Coordinates{Lat: -1.9241, Lng: 30.1119},
		Status: StatusAvailable,
		Batteries: []Battery{
			{Type: Battery60V, Quantity: 8, Price: 1500},
			{Type: Battery72V, Quantity: 0, Price: 1800},
		},
		Rating:      4.8,
		RatingCount: 182,
	}
}

func TestStationValidate(t *testing.T) {
	require.NoError(t, sampleStation().Validate())

	bad := []func(*Station){
		func(s *Station) { s.Name = "" },
		func(s *Station) { s.Coords.Lat = 120 },
		func(s *Station) { s.Status = "Closed" },
		func(s *Station) { s.Rating = 5.5 },
		func(s *Station) { s.RatingCount = -1 },
		func(s *Station) { s.Batteries[0].Quantity = -1 },
		func(s *Station) { s.Batteries[1].Type = Battery60V },
		func(s *Station) { s.Batteries[0].Type = "48V" },
	}
	for i, mutate := range bad {
		s := sampleStation().Clone()
		mutate(&s)
		if err := s.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestStationStock(t *testing.T) {
	s := sampleStation()
	assert.True(t, s.InStock())
	assert.True(t, s.InStock(Battery60V))
	assert.False(t, s.InStock(Battery72V))
	assert.True(t, s.InStock(Battery72V, Battery60V))
	assert.Len(t, s.Stocked(), 1)

	b, ok := s.Battery(Battery72V)
	assert.True(t, ok)
	assert.Equal(t, 1800.0, b.Price)
}

func TestStationCloneIsDeep(t *testing.T) {
	s := sampleStation()
	c := s.Clone()
	c.Batteries[0].Quantity = 0
	assert.Equal(t, 8, s.Batteries[0].Quantity)
}

func TestParseBatteryType(t *testing.T) {
	bt, err := ParseBatteryType(" 72v ")
	require.NoError(t, err)
	assert.Equal(t, Battery72V, bt)
	_, err = ParseBatteryType("48V")
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestDeliveryStateString(t *testing.T) {
	assert.Equal(t, "delivering", StateDelivering.String())
	assert.Equal(t, "unknown", DeliveryState(42).String())
	assert.True(t, StateRequesting.Active())
	assert.False(t, StateStationSelected.Active())
}
