package ar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
)

var user = geo.Coordinates{Lat: -1.9441, Lng: 30.0619}

func northOf(c geo.Coordinates, deg float64) geo.Coordinates {
	return geo.Coordinates{Lat: c.Lat + deg, Lng: c.Lng}
}

func TestProjectCentersStationAhead(t *testing.T) {
	st := []model.Station{{ID: 1, Name: "Here", Coords: northOf(user, 1e-7)}}
	m, err := Default().Project(user, model.Heading{Alpha: 0, Calibrated: true}, st)
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.InDelta(t, 0, m[0].ScreenX, 1e-6)
	assert.InDelta(t, 1.2, m[0].Scale, 1e-6)
	assert.InDelta(t, 1.0, m[0].Opacity, 1e-6)
	assert.Equal(t, 0.0, m[0].DistanceKm)
}

func TestProjectHidesStationBehind(t *testing.T) {
	st := []model.Station{{ID: 1, Coords: northOf(user, 0.01)}}
	m, err := Default().Project(user, model.Heading{Alpha: 180, Calibrated: true}, st)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestProjectFadesWithDistance(t *testing.T) {
	p := Default()
	near := northOf(user, 0.009)
	far := northOf(user, 0.2)
	m, err := p.Project(user, model.Heading{Alpha: 0, Calibrated: true}, []model.Station{
		{ID: 2, Name: "far", Coords: far},
		{ID: 1, Name: "near", Coords: near},
	})
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Equal(t, 1, m[0].StationID, "nearest first")
	assert.Equal(t, 1.0, m[0].DistanceKm)
	assert.Greater(t, m[0].Scale, m[1].Scale)
	// beyond the visible distance the fade is capped
	assert.InDelta(t, 0.7, m[1].Scale, 1e-9)
	assert.InDelta(t, 0.6, m[1].Opacity, 1e-9)
}

func TestProjectWrapsAroundNorth(t *testing.T) {
	east := geo.Coordinates{Lat: user.Lat + 0.01, Lng: user.Lng + 0.0017}
	m, err := Default().Project(user, model.Heading{Alpha: 350, Calibrated: true}, []model.Station{{ID: 1, Coords: east}})
	require.NoError(t, err)
	require.Len(t, m, 1)
	want := geo.NormalizeAngle(geo.Bearing(user, east) - 350)
	assert.Greater(t, want, 10.0)
	assert.InDelta(t, want/32.5*50, m[0].ScreenX, 1e-9)
}

func TestProjectFOVEdge(t *testing.T) {
	p := Projector{HorizontalFOV: 90, MaxVisibleDistanceKm: 5}
	st := []model.Station{{ID: 1, Coords: geo.Coordinates{Lat: user.Lat, Lng: user.Lng + 0.01}}}
	b := geo.Bearing(user, st[0].Coords)
	m, err := p.Project(user, model.Heading{Alpha: b - 44.999, Calibrated: true}, st)
	require.NoError(t, err)
	require.Len(t, m, 1)
	assert.InDelta(t, 50, m[0].ScreenX, 1e-2)

	m, err = p.Project(user, model.Heading{Alpha: b - 46, Calibrated: true}, st)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestProjectUncalibrated(t *testing.T) {
	_, err := Default().Project(user, model.Heading{Alpha: 12}, []model.Station{{ID: 1}})
	assert.ErrorIs(t, err, model.ErrHeadingUnavailable)
}

func TestProjectorValidate(t *testing.T) {
	var p Projector
	p.SetDefaults()
	require.NoError(t, p.Validate())
	assert.Equal(t, Default(), p)
	assert.Error(t, Projector{HorizontalFOV: 400, MaxVisibleDistanceKm: 1}.Validate())
	assert.Error(t, Projector{HorizontalFOV: 60, MaxVisibleDistanceKm: -1}.Validate())
}
