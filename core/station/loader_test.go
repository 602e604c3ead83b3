package station

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/model"
)

func TestLoadFileYAML(t *testing.T) {
	d, err := LoadFile(filepath.Join("testdata", "stations.yaml"))
	require.NoError(t, err)
	require.Equal(t, 2, d.Len())

	s, err := d.Get(10)
	require.NoError(t, err)
	assert.Equal(t, "Nyabugogo Depot", s.Name)
	assert.Equal(t, model.StatusAvailable, s.Status)
	assert.Equal(t, 20, s.RatingCount)
	b, ok := s.Battery(model.Battery72V)
	require.True(t, ok)
	assert.Equal(t, 1, b.Quantity)

	van, _ := d.Get(11)
	assert.True(t, van.IsVan)
}

func TestLoadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	data := `{"stations":[{"id":1,"name":"Remera","coords":{"lat":-1.92,"lng":30.11},"status":"Busy","batteries":[{"type":"60V","quantity":2,"price":1500}],"isVan":false,"rating":4,"ratingCount":3}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	d, err := LoadFile(path)
	require.NoError(t, err)
	s, _ := d.Get(1)
	assert.Equal(t, model.StatusBusy, s.Status)
	assert.Equal(t, 3, s.RatingCount)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	_, err := Decode(strings.NewReader("stations: [}"), "yaml")
	assert.Error(t, err)
	_, err = Decode(strings.NewReader(""), "toml")
	assert.Error(t, err)

	stations, err := Decode(strings.NewReader(`stations:
  - id: 1
    name: Bad
    coords: {lat: 0, lng: 0}
    status: Open
`), "yaml")
	require.NoError(t, err)
	_, err = NewDirectory(stations)
	assert.Error(t, err)
}

func TestKigaliFixtureIsValid(t *testing.T) {
	for _, s := range Kigali() {
		assert.NoError(t, s.Validate(), "station %d", s.ID)
	}
}
