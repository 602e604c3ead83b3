package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/station"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	stations := station.NewKigaliDirectory().List()
	require.NoError(t, Write(&buf, "csv", stations))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "station_id", rows[0][0])
	lines := 0
	for _, s := range stations {
		if len(s.Batteries) == 0 {
			lines++
		}
		lines += len(s.Batteries)
	}
	assert.Len(t, rows, lines+1)
	assert.Equal(t, "1", rows[1][0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	in := []model.Station{{ID: 7, Name: "Test", Status: model.StatusBusy}}
	require.NoError(t, Write(&buf, "json", in))
	var out []model.Station
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, in[0].Name, out[0].Name)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xml", nil))
}
