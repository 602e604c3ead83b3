package eta

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	m := Model{SpeedFactor: 5, PrepMinutes: 2}
	assert.Equal(t, 52.0, m.Estimate(10))
	assert.Equal(t, 2.0, m.Estimate(0))
	assert.Equal(t, 2.0, m.Estimate(-3))
	assert.InDelta(t, 8.25, m.Estimate(1.25), 1e-9)
}

func TestDefaultModel(t *testing.T) {
	m := Default()
	// 2.5 km at 4 min/km plus 3 min prep
	assert.Equal(t, 13.0, m.Estimate(2.5))
	assert.Equal(t, 13*time.Minute, m.Duration(2.5))

	var zero Model
	zero.SetDefaults()
	assert.Equal(t, Default(), zero)
}

func TestDisplay(t *testing.T) {
	cases := map[float64]int{
		0:     0,
		-4:    0,
		0.4:   0,
		0.5:   1,
		4.49:  4,
		52:    52,
		12.51: 13,
	}
	for in, want := range cases {
		if got := Display(in); got != want {
			t.Errorf("Display(%f) = %d, want %d", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.NoError(t, Model{PrepMinutes: 10}.Validate())
	assert.Error(t, Model{SpeedFactor: -1, PrepMinutes: 1}.Validate())
	assert.Error(t, Model{SpeedFactor: 1, PrepMinutes: -1}.Validate())
	assert.Error(t, Model{}.Validate())
}
