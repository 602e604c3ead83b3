// Package scenarios replays scripted delivery sessions against the real
// lifecycle manager on a manual clock.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/muhirwa45/E-moto/core/eta"
	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
)

// Actions understood by the runner.
const (
	ActionSelect   = "select"
	ActionRecenter = "recenter"
	ActionRequest  = "request"
	ActionSOS      = "sos"
	ActionAwait    = "await"
	ActionAdvance  = "advance"
	ActionMove     = "move"
	ActionCancel   = "cancel"
	ActionRate     = "rate"
	ActionDismiss  = "dismiss"
)

// Step is one user intent or clock movement.
type Step struct {
	Action  string  `yaml:"action"`
	Station int     `yaml:"station,omitempty"`
	Battery string  `yaml:"battery,omitempty"`
	Minutes float64 `yaml:"minutes,omitempty"`
	Rating  int     `yaml:"rating,omitempty"`
	Lat     float64 `yaml:"lat,omitempty"`
	Lng     float64 `yaml:"lng,omitempty"`
	// Error names the expected error kind, e.g. invalid_state.
	Error string `yaml:"error,omitempty"`
	// State is the lifecycle state expected after the step.
	State string `yaml:"state,omitempty"`
}

// Expected is checked once every step ran.
type Expected struct {
	State string `yaml:"state"`
	// Stock maps "<station>/<battery>" to the remaining quantity.
	Stock       map[string]int `yaml:"stock,omitempty"`
	RatingCount map[int]int    `yaml:"rating_count,omitempty"`
	// Outcomes counts delivery events by outcome label.
	Outcomes map[string]int `yaml:"outcomes,omitempty"`
	// Orders is the number of orders sent to stations. Unset skips the check.
	Orders *int `yaml:"orders,omitempty"`
}

// Scenario is a scripted session.
type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	User        *geo.Coordinates `yaml:"user,omitempty"`
	ETA         *eta.Model       `yaml:"eta,omitempty"`
	// RejectStations decline every order, FailStations can't be reached and
	// SilentStations never answer.
	RejectStations []int    `yaml:"reject_stations,omitempty"`
	FailStations   []int    `yaml:"fail_stations,omitempty"`
	SilentStations []int    `yaml:"silent_stations,omitempty"`
	Steps          []Step   `yaml:"steps"`
	Expected       Expected `yaml:"expected"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks the step actions and error kinds.
func (sc Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case ActionSelect, ActionRecenter, ActionRequest, ActionSOS, ActionAwait,
			ActionAdvance, ActionMove, ActionCancel, ActionRate, ActionDismiss:
		default:
			return fmt.Errorf("step %d: unknown action %q", i, st.Action)
		}
		if st.Error != "" {
			if _, ok := errorKinds[st.Error]; !ok {
				return fmt.Errorf("step %d: unknown error kind %q", i, st.Error)
			}
		}
	}
	return nil
}

var errorKinds = map[string]error{
	"location_unavailable": model.ErrLocationUnavailable,
	"no_station_found":     model.ErrNoStationFound,
	"invalid_request":      model.ErrInvalidRequest,
	"invalid_rating":       model.ErrInvalidRating,
	"invalid_state":        model.ErrInvalidState,
}
