package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muhirwa45/E-moto/core/ar"
	"github.com/muhirwa45/E-moto/core/delivery"
	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/logger"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/sensors"
)

// StationStore is the read side of the station directory plus favorites.
type StationStore interface {
	List() []model.Station
	Search(query string) []model.Station
	Get(id int) (model.Station, error)
	FindNearestAvailable(from *geo.Coordinates, types ...model.BatteryType) (model.Station, error)
	SetFavorite(id int, fav bool) error
}

// Deps holds the components the handlers drive.
type Deps struct {
	Stations StationStore
	Manager  *delivery.Manager
	AR       *ar.View
	Location sensors.LocationProvider
	Logger   logger.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	stations StationStore
	manager  *delivery.Manager
	ar       *ar.View
	location sensors.LocationProvider
	logger   logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		stations: d.Stations,
		manager:  d.Manager,
		ar:       d.AR,
		location: d.Location,
		logger:   logger.OrNop(d.Logger),
	}
}

// errNotFound marks lookups of unknown resources.
var errNotFound = errors.New("not found")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNotFound), errors.Is(err, model.ErrNoStationFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidRequest), errors.Is(err, model.ErrInvalidRating):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrLocationUnavailable),
		errors.Is(err, model.ErrHeadingUnavailable),
		errors.Is(err, model.ErrCameraUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func stationID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid station id")
		return 0, false
	}
	return id, true
}

func (h *Handler) userLocation() (*geo.Coordinates, error) {
	return sensors.CurrentLocation(h.location)
}
