package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/muhirwa45/E-moto/core/geo"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/presentation"
)

type stationResponse struct {
	model.Station
	Marker presentation.StationMarker `json:"marker"`
	// DistanceKm is omitted while the user location is unknown.
	DistanceKm *float64 `json:"distanceKm,omitempty"`
}

func (h *Handler) describe(s model.Station, selectedID int, user *geo.Coordinates) stationResponse {
	out := stationResponse{Station: s, Marker: presentation.DescribeStation(s, s.ID == selectedID)}
	if user != nil {
		d := geo.Distance(*user, s.Coords)
		out.DistanceKm = &d
	}
	return out
}

func (h *Handler) selectedID() int {
	if v := h.manager.Snapshot(); v.Selected != nil {
		return v.Selected.ID
	}
	return 0
}

// ListStations handles GET /api/stations?q=.
func (h *Handler) ListStations(c *gin.Context) {
	stations := h.stations.List()
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		stations = h.stations.Search(q)
	}
	user, _ := h.userLocation()
	sel := h.selectedID()
	resp := make([]stationResponse, 0, len(stations))
	for _, s := range stations {
		resp = append(resp, h.describe(s, sel, user))
	}
	c.JSON(http.StatusOK, resp)
}

// GetStation handles GET /api/stations/:id.
func (h *Handler) GetStation(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	s, err := h.stations.Get(id)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errNotFound, err))
		return
	}
	user, _ := h.userLocation()
	c.JSON(http.StatusOK, h.describe(s, h.selectedID(), user))
}

// NearestStation handles GET /api/stations/nearest?battery=60V.
func (h *Handler) NearestStation(c *gin.Context) {
	var types []model.BatteryType
	if b := c.Query("battery"); b != "" {
		bt, err := model.ParseBatteryType(b)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		types = append(types, bt)
	}
	user, err := h.userLocation()
	if err != nil {
		h.fail(c, err)
		return
	}
	s, err := h.stations.FindNearestAvailable(user, types...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.describe(s, h.selectedID(), user))
}

// SelectStation handles POST /api/stations/:id/select.
func (h *Handler) SelectStation(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	s, err := h.manager.SelectStation(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	user, _ := h.userLocation()
	c.JSON(http.StatusOK, h.describe(s, s.ID, user))
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

// SetFavorite handles PUT /api/stations/:id/favorite.
func (h *Handler) SetFavorite(c *gin.Context) {
	id, ok := stationID(c)
	if !ok {
		return
	}
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := h.stations.SetFavorite(id, *req.Favorite); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errNotFound, err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Recenter handles POST /api/recenter.
func (h *Handler) Recenter(c *gin.Context) {
	h.manager.Recenter()
	c.JSON(http.StatusOK, h.manager.Snapshot())
}
