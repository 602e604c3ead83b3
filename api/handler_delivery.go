package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muhirwa45/E-moto/core/delivery"
	"github.com/muhirwa45/E-moto/core/model"
	"github.com/muhirwa45/E-moto/core/presentation"
)

type sessionResponse struct {
	delivery.View
	Vehicle *presentation.VehicleMarker `json:"vehicle,omitempty"`
}

// Session handles GET /api/session.
func (h *Handler) Session(c *gin.Context) {
	v := h.manager.Snapshot()
	resp := sessionResponse{View: v}
	if v.Delivery != nil {
		m := presentation.DescribeVehicle(v.Delivery.Station.IsVan)
		resp.Vehicle = &m
	}
	c.JSON(http.StatusOK, resp)
}

type deliveryRequest struct {
	StationID   int    `json:"station_id" binding:"required"`
	BatteryType string `json:"battery_type" binding:"required"`
}

func parseBattery(c *gin.Context, s string) (model.BatteryType, bool) {
	bt, err := model.ParseBatteryType(s)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return "", false
	}
	return bt, true
}

// RequestDelivery handles POST /api/deliveries.
func (h *Handler) RequestDelivery(c *gin.Context) {
	var req deliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	bt, ok := parseBattery(c, req.BatteryType)
	if !ok {
		return
	}
	d, err := h.manager.RequestDelivery(req.StationID, bt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, d)
}

type sosRequest struct {
	BatteryType string `json:"battery_type" binding:"required"`
}

// RequestSOS handles POST /api/deliveries/sos.
func (h *Handler) RequestSOS(c *gin.Context) {
	var req sosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	bt, ok := parseBattery(c, req.BatteryType)
	if !ok {
		return
	}
	d, err := h.manager.RequestSOS(bt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, d)
}

// CancelDelivery handles DELETE /api/deliveries/current.
func (h *Handler) CancelDelivery(c *gin.Context) {
	if err := h.manager.CancelDelivery(); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dismiss handles POST /api/deliveries/current/dismiss.
func (h *Handler) Dismiss(c *gin.Context) {
	if err := h.manager.Dismiss(); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type ratingRequest struct {
	StationID int `json:"station_id" binding:"required"`
	Rating    int `json:"rating"`
}

// SubmitRating handles POST /api/ratings.
func (h *Handler) SubmitRating(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	s, err := h.manager.SubmitRating(req.StationID, req.Rating)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
