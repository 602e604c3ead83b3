// Package api exposes the delivery session over HTTP for local clients.
package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/muhirwa45/E-moto/api/mw"
)

// NewRouter creates the gin engine. Intent endpoints (POST and DELETE) share
// a per-IP budget of ratePerSec requests per second with the given burst.
func NewRouter(d Deps, ratePerSec float64, burst int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h := NewHandler(d)

	api := r.Group("/api")
	{
		api.GET("/stations", h.ListStations)
		api.GET("/stations/nearest", h.NearestStation)
		api.GET("/stations/:id", h.GetStation)
		api.GET("/session", h.Session)
		api.GET("/ar/markers", h.ARMarkers)
	}

	intents := api.Group("")
	intents.Use(mw.RateLimiter(rate.Limit(ratePerSec), burst))
	{
		intents.POST("/stations/:id/select", h.SelectStation)
		intents.PUT("/stations/:id/favorite", h.SetFavorite)
		intents.POST("/recenter", h.Recenter)
		intents.POST("/deliveries", h.RequestDelivery)
		intents.POST("/deliveries/sos", h.RequestSOS)
		intents.DELETE("/deliveries/current", h.CancelDelivery)
		intents.POST("/deliveries/current/dismiss", h.Dismiss)
		intents.POST("/ratings", h.SubmitRating)
		intents.POST("/ar", h.OpenAR)
		intents.DELETE("/ar", h.CloseAR)
	}
	return r
}
