package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OpenAR handles POST /api/ar. The camera is optional for marker data, so a
// camera failure is reported but leaves the session usable.
func (h *Handler) OpenAR(c *gin.Context) {
	if err := h.ar.Open(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streaming": true})
}

// CloseAR handles DELETE /api/ar.
func (h *Handler) CloseAR(c *gin.Context) {
	if err := h.ar.Close(); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ARMarkers handles GET /api/ar/markers.
func (h *Handler) ARMarkers(c *gin.Context) {
	user, err := h.userLocation()
	if err != nil {
		h.fail(c, err)
		return
	}
	markers, err := h.ar.Markers(*user, h.stations.List())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streaming": h.ar.Streaming(), "markers": markers})
}
