// README: Thin handlers over the mapping provider for the client UI.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gocab/internal/maps"
)

type MapsHandler struct {
	maps maps.Provider
}

func NewMapsHandler(provider maps.Provider) *MapsHandler {
	return &MapsHandler{maps: provider}
}

func (h *MapsHandler) Coordinates(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		writeError(c, http.StatusBadRequest, "address is required")
		return
	}
	p, err := h.maps.Geocode(c.Request.Context(), address)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *MapsHandler) DistanceTime(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	if origin == "" || destination == "" {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}
	route, err := h.maps.DistanceTime(c.Request.Context(), origin, destination)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"distanceMeters":  route.DistanceMeters,
		"durationSeconds": route.DurationSeconds,
	})
}

func (h *MapsHandler) Suggestions(c *gin.Context) {
	input := c.Query("input")
	if len(input) < 3 {
		writeError(c, http.StatusBadRequest, "input must be at least 3 characters")
		return
	}
	suggestions, err := h.maps.Autocomplete(c.Request.Context(), input)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}
