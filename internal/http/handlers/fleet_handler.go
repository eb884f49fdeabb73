// README: Captain-facing fleet handlers: registration, location, status.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gocab/internal/http/middleware"
	"gocab/internal/modules/fleet"
	"gocab/internal/types"
)

type FleetHandler struct {
	fleet *fleet.Service
}

func NewFleetHandler(svc *fleet.Service) *FleetHandler {
	return &FleetHandler{fleet: svc}
}

type registerReq struct {
	Vehicle struct {
		Type     string `json:"type" binding:"required"`
		Capacity int    `json:"capacity" binding:"required"`
		Plate    string `json:"plate" binding:"required"`
		Color    string `json:"color"`
	} `json:"vehicle" binding:"required"`
}

func (h *FleetHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "vehicle descriptor is required")
		return
	}
	err := h.fleet.Register(c.Request.Context(), fleet.Captain{
		ID:   types.ID(middleware.CallerUID(c)),
		Name: middleware.CallerName(c),
		Vehicle: fleet.Vehicle{
			Type:     fleet.VehicleType(req.Vehicle.Type),
			Capacity: req.Vehicle.Capacity,
			Plate:    req.Vehicle.Plate,
			Color:    req.Vehicle.Color,
		},
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

type locationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *FleetHandler) UpdateLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	id := types.ID(middleware.CallerUID(c))
	if err := h.fleet.ReportLocation(c.Request.Context(), id, types.Point{Lat: req.Lat, Lng: req.Lng}); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *FleetHandler) SetStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "status is required")
		return
	}
	id := types.ID(middleware.CallerUID(c))
	if err := h.fleet.SetStatus(c.Request.Context(), id, fleet.Status(req.Status)); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
