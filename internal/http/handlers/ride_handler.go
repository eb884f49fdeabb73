// README: Ride handlers: create, fare estimate, lifecycle transitions.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"gocab/internal/http/middleware"
	"gocab/internal/modules/dispatch"
	"gocab/internal/modules/fleet"
	"gocab/internal/modules/pricing"
	"gocab/internal/modules/ride"
	"gocab/internal/types"
)

type RideHandler struct {
	rides    *ride.Service
	pricing  *pricing.Service
	dispatch *dispatch.Coordinator
}

func NewRideHandler(rides *ride.Service, pricingSvc *pricing.Service, coordinator *dispatch.Coordinator) *RideHandler {
	return &RideHandler{rides: rides, pricing: pricingSvc, dispatch: coordinator}
}

type createRideReq struct {
	Pickup      string `json:"pickup" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	VehicleType string `json:"vehicleType" binding:"required"`
}

// Create acknowledges the ride first and dispatches offers afterwards:
// dispatch failures must not fail a ride that was already priced and stored.
func (h *RideHandler) Create(c *gin.Context) {
	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "pickup, destination and vehicleType are required")
		return
	}

	r, err := h.rides.Create(c.Request.Context(), ride.CreateCommand{
		UserID:      types.ID(middleware.CallerUID(c)),
		Pickup:      req.Pickup,
		Destination: req.Destination,
		VehicleType: fleet.VehicleType(req.VehicleType),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, r.View(true))

	// The response is already committed; fan out offers in the background.
	go h.dispatch.OnRideCreated(context.WithoutCancel(c.Request.Context()), r)
}

func (h *RideHandler) Fare(c *gin.Context) {
	pickup := c.Query("pickup")
	destination := c.Query("destination")
	fares, err := h.pricing.Estimate(c.Request.Context(), pickup, destination)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, fares)
}

func (h *RideHandler) Confirm(c *gin.Context) {
	captainID := types.ID(middleware.CallerUID(c))
	r, err := h.rides.Confirm(c.Request.Context(), types.ID(c.Param("id")), captainID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	go h.dispatch.OnRideConfirmed(context.WithoutCancel(c.Request.Context()), r)

	// The caller is now the assigned captain, so the OTP becomes visible:
	// they will read it back from the rider at pickup.
	c.JSON(http.StatusOK, r.View(true))
}

func (h *RideHandler) Start(c *gin.Context) {
	captainID := types.ID(middleware.CallerUID(c))
	r, err := h.rides.Start(c.Request.Context(), types.ID(c.Param("id")), captainID, c.Query("otp"))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	go h.dispatch.OnRideStarted(context.WithoutCancel(c.Request.Context()), r)
	c.JSON(http.StatusOK, r.View(true))
}

func (h *RideHandler) End(c *gin.Context) {
	captainID := types.ID(middleware.CallerUID(c))
	r, err := h.rides.End(c.Request.Context(), types.ID(c.Param("id")), captainID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	go h.dispatch.OnRideEnded(context.WithoutCancel(c.Request.Context()), r)
	c.JSON(http.StatusOK, r.View(true))
}

func (h *RideHandler) Cancel(c *gin.Context) {
	actor := ride.Actor{ID: types.ID(middleware.CallerUID(c)), Role: middleware.CallerRole(c)}
	r, err := h.rides.Cancel(c.Request.Context(), types.ID(c.Param("id")), actor)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	go h.dispatch.OnRideCancelled(context.WithoutCancel(c.Request.Context()), r)
	c.JSON(http.StatusOK, r.View(false))
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	callerID := types.ID(middleware.CallerUID(c))
	role := middleware.CallerRole(c)
	if r.UserID != callerID && (r.CaptainID == nil || *r.CaptainID != callerID) {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}
	c.JSON(http.StatusOK, r.View(r.OTPVisibleTo(callerID, role)))
}
