// README: Shared handler utilities: error-to-status mapping.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gocab/internal/maps"
	"gocab/internal/modules/fleet"
	"gocab/internal/modules/pricing"
	"gocab/internal/modules/ride"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ride.ErrBadRequest),
		errors.Is(err, ride.ErrOTPMismatch),
		errors.Is(err, fleet.ErrBadVehicle),
		errors.Is(err, fleet.ErrBadLocation),
		errors.Is(err, fleet.ErrBadStatus),
		errors.Is(err, pricing.ErrBadInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ride.ErrNotFound),
		errors.Is(err, fleet.ErrNotFound),
		errors.Is(err, maps.ErrNotFound),
		errors.Is(err, maps.ErrRouteNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ride.ErrAlreadyConfirmed),
		errors.Is(err, ride.ErrInvalidState),
		errors.Is(err, ride.ErrWrongCaptain):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ride.ErrNotRideOwner):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, maps.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, "mapping service unavailable, try again later")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
