// README: HTTP route registration.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gocab/internal/http/handlers"
	"gocab/internal/http/middleware"
	"gocab/internal/infra"
	"gocab/internal/maps"
	"gocab/internal/modules/dispatch"
	"gocab/internal/modules/fleet"
	"gocab/internal/modules/pricing"
	"gocab/internal/modules/ride"
	"gocab/internal/realtime"
)

type RouterDeps struct {
	Rides    *ride.Service
	Pricing  *pricing.Service
	Fleet    *fleet.Service
	Maps     maps.Provider
	Dispatch *dispatch.Coordinator
	Gateway  *realtime.Gateway
	Verifier infra.TokenVerifier
	Log      *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log))

	r.GET("/health", func(c *gin.Context) { c.String(200, "OK") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", deps.Gateway.Handle)

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	rideHandler := handlers.NewRideHandler(deps.Rides, deps.Pricing, deps.Dispatch)
	rides := api.Group("/rides")
	rides.POST("", middleware.RequireRole("rider"), rideHandler.Create)
	rides.GET("/fare", rideHandler.Fare)
	rides.GET("/:id", rideHandler.Get)
	rides.POST("/:id/confirm", middleware.RequireRole("captain"), rideHandler.Confirm)
	rides.GET("/:id/start", middleware.RequireRole("captain"), rideHandler.Start)
	rides.POST("/:id/end", middleware.RequireRole("captain"), rideHandler.End)
	rides.POST("/:id/cancel", rideHandler.Cancel)

	mapsHandler := handlers.NewMapsHandler(deps.Maps)
	mapsGroup := api.Group("/maps")
	mapsGroup.GET("/coordinates", mapsHandler.Coordinates)
	mapsGroup.GET("/distance-time", mapsHandler.DistanceTime)
	mapsGroup.GET("/suggestions", mapsHandler.Suggestions)

	fleetHandler := handlers.NewFleetHandler(deps.Fleet)
	captains := api.Group("/captains", middleware.RequireRole("captain"))
	captains.POST("/register", fleetHandler.Register)
	captains.PUT("/location", fleetHandler.UpdateLocation)
	captains.PUT("/status", fleetHandler.SetStatus)

	return r
}
