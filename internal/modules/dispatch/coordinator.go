// README: Dispatch coordinator: fans ride-offer notifications out to nearby
// captains on creation and pushes lifecycle events to the rider afterwards.
// It only reads rides; all status writes stay in the ride service.
package dispatch

import (
	"context"
	"log/slog"

	"gocab/internal/maps"
	"gocab/internal/modules/fleet"
	"gocab/internal/modules/ride"
	"gocab/internal/observability"
	"gocab/internal/realtime"
	"gocab/internal/types"
)

// Notifier delivers one event to one identity's live channel, if any.
// Implemented by the realtime registry.
type Notifier interface {
	Emit(role realtime.Role, id types.ID, event string, data interface{}) error
}

type Coordinator struct {
	fleet    *fleet.Service
	maps     maps.Provider
	notifier Notifier
	radiusKm float64
	log      *slog.Logger
}

func NewCoordinator(fleetSvc *fleet.Service, provider maps.Provider, notifier Notifier, radiusKm float64, log *slog.Logger) *Coordinator {
	return &Coordinator{
		fleet:    fleetSvc,
		maps:     provider,
		notifier: notifier,
		radiusKm: radiusKm,
		log:      log,
	}
}

// OnRideCreated geocodes the pickup, selects captains within the dispatch
// radius, and offers them the ride. Every failure path is soft: the ride was
// already created and acknowledged, so dispatch problems are logged and
// counted, never returned to the rider.
func (c *Coordinator) OnRideCreated(ctx context.Context, r *ride.Ride) {
	center, err := c.maps.Geocode(ctx, r.Pickup)
	if err != nil {
		c.log.Warn("dispatch skipped: pickup geocoding failed", "ride", r.ID, "error", err)
		observability.DispatchSkippedTotal.WithLabelValues("geocode_failed").Inc()
		return
	}

	candidates, err := c.fleet.ActiveSnapshots(ctx)
	if err != nil {
		c.log.Warn("dispatch skipped: fleet snapshot failed", "ride", r.ID, "error", err)
		observability.DispatchSkippedTotal.WithLabelValues("fleet_unavailable").Inc()
		return
	}

	nearby := fleet.SelectNearby(candidates, center, c.radiusKm)
	if len(nearby) == 0 {
		c.log.Info("no captains in dispatch radius", "ride", r.ID, "radius_km", c.radiusKm, "active", len(candidates))
		observability.DispatchSkippedTotal.WithLabelValues("no_candidates").Inc()
		return
	}

	// Captains must not see the OTP before the rider reads it back at pickup.
	offer := r.View(false)

	sent := 0
	for _, n := range nearby {
		if err := c.notifier.Emit(realtime.RoleCaptain, n.ID, realtime.EventRideOffer, offer); err != nil {
			// Offline between snapshot and emit; they simply miss the offer.
			continue
		}
		observability.OffersSentTotal.Inc()
		sent++
	}
	c.log.Info("ride offers dispatched", "ride", r.ID, "candidates", len(nearby), "sent", sent)
}

// OnRideConfirmed notifies the rider that a captain took the ride. The OTP
// was visible to the rider from creation and stays in the payload.
func (c *Coordinator) OnRideConfirmed(ctx context.Context, r *ride.Ride) {
	c.emitToRider(r, realtime.EventRideConfirmed)
}

func (c *Coordinator) OnRideStarted(ctx context.Context, r *ride.Ride) {
	c.emitToRider(r, realtime.EventRideStarted)
}

func (c *Coordinator) OnRideEnded(ctx context.Context, r *ride.Ride) {
	c.emitToRider(r, realtime.EventRideEnded)
}

// OnRideCancelled tells both parties; whichever initiated it simply sees a
// confirmation of their own action.
func (c *Coordinator) OnRideCancelled(ctx context.Context, r *ride.Ride) {
	c.emitToRider(r, realtime.EventRideCancelled)
	if r.CaptainID != nil {
		if err := c.notifier.Emit(realtime.RoleCaptain, *r.CaptainID, realtime.EventRideCancelled, r.View(false)); err != nil {
			c.log.Debug("captain offline for cancel notice", "ride", r.ID)
		}
	}
}

func (c *Coordinator) emitToRider(r *ride.Ride, event string) {
	if err := c.notifier.Emit(realtime.RoleRider, r.UserID, event, r.View(true)); err != nil {
		c.log.Debug("rider offline for lifecycle event", "ride", r.ID, "event", event)
	}
}
