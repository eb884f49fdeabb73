// README: Pricing service computes per-vehicle-class fare estimates from the
// mapping provider's travel estimate.
package pricing

import (
	"context"
	"errors"
	"math"

	"gocab/internal/maps"
	"gocab/internal/modules/fleet"
)

var ErrBadInput = errors.New("pickup and destination are required")

// Rate holds the pricing constants for one vehicle class.
type Rate struct {
	Base   float64
	PerKm  float64
	PerMin float64
}

// Rates are fixed per deployment. Values match the production tariff sheet.
var Rates = map[fleet.VehicleType]Rate{
	fleet.VehicleAuto:       {Base: 30, PerKm: 10, PerMin: 2},
	fleet.VehicleCar:        {Base: 50, PerKm: 15, PerMin: 3},
	fleet.VehicleMotorcycle: {Base: 20, PerKm: 8, PerMin: 1.5},
}

// Fares is the per-class estimate returned to riders before they choose a
// vehicle type.
type Fares struct {
	Auto       float64 `json:"auto"`
	Car        float64 `json:"car"`
	Motorcycle float64 `json:"motorcycle"`
}

type Service struct {
	maps maps.Provider
}

func NewService(provider maps.Provider) *Service {
	return &Service{maps: provider}
}

// Estimate returns fares for every vehicle class. Provider failures are
// propagated untouched: a fare must never be silently defaulted.
func (s *Service) Estimate(ctx context.Context, pickup, destination string) (Fares, error) {
	if pickup == "" || destination == "" {
		return Fares{}, ErrBadInput
	}
	route, err := s.maps.DistanceTime(ctx, pickup, destination)
	if err != nil {
		return Fares{}, err
	}
	return Fares{
		Auto:       fareFor(Rates[fleet.VehicleAuto], route),
		Car:        fareFor(Rates[fleet.VehicleCar], route),
		Motorcycle: fareFor(Rates[fleet.VehicleMotorcycle], route),
	}, nil
}

// EstimateFor returns the fare for a single vehicle class. Satisfies
// ride.FareEstimator.
func (s *Service) EstimateFor(ctx context.Context, pickup, destination string, vehicle fleet.VehicleType) (float64, error) {
	rate, ok := Rates[vehicle]
	if !ok {
		return 0, ErrBadInput
	}
	if pickup == "" || destination == "" {
		return 0, ErrBadInput
	}
	route, err := s.maps.DistanceTime(ctx, pickup, destination)
	if err != nil {
		return 0, err
	}
	return fareFor(rate, route), nil
}

func fareFor(r Rate, route maps.Route) float64 {
	fare := r.Base +
		r.PerKm*(float64(route.DistanceMeters)/1000.0) +
		r.PerMin*(float64(route.DurationSeconds)/60.0)
	return math.Round(fare*100) / 100
}
