// README: Captain snapshot and vehicle definitions.
package fleet

import (
	"time"

	"gocab/internal/types"
)

type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleAuto       VehicleType = "auto"
)

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleCar, VehicleMotorcycle, VehicleAuto:
		return true
	}
	return false
}

type Vehicle struct {
	Type     VehicleType `json:"type"`
	Capacity int         `json:"capacity"`
	Plate    string      `json:"plate"`
	Color    string      `json:"color"`
}

type Status string

const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
)

// Captain is the profile a captain registers once.
type Captain struct {
	ID      types.ID `json:"id"`
	Name    string   `json:"name"`
	Vehicle Vehicle  `json:"vehicle"`
}

// Snapshot is the dispatch-facing view of a captain: profile plus live
// status, last reported location, and channel presence.
type Snapshot struct {
	Captain
	Status    Status       `json:"status"`
	Location  *types.Point `json:"location,omitempty"`
	Connected bool         `json:"-"`
	UpdatedAt time.Time    `json:"-"`
}

// DispatchEligible reports whether the captain can receive ride offers:
// active, located, and reachable over a live channel.
func (s Snapshot) DispatchEligible() bool {
	return s.Status == StatusActive && s.Location != nil && s.Connected
}
