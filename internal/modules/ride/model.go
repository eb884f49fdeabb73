// README: Ride aggregate, status definitions, and API views.
package ride

import (
	"time"

	"gocab/internal/modules/fleet"
	"gocab/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllowedTransitions represents the ride state flow as code. Completed and
// cancelled are terminal; cancellation from ongoing is intentionally absent.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusOngoing, StatusCancelled},
	StatusOngoing:   {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

type Ride struct {
	ID          types.ID
	UserID      types.ID
	CaptainID   *types.ID
	Pickup      string
	Destination string
	VehicleType fleet.VehicleType
	Fare        float64
	OTP         string
	Status      Status
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// Event is one entry in the append-only transition audit trail.
type Event struct {
	ID         int64
	RideID     types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// View is the wire representation of a ride. The OTP proves rider presence
// at pickup, so it is only serialized for the rider and, after confirmation,
// for the assigned captain.
type View struct {
	ID          types.ID          `json:"id"`
	UserID      types.ID          `json:"userId"`
	CaptainID   *types.ID         `json:"captainId,omitempty"`
	Pickup      string            `json:"pickup"`
	Destination string            `json:"destination"`
	VehicleType fleet.VehicleType `json:"vehicleType"`
	Fare        float64           `json:"fare"`
	OTP         string            `json:"otp,omitempty"`
	Status      Status            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func (r *Ride) View(includeOTP bool) View {
	v := View{
		ID:          r.ID,
		UserID:      r.UserID,
		CaptainID:   r.CaptainID,
		Pickup:      r.Pickup,
		Destination: r.Destination,
		VehicleType: r.VehicleType,
		Fare:        r.Fare,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
	}
	if includeOTP {
		v.OTP = r.OTP
	}
	return v
}

// VisibleTo reports whether the caller may see the ride's OTP.
func (r *Ride) OTPVisibleTo(callerID types.ID, role string) bool {
	if role == "rider" {
		return r.UserID == callerID
	}
	return r.CaptainID != nil && *r.CaptainID == callerID
}
