// README: Realtime event names and the wire envelope.
package realtime

import "encoding/json"

const (
	// server → captain
	EventRideOffer = "ride-offer"
	// server → rider
	EventRideConfirmed = "ride-confirmed"
	EventRideStarted   = "ride-started"
	EventRideEnded     = "ride-ended"
	EventRideCancelled = "ride-cancelled"
	// client → server
	EventJoin           = "join"
	EventReportLocation = "report-location"
)

// Envelope wraps every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Role string

const (
	RoleRider   Role = "rider"
	RoleCaptain Role = "captain"
)
