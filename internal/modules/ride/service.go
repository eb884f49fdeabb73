// README: Ride service implements the lifecycle state machine. It is the only
// writer of ride status; dispatch and handlers go through these operations.
package ride

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"gocab/internal/modules/fleet"
	"gocab/internal/observability"
	"gocab/internal/types"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("ride not found")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrAlreadyConfirmed = errors.New("ride already confirmed")
	ErrWrongCaptain     = errors.New("caller is not the assigned captain")
	ErrOTPMismatch      = errors.New("otp mismatch")
	ErrNotRideOwner     = errors.New("caller is not the ride owner")
)

// FareEstimator returns the fare for one vehicle class between two addresses.
// Implemented by the pricing service.
type FareEstimator interface {
	EstimateFor(ctx context.Context, pickup, destination string, vehicle fleet.VehicleType) (float64, error)
}

type Service struct {
	store Store
	fares FareEstimator
}

func NewService(store Store, fares FareEstimator) *Service {
	return &Service{store: store, fares: fares}
}

type CreateCommand struct {
	UserID      types.ID
	Pickup      string
	Destination string
	VehicleType fleet.VehicleType
}

// Create allocates a ride in pending state with its fare and OTP fixed for
// the rest of the lifecycle. Dispatch happens afterwards and does not affect
// the outcome of creation.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Ride, error) {
	if cmd.UserID == "" || cmd.Pickup == "" || cmd.Destination == "" || !cmd.VehicleType.Valid() {
		return nil, ErrBadRequest
	}

	fare, err := s.fares.EstimateFor(ctx, cmd.Pickup, cmd.Destination, cmd.VehicleType)
	if err != nil {
		return nil, err
	}

	otp, err := generateOTP(6)
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	r := &Ride{
		ID:          types.ID(uuid.NewString()),
		UserID:      cmd.UserID,
		Pickup:      cmd.Pickup,
		Destination: cmd.Destination,
		VehicleType: cmd.VehicleType,
		Fare:        fare,
		OTP:         otp,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, r.ID, StatusNone, StatusPending, "rider", &cmd.UserID)
	observability.RidesCreatedTotal.Inc()
	return r, nil
}

// Confirm assigns the captain and moves pending→confirmed. The conditional
// update in the store guarantees that of any number of concurrent callers
// exactly one succeeds; the rest observe ErrAlreadyConfirmed.
func (s *Service) Confirm(ctx context.Context, rideID, captainID types.ID) (*Ride, error) {
	if rideID == "" || captainID == "" {
		return nil, ErrBadRequest
	}
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrAlreadyConfirmed
	}
	ok, err := s.store.UpdateStatus(ctx, rideID, StatusPending, StatusConfirmed, &captainID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyConfirmed
	}
	s.recordEvent(ctx, rideID, StatusPending, StatusConfirmed, "captain", &captainID)
	observability.RideTransitionsTotal.WithLabelValues(string(StatusConfirmed)).Inc()
	return s.store.Get(ctx, rideID)
}

// Start moves confirmed→ongoing. Only the assigned captain may start the
// ride, and only with the exact OTP the rider was issued at creation.
func (s *Service) Start(ctx context.Context, rideID, captainID types.ID, otp string) (*Ride, error) {
	if rideID == "" || otp == "" {
		return nil, ErrBadRequest
	}
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusConfirmed {
		return nil, ErrInvalidState
	}
	if r.CaptainID == nil || *r.CaptainID != captainID {
		return nil, ErrWrongCaptain
	}
	if r.OTP != otp {
		return nil, ErrOTPMismatch
	}
	ok, err := s.store.UpdateStatus(ctx, rideID, StatusConfirmed, StatusOngoing, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	s.recordEvent(ctx, rideID, StatusConfirmed, StatusOngoing, "captain", &captainID)
	observability.RideTransitionsTotal.WithLabelValues(string(StatusOngoing)).Inc()
	return s.store.Get(ctx, rideID)
}

// End moves ongoing→completed. The fare was fixed at creation and is not
// touched here.
func (s *Service) End(ctx context.Context, rideID, captainID types.ID) (*Ride, error) {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusOngoing {
		return nil, ErrInvalidState
	}
	if r.CaptainID == nil || *r.CaptainID != captainID {
		return nil, ErrWrongCaptain
	}
	ok, err := s.store.UpdateStatus(ctx, rideID, StatusOngoing, StatusCompleted, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	s.recordEvent(ctx, rideID, StatusOngoing, StatusCompleted, "captain", &captainID)
	observability.RideTransitionsTotal.WithLabelValues(string(StatusCompleted)).Inc()
	return s.store.Get(ctx, rideID)
}

type Actor struct {
	ID   types.ID
	Role string // "rider" or "captain"
}

// Cancel terminates a ride before it starts. Riders may cancel from pending
// or confirmed; the assigned captain only from confirmed. Cancellation from
// ongoing is not supported.
func (s *Service) Cancel(ctx context.Context, rideID types.ID, actor Actor) (*Ride, error) {
	r, err := s.store.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}
	switch actor.Role {
	case "rider":
		if r.UserID != actor.ID {
			return nil, ErrNotRideOwner
		}
	case "captain":
		if r.Status != StatusConfirmed || r.CaptainID == nil || *r.CaptainID != actor.ID {
			return nil, ErrWrongCaptain
		}
	default:
		return nil, ErrBadRequest
	}
	ok, err := s.store.UpdateStatus(ctx, rideID, r.Status, StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}
	s.recordEvent(ctx, rideID, r.Status, StatusCancelled, actor.Role, &actor.ID)
	observability.RideTransitionsTotal.WithLabelValues(string(StatusCancelled)).Inc()
	return s.store.Get(ctx, rideID)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Ride, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) recordEvent(ctx context.Context, rideID types.ID, from, to Status, actorType string, actorID *types.ID) {
	// Audit trail is best-effort; a failed insert must not fail the transition.
	_ = s.store.AppendEvent(ctx, &Event{
		RideID:     rideID,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actorID,
		CreatedAt:  time.Now(),
	})
}

// generateOTP returns an n-digit zero-padded numeric code from crypto/rand.
func generateOTP(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
