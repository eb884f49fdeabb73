// README: Fleet service owns captain registration, location reports, and
// dispatch snapshots.
package fleet

import (
	"context"
	"errors"
	"log/slog"

	"gocab/internal/types"
)

var (
	ErrBadVehicle  = errors.New("invalid vehicle descriptor")
	ErrBadLocation = errors.New("invalid coordinates")
	ErrBadStatus   = errors.New("invalid status")
)

// Presence answers whether a captain currently has a live realtime channel.
// Implemented by the realtime session registry.
type Presence interface {
	CaptainConnected(id types.ID) bool
}

type Service struct {
	store    Store
	presence Presence
	log      *slog.Logger
}

func NewService(store Store, presence Presence, log *slog.Logger) *Service {
	return &Service{store: store, presence: presence, log: log}
}

func (s *Service) Register(ctx context.Context, c Captain) error {
	if c.ID == "" || !c.Vehicle.Type.Valid() || c.Vehicle.Capacity <= 0 || c.Vehicle.Plate == "" {
		return ErrBadVehicle
	}
	return s.store.Register(ctx, c)
}

// ReportLocation refreshes a captain's position and marks them active.
func (s *Service) ReportLocation(ctx context.Context, id types.ID, p types.Point) error {
	if !p.Valid() {
		return ErrBadLocation
	}
	return s.store.UpdateLocation(ctx, id, p)
}

func (s *Service) SetStatus(ctx context.Context, id types.ID, status Status) error {
	if status != StatusActive && status != StatusInactive {
		return ErrBadStatus
	}
	return s.store.SetStatus(ctx, id, status)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Snapshot, error) {
	snap, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap.Connected = s.presence.CaptainConnected(id)
	return snap, nil
}

// ActiveSnapshots returns all active captains with channel presence resolved,
// ready to be fed through SelectNearby.
func (s *Service) ActiveSnapshots(ctx context.Context) ([]Snapshot, error) {
	snaps, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snaps {
		snaps[i].Connected = s.presence.CaptainConnected(snaps[i].ID)
	}
	return snaps, nil
}
