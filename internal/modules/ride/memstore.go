package ride

import (
	"context"
	"sync"
	"time"

	"gocab/internal/types"
)

// MemStore is an in-memory Store with the same compare-and-swap semantics as
// the Postgres implementation. Used by tests and local development.
type MemStore struct {
	mu     sync.Mutex
	rides  map[types.ID]*Ride
	events []Event
}

func NewMemStore() *MemStore {
	return &MemStore{rides: make(map[types.ID]*Ride)}
}

func (s *MemStore) Create(_ context.Context, r *Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.rides[r.ID] = &cp
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, captainID *types.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rides[id]
	if !ok {
		return false, nil
	}
	if r.Status != from {
		return false, nil
	}
	r.Status = to
	if captainID != nil && r.CaptainID == nil {
		d := *captainID
		r.CaptainID = &d
	}
	now := time.Now()
	switch to {
	case StatusConfirmed:
		r.ConfirmedAt = &now
	case StatusOngoing:
		r.StartedAt = &now
	case StatusCompleted:
		r.CompletedAt = &now
	case StatusCancelled:
		r.CancelledAt = &now
	}
	return true, nil
}

func (s *MemStore) AppendEvent(_ context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *e)
	return nil
}

// Events returns a copy of the audit trail for assertions in tests.
func (s *MemStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
