package fleet

import (
	"context"
	"sync"
	"time"

	"gocab/internal/types"
)

// MemStore is an in-memory Store used by tests and local development.
type MemStore struct {
	mu       sync.RWMutex
	captains map[types.ID]*Snapshot
}

func NewMemStore() *MemStore {
	return &MemStore{captains: make(map[types.ID]*Snapshot)}
}

func (s *MemStore) Register(_ context.Context, c Captain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.captains[c.ID]; ok {
		existing.Captain = c
		return nil
	}
	s.captains[c.ID] = &Snapshot{Captain: c, Status: StatusInactive}
	return nil
}

func (s *MemStore) UpdateLocation(_ context.Context, id types.ID, p types.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.captains[id]
	if !ok {
		return ErrNotFound
	}
	loc := p
	snap.Location = &loc
	snap.Status = StatusActive
	snap.UpdatedAt = time.Now()
	return nil
}

func (s *MemStore) SetStatus(_ context.Context, id types.ID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.captains[id]
	if !ok {
		return ErrNotFound
	}
	snap.Status = status
	return nil
}

func (s *MemStore) Get(_ context.Context, id types.ID) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.captains[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *snap
	return &cp, nil
}

func (s *MemStore) ListActive(_ context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Snapshot
	for _, snap := range s.captains {
		if snap.Status == StatusActive {
			out = append(out, *snap)
		}
	}
	return out, nil
}
