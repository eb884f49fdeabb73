// README: Fleet store backed by Redis hashes plus an active-captain set.
package fleet

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"gocab/internal/types"
)

var ErrNotFound = errors.New("captain not found")

// Store holds captain profiles and live state. Snapshots returned by a store
// never have Connected set; channel presence belongs to the realtime layer.
type Store interface {
	Register(ctx context.Context, c Captain) error
	UpdateLocation(ctx context.Context, id types.ID, p types.Point) error
	SetStatus(ctx context.Context, id types.ID, s Status) error
	Get(ctx context.Context, id types.ID) (*Snapshot, error)
	ListActive(ctx context.Context) ([]Snapshot, error)
}

const (
	captainKeyPrefix = "fleet:captain:"
	activeSetKey     = "fleet:active"
)

type redisStore struct {
	redis *redis.Client
}

func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{redis: rdb}
}

func captainKey(id types.ID) string { return captainKeyPrefix + string(id) }

func (s *redisStore) Register(ctx context.Context, c Captain) error {
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, captainKey(c.ID), map[string]interface{}{
		"name":             c.Name,
		"vehicle_type":     string(c.Vehicle.Type),
		"vehicle_capacity": strconv.Itoa(c.Vehicle.Capacity),
		"vehicle_plate":    c.Vehicle.Plate,
		"vehicle_color":    c.Vehicle.Color,
	})
	// New captains start inactive; re-registering must not clobber a live status.
	pipe.HSetNX(ctx, captainKey(c.ID), "status", string(StatusInactive))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *redisStore) UpdateLocation(ctx context.Context, id types.ID, p types.Point) error {
	exists, err := s.redis.Exists(ctx, captainKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, captainKey(id), map[string]interface{}{
		"lat":        strconv.FormatFloat(p.Lat, 'f', -1, 64),
		"lng":        strconv.FormatFloat(p.Lng, 'f', -1, 64),
		"status":     string(StatusActive),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	pipe.SAdd(ctx, activeSetKey, string(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisStore) SetStatus(ctx context.Context, id types.ID, status Status) error {
	exists, err := s.redis.Exists(ctx, captainKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, captainKey(id), "status", string(status))
	if status == StatusActive {
		pipe.SAdd(ctx, activeSetKey, string(id))
	} else {
		pipe.SRem(ctx, activeSetKey, string(id))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisStore) Get(ctx context.Context, id types.ID) (*Snapshot, error) {
	m, err := s.redis.HGetAll(ctx, captainKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, ErrNotFound
	}
	snap := snapshotFromHash(id, m)
	return &snap, nil
}

func (s *redisStore) ListActive(ctx context.Context) ([]Snapshot, error) {
	ids, err := s.redis.SMembers(ctx, activeSetKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, captainKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	out := make([]Snapshot, 0, len(ids))
	for i, cmd := range cmds {
		m, err := cmd.Result()
		if err != nil || len(m) == 0 {
			continue
		}
		snap := snapshotFromHash(types.ID(ids[i]), m)
		if snap.Status == StatusActive {
			out = append(out, snap)
		}
	}
	return out, nil
}

func snapshotFromHash(id types.ID, m map[string]string) Snapshot {
	snap := Snapshot{
		Captain: Captain{
			ID:   id,
			Name: m["name"],
			Vehicle: Vehicle{
				Type:  VehicleType(m["vehicle_type"]),
				Plate: m["vehicle_plate"],
				Color: m["vehicle_color"],
			},
		},
		Status: Status(m["status"]),
	}
	if v, err := strconv.Atoi(m["vehicle_capacity"]); err == nil {
		snap.Vehicle.Capacity = v
	}
	lat, latErr := strconv.ParseFloat(m["lat"], 64)
	lng, lngErr := strconv.ParseFloat(m["lng"], 64)
	if latErr == nil && lngErr == nil {
		snap.Location = &types.Point{Lat: lat, Lng: lng}
	}
	if t, err := time.Parse(time.RFC3339, m["updated_at"]); err == nil {
		snap.UpdatedAt = t
	}
	return snap
}
