// README: Ride store interface and the PostgreSQL implementation. Every
// transition goes through a conditional update keyed on the expected prior
// status, so concurrent writers can never both win.
package ride

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gocab/internal/types"
)

type Store interface {
	Create(ctx context.Context, r *Ride) error
	Get(ctx context.Context, id types.ID) (*Ride, error)
	// UpdateStatus applies from→to as a single compare-and-swap. It returns
	// false when the ride was no longer in the expected state.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, captainID *types.ID) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type pgStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO rides (
            id, user_id, captain_id, pickup, destination,
            vehicle_type, fare, otp, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(r.ID),
		string(r.UserID),
		toStringPtr(r.CaptainID),
		r.Pickup,
		r.Destination,
		string(r.VehicleType),
		r.Fare,
		r.OTP,
		string(r.Status),
		r.CreatedAt,
	)
	return err
}

func (s *pgStore) Get(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, captain_id, pickup, destination,
               vehicle_type, fare, otp, status,
               created_at, confirmed_at, started_at, completed_at, cancelled_at
        FROM rides
        WHERE id = $1`, string(id),
	)

	var r Ride
	var captainID *string
	var confirmedAt, startedAt, completedAt, cancelledAt *time.Time

	err := row.Scan(
		&r.ID, &r.UserID, &captainID, &r.Pickup, &r.Destination,
		&r.VehicleType, &r.Fare, &r.OTP, &r.Status,
		&r.CreatedAt, &confirmedAt, &startedAt, &completedAt, &cancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if captainID != nil {
		d := types.ID(*captainID)
		r.CaptainID = &d
	}
	r.ConfirmedAt = confirmedAt
	r.StartedAt = startedAt
	r.CompletedAt = completedAt
	r.CancelledAt = cancelledAt
	return &r, nil
}

func (s *pgStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, captainID *types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE rides
        SET status = $1,
            captain_id = COALESCE($2, captain_id),
            confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
            started_at   = CASE WHEN $1 = 'ongoing'   THEN NOW() ELSE started_at END,
            completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
            cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
        WHERE id = $3 AND status = $4`,
		string(to),
		toStringPtr(captainID),
		string(id),
		string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *pgStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO ride_events (
            ride_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.RideID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		toStringPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
