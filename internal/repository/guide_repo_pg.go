package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGGuideRepository struct {
	db *pgxpool.Pool
}

func NewGuideRepository(db *pgxpool.Pool) GuideRepository {
	return &PGGuideRepository{db: db}
}

func (r *PGGuideRepository) GetByID(ctx context.Context, id string) (*domain.TourGuideAssignment, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT id, trip_departure_id, transport_id, name, assigned_seat_id, updated_at FROM tour_guide_assignments WHERE id=$1`, id))
}

func (r *PGGuideRepository) SetAssignedSeat(ctx context.Context, id string, expected, seatID *string) (*domain.TourGuideAssignment, error) {
	g, err := r.scan(r.db.QueryRow(ctx, `UPDATE tour_guide_assignments SET assigned_seat_id=$3, updated_at=now()
		WHERE id=$1 AND assigned_seat_id IS NOT DISTINCT FROM $2
		RETURNING id, trip_departure_id, transport_id, name, assigned_seat_id, updated_at`, id, expected, seatID))
	if !errors.Is(err, domain.ErrGuideNotFound) {
		return g, err
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tour_guide_assignments WHERE id=$1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrGuideBusy
	}
	return nil, domain.ErrGuideNotFound
}

func (r *PGGuideRepository) scan(row pgx.Row) (*domain.TourGuideAssignment, error) {
	var g domain.TourGuideAssignment
	if err := row.Scan(&g.ID, &g.TripDepartureID, &g.TransportID, &g.Name, &g.AssignedSeatID, &g.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGuideNotFound
		}
		return nil, err
	}
	return &g, nil
}

var _ GuideRepository = (*PGGuideRepository)(nil)
