package repository

import (
	"context"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGPassengerSource struct {
	db *pgxpool.Pool
}

func NewPassengerSource(db *pgxpool.Pool) PassengerSource {
	return &PGPassengerSource{db: db}
}

func (r *PGPassengerSource) ListUnassigned(ctx context.Context, transportID string) ([]domain.UnassignedPassenger, error) {
	rows, err := r.db.Query(ctx, `SELECT p.id, p.bus_transport_id, p.booking_ref, p.name, p.preference_text, p.preference_type, p.accommodation, p.phone, p.email
		FROM booking_passengers p
		WHERE p.bus_transport_id=$1
		AND NOT EXISTS (
			SELECT 1 FROM seat_assignments a
			WHERE a.bus_transport_id = p.bus_transport_id AND a.booking_ref = p.booking_ref AND a.passenger_name = p.name
		)
		ORDER BY p.created_at, p.id`, transportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.UnassignedPassenger, 0)
	for rows.Next() {
		var p domain.UnassignedPassenger
		if err := rows.Scan(&p.ID, &p.TransportID, &p.BookingRef, &p.Name, &p.PreferenceText, &p.PreferenceType, &p.Accommodation, &p.Phone, &p.Email); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ PassengerSource = (*PGPassengerSource)(nil)
