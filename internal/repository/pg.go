package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const seatColumns = `id, seat_map_id, row_index, col_index, seat_type, status, label, block, is_blocked, block_reason, updated_at`

const assignmentColumns = `id, seat_id, bus_transport_id, passenger_name, booking_ref, preferences, preference_type, phone, email, assigned_at, updated_at`

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	var s domain.Seat
	if err := row.Scan(&s.ID, &s.SeatMapID, &s.RowIndex, &s.ColIndex, &s.SeatType, &s.Status, &s.Label, &s.Block, &s.IsBlocked, &s.BlockReason, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanAssignment(row pgx.Row) (*domain.SeatAssignment, error) {
	var a domain.SeatAssignment
	if err := row.Scan(&a.ID, &a.SeatID, &a.TransportID, &a.PassengerName, &a.BookingRef, &a.Preferences, &a.PreferenceType, &a.Phone, &a.Email, &a.AssignedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// lockSeat loads a seat and holds its row lock until the transaction ends. Every write
// touching a seat's assignments or blocking goes through it, so those writes serialise per seat.
func lockSeat(ctx context.Context, q queryer, id string) (*domain.Seat, error) {
	seat, err := scanSeat(q.QueryRow(ctx, `SELECT `+seatColumns+` FROM seats WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSeatNotFound
	}
	return seat, err
}

func refreshSeatStatus(ctx context.Context, q queryer, id string) (*domain.Seat, error) {
	return scanSeat(q.QueryRow(ctx, `UPDATE seats SET status = CASE
			WHEN EXISTS (SELECT 1 FROM seat_assignments WHERE seat_id=$1) THEN 'booked'
			WHEN is_blocked THEN 'blocked'
			ELSE 'available' END,
		updated_at = now()
		WHERE id=$1 RETURNING `+seatColumns, id))
}

func insertAssignment(ctx context.Context, q queryer, a *domain.SeatAssignment) error {
	err := q.QueryRow(ctx, `INSERT INTO seat_assignments (id, seat_id, bus_transport_id, passenger_name, booking_ref, preferences, preference_type, phone, email, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (seat_id, bus_transport_id) DO NOTHING
		RETURNING assigned_at`,
		a.ID, a.SeatID, a.TransportID, a.PassengerName, a.BookingRef, a.Preferences, a.PreferenceType, a.Phone, a.Email, a.AssignedAt).
		Scan(&a.AssignedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSeatAlreadyAssigned
	}
	return err
}

func deleteAssignment(ctx context.Context, q queryer, seatID, transportID string) (*domain.SeatAssignment, error) {
	a, err := scanAssignment(q.QueryRow(ctx, `DELETE FROM seat_assignments WHERE seat_id=$1 AND bus_transport_id=$2 RETURNING `+assignmentColumns, seatID, transportID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAssignmentNotFound
	}
	return a, err
}

func claimable(seat *domain.Seat) error {
	if seat.IsBlocked || !seat.SeatType.Bookable() {
		return domain.ErrSeatUnavailable
	}
	return nil
}
