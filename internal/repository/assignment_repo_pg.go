package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGAssignmentRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentRepository(db *pgxpool.Pool) *PGAssignmentRepository {
	return &PGAssignmentRepository{db: db}
}

func (r *PGAssignmentRepository) InsertIfAbsent(ctx context.Context, a *domain.SeatAssignment) (*domain.Seat, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	seat, err := lockSeat(ctx, tx, a.SeatID)
	if err != nil {
		return nil, err
	}
	if err := claimable(seat); err != nil {
		return nil, err
	}
	if err := insertAssignment(ctx, tx, a); err != nil {
		return nil, err
	}
	seat, err = refreshSeatStatus(ctx, tx, a.SeatID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	seat.Assignment = a
	return seat, nil
}

func (r *PGAssignmentRepository) DeleteIfPresent(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, *domain.Seat, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := lockSeat(ctx, tx, seatID); err != nil {
		if errors.Is(err, domain.ErrSeatNotFound) {
			return nil, nil, domain.ErrAssignmentNotFound
		}
		return nil, nil, err
	}
	removed, err := deleteAssignment(ctx, tx, seatID, transportID)
	if err != nil {
		return nil, nil, err
	}
	seat, err := refreshSeatStatus(ctx, tx, seatID)
	if err != nil {
		return nil, nil, err
	}
	return removed, seat, tx.Commit(ctx)
}

// MoveAssignment frees the source and claims the destination in one transaction.
// Seat rows are locked in id order so two opposite moves cannot deadlock.
func (r *PGAssignmentRepository) MoveAssignment(ctx context.Context, fromSeatID, toSeatID, transportID, newID string, at time.Time) (*MoveRecord, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	first, second := fromSeatID, toSeatID
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*domain.Seat, 2)
	for _, id := range []string{first, second} {
		seat, err := lockSeat(ctx, tx, id)
		if err != nil {
			if id == fromSeatID && errors.Is(err, domain.ErrSeatNotFound) {
				return nil, domain.ErrAssignmentNotFound
			}
			return nil, err
		}
		locked[id] = seat
	}
	if err := claimable(locked[toSeatID]); err != nil {
		return nil, err
	}

	old, err := deleteAssignment(ctx, tx, fromSeatID, transportID)
	if err != nil {
		return nil, err
	}
	moved := old.Relocated(newID, toSeatID, at)
	if err := insertAssignment(ctx, tx, &moved); err != nil {
		return nil, err
	}

	from, err := refreshSeatStatus(ctx, tx, fromSeatID)
	if err != nil {
		return nil, err
	}
	to, err := refreshSeatStatus(ctx, tx, toSeatID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	to.Assignment = &moved
	return &MoveRecord{Old: *old, New: moved, From: *from, To: *to}, nil
}

func (r *PGAssignmentRepository) Find(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, error) {
	a, err := scanAssignment(r.db.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM seat_assignments WHERE seat_id=$1 AND bus_transport_id=$2`, seatID, transportID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAssignmentNotFound
	}
	return a, err
}

func (r *PGAssignmentRepository) Update(ctx context.Context, id string, patch domain.AssignmentPatch, at time.Time) (*domain.SeatAssignment, error) {
	a, err := scanAssignment(r.db.QueryRow(ctx, `UPDATE seat_assignments SET
			passenger_name = COALESCE($2, passenger_name),
			booking_ref = COALESCE($3, booking_ref),
			preferences = COALESCE($4, preferences),
			preference_type = COALESCE($5, preference_type),
			phone = COALESCE($6, phone),
			email = COALESCE($7, email),
			updated_at = $8
		WHERE id=$1
		RETURNING `+assignmentColumns,
		id, patch.PassengerName, patch.BookingRef, patch.Preferences, patch.PreferenceType, patch.Phone, patch.Email, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAssignmentNotFound
	}
	return a, err
}

func (r *PGAssignmentRepository) ListByTransport(ctx context.Context, transportID string) ([]domain.SeatAssignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM seat_assignments WHERE bus_transport_id=$1 ORDER BY assigned_at, id`, transportID)
}

func (r *PGAssignmentRepository) ListBySeat(ctx context.Context, seatID string) ([]domain.SeatAssignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM seat_assignments WHERE seat_id=$1 ORDER BY assigned_at, id`, seatID)
}

func (r *PGAssignmentRepository) list(ctx context.Context, query string, arg string) ([]domain.SeatAssignment, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SeatAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

var (
	_ AssignmentRepository = (*PGAssignmentRepository)(nil)
	_ AtomicMover          = (*PGAssignmentRepository)(nil)
)
