package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGSeatRepository struct {
	db *pgxpool.Pool
}

func NewSeatRepository(db *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{db: db}
}

func (r *PGSeatRepository) CreateMap(ctx context.Context, m *domain.SeatMap, seats []domain.Seat) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO seat_maps (id, name, rows, cols, row_labeling, orientation, zoom, grid_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`, m.ID, m.Name, m.Rows, m.Cols, m.RowLabeling, m.Orientation, m.Zoom, m.GridSize).
		Scan(&m.CreatedAt); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, s := range seats {
		batch.Queue(`INSERT INTO seats (id, seat_map_id, row_index, col_index, seat_type, status, label, block, is_blocked, block_reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			s.ID, m.ID, s.RowIndex, s.ColIndex, s.SeatType, s.Status, s.Label, s.Block, s.IsBlocked, s.BlockReason)
	}
	br := tx.SendBatch(ctx, batch)
	for range seats {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert seat: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGSeatRepository) GetMap(ctx context.Context, id string) (*domain.SeatMap, error) {
	var m domain.SeatMap
	err := r.db.QueryRow(ctx, `SELECT id, name, rows, cols, row_labeling, orientation, zoom, grid_size, created_at FROM seat_maps WHERE id=$1`, id).
		Scan(&m.ID, &m.Name, &m.Rows, &m.Cols, &m.RowLabeling, &m.Orientation, &m.Zoom, &m.GridSize, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMapNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PGSeatRepository) ListSeats(ctx context.Context, mapID, transportID string) ([]domain.Seat, error) {
	if _, err := r.GetMap(ctx, mapID); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+seatColumns+` FROM seats WHERE seat_map_id=$1 ORDER BY row_index, col_index`, mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	index := make(map[string]int)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		index[s.ID] = len(seats)
		seats = append(seats, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Transport match first, then oldest, so the first row per seat wins.
	arows, err := r.db.Query(ctx, `SELECT a.id, a.seat_id, a.bus_transport_id, a.passenger_name, a.booking_ref, a.preferences, a.preference_type, a.phone, a.email, a.assigned_at, a.updated_at
		FROM seat_assignments a
		JOIN seats s ON s.id = a.seat_id
		WHERE s.seat_map_id=$1
		ORDER BY a.seat_id, (a.bus_transport_id = $2) DESC, a.assigned_at, a.id`, mapID, transportID)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		a, err := scanAssignment(arows)
		if err != nil {
			return nil, err
		}
		idx, ok := index[a.SeatID]
		if !ok || seats[idx].Assignment != nil {
			continue
		}
		seats[idx].Assignment = a
	}
	return seats, arows.Err()
}

func (r *PGSeatRepository) GetSeat(ctx context.Context, id string) (*domain.Seat, error) {
	s, err := scanSeat(r.db.QueryRow(ctx, `SELECT `+seatColumns+` FROM seats WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	a, err := scanAssignment(r.db.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM seat_assignments WHERE seat_id=$1 ORDER BY assigned_at, id LIMIT 1`, id))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		s.Assignment = a
	}
	return s, nil
}

// SaveSeat upserts a cell by its grid position. Status is derived from assignments and
// the blocked flag. The existing row is locked first so the assignment check and the
// write see the same state as a concurrent InsertIfAbsent.
func (r *PGSeatRepository) SaveSeat(ctx context.Context, seat *domain.Seat) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var existingID string
	err = tx.QueryRow(ctx, `SELECT id FROM seats WHERE seat_map_id=$1 AND row_index=$2 AND col_index=$3 FOR UPDATE`,
		seat.SeatMapID, seat.RowIndex, seat.ColIndex).Scan(&existingID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return err
	default:
		var held bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seat_assignments WHERE seat_id=$1)`, existingID).Scan(&held); err != nil {
			return err
		}
		if held && (seat.IsBlocked || !seat.SeatType.Bookable()) {
			return domain.ErrSeatAlreadyAssigned
		}
	}

	row := tx.QueryRow(ctx, `INSERT INTO seats (id, seat_map_id, row_index, col_index, seat_type, status, label, block, is_blocked, block_reason)
		VALUES ($1, $2, $3, $4, $5, CASE WHEN $8 THEN 'blocked' ELSE 'available' END, $6, $7, $8, $9)
		ON CONFLICT (seat_map_id, row_index, col_index) DO UPDATE SET
			seat_type = EXCLUDED.seat_type,
			label = EXCLUDED.label,
			block = EXCLUDED.block,
			is_blocked = EXCLUDED.is_blocked,
			block_reason = EXCLUDED.block_reason,
			status = CASE
				WHEN EXISTS (SELECT 1 FROM seat_assignments WHERE seat_id = seats.id) THEN 'booked'
				WHEN EXCLUDED.is_blocked THEN 'blocked'
				ELSE 'available' END,
			updated_at = now()
		WHERE NOT ((EXCLUDED.is_blocked OR EXCLUDED.seat_type NOT IN ('seat', 'window_seat', 'aisle_seat', 'accessible_seat', 'premium_seat'))
			AND EXISTS (SELECT 1 FROM seat_assignments WHERE seat_id = seats.id))
		RETURNING `+seatColumns,
		seat.ID, seat.SeatMapID, seat.RowIndex, seat.ColIndex, seat.SeatType, seat.Label, seat.Block, seat.IsBlocked, seat.BlockReason)
	saved, err := scanSeat(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSeatAlreadyAssigned
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	saved.Assignment = seat.Assignment
	*seat = *saved
	return nil
}

func (r *PGSeatRepository) SetBlocked(ctx context.Context, seatID string, blocked bool, reason string) (*domain.Seat, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	seat, err := lockSeat(ctx, tx, seatID)
	if err != nil {
		return nil, err
	}
	if blocked {
		if seat.SeatType == domain.SeatTypeEmpty {
			return nil, domain.ErrSeatUnavailable
		}
		var held bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM seat_assignments WHERE seat_id=$1)`, seatID).Scan(&held); err != nil {
			return nil, err
		}
		if held {
			return nil, domain.ErrSeatAlreadyAssigned
		}
	} else {
		reason = ""
	}

	if _, err := tx.Exec(ctx, `UPDATE seats SET is_blocked=$2, block_reason=$3 WHERE id=$1`, seatID, blocked, reason); err != nil {
		return nil, err
	}
	updated, err := refreshSeatStatus(ctx, tx, seatID)
	if err != nil {
		return nil, err
	}
	return updated, tx.Commit(ctx)
}

var _ SeatRepository = (*PGSeatRepository)(nil)
