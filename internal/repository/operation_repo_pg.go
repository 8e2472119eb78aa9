package repository

import (
	"context"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGOperationRepository struct {
	db *pgxpool.Pool
}

func NewOperationRepository(db *pgxpool.Pool) OperationRepository {
	return &PGOperationRepository{db: db}
}

func (r *PGOperationRepository) Append(ctx context.Context, op *domain.SeatOperation) error {
	pairs := op.Pairs
	if pairs == nil {
		pairs = []domain.BulkPair{}
	}
	return r.db.QueryRow(ctx, `INSERT INTO seat_operations (id, kind, transport_id, seat_id, seat_label, passenger_name,
			from_seat_id, from_seat_label, to_seat_id, to_seat_label, reason, pairs, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING seq, created_at`,
		op.ID, op.Kind, op.TransportID, op.SeatID, op.SeatLabel, op.PassengerName,
		op.FromSeatID, op.FromSeatLabel, op.ToSeatID, op.ToSeatLabel, op.Reason, pairs, op.CreatedAt).
		Scan(&op.Seq, &op.CreatedAt)
}

func (r *PGOperationRepository) ListByTransport(ctx context.Context, transportID string, limit int) ([]domain.SeatOperation, error) {
	rows, err := r.db.Query(ctx, `SELECT seq, id, kind, transport_id, seat_id, seat_label, passenger_name,
			from_seat_id, from_seat_label, to_seat_id, to_seat_label, reason, pairs, created_at
		FROM (
			SELECT * FROM seat_operations WHERE transport_id=$1 ORDER BY seq DESC LIMIT NULLIF($2, 0)
		) recent
		ORDER BY seq`, transportID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := make([]domain.SeatOperation, 0)
	for rows.Next() {
		var op domain.SeatOperation
		if err := rows.Scan(&op.Seq, &op.ID, &op.Kind, &op.TransportID, &op.SeatID, &op.SeatLabel, &op.PassengerName,
			&op.FromSeatID, &op.FromSeatLabel, &op.ToSeatID, &op.ToSeatLabel, &op.Reason, &op.Pairs, &op.CreatedAt); err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

var _ OperationRepository = (*PGOperationRepository)(nil)
