// Package repository is the storage boundary of the seat engine. Every write that
// the engine relies on for correctness is a single conditional operation here:
// insert-if-absent on (seat, transport), delete-if-present, block-if-unassigned.
package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
)

type SeatRepository interface {
	CreateMap(ctx context.Context, m *domain.SeatMap, seats []domain.Seat) error
	GetMap(ctx context.Context, id string) (*domain.SeatMap, error)
	// ListSeats returns the map's seats ordered by row and column. Assignment carries the
	// assignment of transportID when there is one, otherwise the seat's earliest one.
	ListSeats(ctx context.Context, mapID, transportID string) ([]domain.Seat, error)
	GetSeat(ctx context.Context, id string) (*domain.Seat, error)
	// SaveSeat refuses (ErrSeatAlreadyAssigned) to block a seat that holds an assignment or
	// to give it a type passengers cannot book.
	SaveSeat(ctx context.Context, seat *domain.Seat) error
	// SetBlocked refuses to block a seat that holds an assignment (ErrSeatAlreadyAssigned)
	// or an empty cell (ErrSeatUnavailable).
	SetBlocked(ctx context.Context, seatID string, blocked bool, reason string) (*domain.Seat, error)
}

type AssignmentRepository interface {
	// InsertIfAbsent creates the assignment only if (seat, transport) is free and the
	// seat is bookable and not blocked. It marks the seat booked and returns it.
	InsertIfAbsent(ctx context.Context, a *domain.SeatAssignment) (*domain.Seat, error)
	// DeleteIfPresent removes the assignment for (seat, transport) and returns it together
	// with the seat after its status was recomputed.
	DeleteIfPresent(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, *domain.Seat, error)
	Find(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, error)
	Update(ctx context.Context, id string, patch domain.AssignmentPatch, at time.Time) (*domain.SeatAssignment, error)
	ListByTransport(ctx context.Context, transportID string) ([]domain.SeatAssignment, error)
	ListBySeat(ctx context.Context, seatID string) ([]domain.SeatAssignment, error)
}

// AtomicMover is implemented by stores that can relocate an assignment inside one
// transaction. A failed move leaves the source assignment untouched.
type AtomicMover interface {
	MoveAssignment(ctx context.Context, fromSeatID, toSeatID, transportID, newID string, at time.Time) (*MoveRecord, error)
}

type MoveRecord struct {
	Old  domain.SeatAssignment
	New  domain.SeatAssignment
	From domain.Seat
	To   domain.Seat
}

type GuideRepository interface {
	GetByID(ctx context.Context, id string) (*domain.TourGuideAssignment, error)
	// SetAssignedSeat stores seatID only while the guide still holds expected (nil for none);
	// otherwise it fails with ErrGuideBusy and changes nothing.
	SetAssignedSeat(ctx context.Context, id string, expected, seatID *string) (*domain.TourGuideAssignment, error)
}

type OperationRepository interface {
	// Append stores op at the end of the log and fills Seq.
	Append(ctx context.Context, op *domain.SeatOperation) error
	// ListByTransport returns the newest limit entries (all when limit <= 0), oldest first.
	ListByTransport(ctx context.Context, transportID string, limit int) ([]domain.SeatOperation, error)
}

// PassengerSource reads passengers of a transport that have no seat yet. The records
// belong to the booking subsystem.
type PassengerSource interface {
	ListUnassigned(ctx context.Context, transportID string) ([]domain.UnassignedPassenger, error)
}
