// Package assignment is the only place that creates, moves or removes seat assignments.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/repository"
	"github.com/google/uuid"
)

type AssignmentUseCase interface {
	Assign(ctx context.Context, input AssignInput) (*domain.SeatAssignment, error)
	Free(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, error)
	Move(ctx context.Context, fromSeatID, toSeatID, transportID string) (*MoveResult, error)
	Update(ctx context.Context, assignmentID string, patch domain.AssignmentPatch) (*domain.SeatAssignment, error)
	ListForTransport(ctx context.Context, transportID string) ([]domain.SeatAssignment, error)
	BulkAssign(ctx context.Context, transportID string, items []BulkItem) (*BulkResult, error)
}

// Recorder appends operation log entries.
type Recorder interface {
	Record(ctx context.Context, op *domain.SeatOperation) error
}

// SnapshotInvalidator drops cached seat-map snapshots after a mutation.
type SnapshotInvalidator interface {
	InvalidateSnapshot(ctx context.Context, mapID, transportID string) error
}

type AssignInput struct {
	SeatID         string `json:"seat_id"`
	TransportID    string `json:"transport_id"`
	PassengerName  string `json:"passenger_name"`
	BookingRef     string `json:"booking_ref"`
	Preferences    string `json:"preferences"`
	PreferenceType string `json:"preference_type"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
}

func (in AssignInput) validate() error {
	switch {
	case strings.TrimSpace(in.SeatID) == "":
		return fmt.Errorf("%w: seat_id is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.TransportID) == "":
		return fmt.Errorf("%w: transport_id is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.PassengerName) == "":
		return fmt.Errorf("%w: passenger_name is required", domain.ErrInvalidInput)
	}
	return nil
}

type MoveResult struct {
	Old domain.SeatAssignment `json:"old_assignment"`
	New domain.SeatAssignment `json:"new_assignment"`
}

type AssignmentService struct {
	seats       repository.SeatRepository
	assignments repository.AssignmentRepository
	log         Recorder
	cache       SnapshotInvalidator
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

type AssignmentServiceOption func(*AssignmentService)

func WithSnapshotCache(c SnapshotInvalidator) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.cache = c
	}
}

func WithClock(now func() time.Time) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.newID = newID
	}
}

func NewAssignmentService(
	seats repository.SeatRepository,
	assignments repository.AssignmentRepository,
	log Recorder,
	logger *slog.Logger,
	opts ...AssignmentServiceOption,
) *AssignmentService {
	service := &AssignmentService{
		seats:       seats,
		assignments: assignments,
		log:         log,
		logger:      logger.With("component", "assignment"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *AssignmentService) Assign(ctx context.Context, input AssignInput) (*domain.SeatAssignment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	a := &domain.SeatAssignment{
		ID:             s.newID(),
		SeatID:         input.SeatID,
		TransportID:    input.TransportID,
		PassengerName:  strings.TrimSpace(input.PassengerName),
		BookingRef:     input.BookingRef,
		Preferences:    input.Preferences,
		PreferenceType: input.PreferenceType,
		Phone:          input.Phone,
		Email:          input.Email,
		AssignedAt:     s.now().UTC(),
	}
	seat, err := s.assignments.InsertIfAbsent(ctx, a)
	if err != nil {
		return nil, err
	}

	s.record(ctx, &domain.SeatOperation{
		Kind:          domain.OperationAssign,
		TransportID:   a.TransportID,
		SeatID:        seat.ID,
		SeatLabel:     seat.Label,
		PassengerName: a.PassengerName,
	})
	s.invalidate(ctx, seat.SeatMapID, a.TransportID)
	s.logger.InfoContext(ctx, "seat assigned", "seat", seat.Label, "transport_id", a.TransportID, "assignment_id", a.ID)
	return a, nil
}

func (s *AssignmentService) Free(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, error) {
	removed, seat, err := s.assignments.DeleteIfPresent(ctx, seatID, transportID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, &domain.SeatOperation{
		Kind:          domain.OperationFree,
		TransportID:   transportID,
		SeatID:        seat.ID,
		SeatLabel:     seat.Label,
		PassengerName: removed.PassengerName,
	})
	s.invalidate(ctx, seat.SeatMapID, transportID)
	s.logger.InfoContext(ctx, "seat freed", "seat", seat.Label, "transport_id", transportID, "assignment_id", removed.ID)
	return removed, nil
}

// Move relocates a passenger. Stores implementing repository.AtomicMover move in one
// transaction. Otherwise the source is freed first and a destination failure is reported
// as *domain.MoveFailedError carrying the freed assignment; the source is not restored.
func (s *AssignmentService) Move(ctx context.Context, fromSeatID, toSeatID, transportID string) (*MoveResult, error) {
	if fromSeatID == toSeatID {
		return nil, fmt.Errorf("%w: source and destination seat are the same", domain.ErrInvalidInput)
	}
	if _, err := s.assignments.Find(ctx, fromSeatID, transportID); err != nil {
		return nil, err
	}
	if err := s.checkDestination(ctx, toSeatID, transportID); err != nil {
		return nil, err
	}

	if mover, ok := s.assignments.(repository.AtomicMover); ok {
		rec, err := mover.MoveAssignment(ctx, fromSeatID, toSeatID, transportID, s.newID(), s.now().UTC())
		if err != nil {
			return nil, err
		}
		s.recordMove(ctx, transportID, rec.Old.PassengerName, rec.From, rec.To)
		return &MoveResult{Old: rec.Old, New: rec.New}, nil
	}

	removed, from, err := s.assignments.DeleteIfPresent(ctx, fromSeatID, transportID)
	if err != nil {
		return nil, err
	}
	moved := removed.Relocated(s.newID(), toSeatID, s.now().UTC())
	to, err := s.assignments.InsertIfAbsent(ctx, &moved)
	if err != nil {
		s.record(ctx, &domain.SeatOperation{
			Kind:          domain.OperationFree,
			TransportID:   transportID,
			SeatID:        from.ID,
			SeatLabel:     from.Label,
			PassengerName: removed.PassengerName,
		})
		s.invalidate(ctx, from.SeatMapID, transportID)
		s.logger.WarnContext(ctx, "move failed after source was freed",
			"from", from.Label, "to_seat_id", toSeatID, "transport_id", transportID, "error", err)
		return nil, &domain.MoveFailedError{Freed: *removed, Err: err}
	}

	s.recordMove(ctx, transportID, removed.PassengerName, *from, *to)
	return &MoveResult{Old: *removed, New: moved}, nil
}

func (s *AssignmentService) checkDestination(ctx context.Context, seatID, transportID string) error {
	seat, err := s.seats.GetSeat(ctx, seatID)
	if err != nil {
		return err
	}
	if seat.IsBlocked || !seat.SeatType.Bookable() {
		return domain.ErrSeatUnavailable
	}
	_, err = s.assignments.Find(ctx, seatID, transportID)
	switch {
	case err == nil:
		return domain.ErrSeatAlreadyAssigned
	case errors.Is(err, domain.ErrAssignmentNotFound):
		return nil
	default:
		return err
	}
}

func (s *AssignmentService) recordMove(ctx context.Context, transportID, passenger string, from, to domain.Seat) {
	s.record(ctx, &domain.SeatOperation{
		Kind:          domain.OperationMove,
		TransportID:   transportID,
		SeatID:        to.ID,
		SeatLabel:     to.Label,
		PassengerName: passenger,
		FromSeatID:    from.ID,
		FromSeatLabel: from.Label,
		ToSeatID:      to.ID,
		ToSeatLabel:   to.Label,
	})
	s.invalidate(ctx, to.SeatMapID, transportID)
	s.logger.InfoContext(ctx, "seat moved", "from", from.Label, "to", to.Label, "transport_id", transportID)
}

func (s *AssignmentService) Update(ctx context.Context, assignmentID string, patch domain.AssignmentPatch) (*domain.SeatAssignment, error) {
	if patch.PassengerName != nil && strings.TrimSpace(*patch.PassengerName) == "" {
		return nil, fmt.Errorf("%w: passenger_name must not be empty", domain.ErrInvalidInput)
	}
	updated, err := s.assignments.Update(ctx, assignmentID, patch, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if seat, err := s.seats.GetSeat(ctx, updated.SeatID); err == nil {
			s.invalidate(ctx, seat.SeatMapID, updated.TransportID)
		}
	}
	return updated, nil
}

func (s *AssignmentService) ListForTransport(ctx context.Context, transportID string) ([]domain.SeatAssignment, error) {
	return s.assignments.ListByTransport(ctx, transportID)
}

// record never fails the caller: the mutation is already committed.
func (s *AssignmentService) record(ctx context.Context, op *domain.SeatOperation) {
	if s.log == nil {
		return
	}
	if err := s.log.Record(ctx, op); err != nil {
		s.logger.WarnContext(ctx, "operation log append failed", "kind", op.Kind, "seat", op.SeatLabel, "error", err)
	}
}

func (s *AssignmentService) invalidate(ctx context.Context, mapID, transportID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSnapshot(ctx, mapID, transportID); err != nil {
		s.logger.WarnContext(ctx, "snapshot invalidation failed", "map_id", mapID, "error", err)
	}
}

var _ AssignmentUseCase = (*AssignmentService)(nil)
