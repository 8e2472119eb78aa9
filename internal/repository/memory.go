package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
)

type assignmentKey struct {
	seatID      string
	transportID string
}

// MemoryStore keeps everything in maps behind one RWMutex. Each method holds the lock
// for its whole check-and-write, which gives the same conditional semantics as the
// Postgres store.
type MemoryStore struct {
	mu          sync.RWMutex
	maps        map[string]*domain.SeatMap
	seats       map[string]*domain.Seat
	assignments map[assignmentKey]*domain.SeatAssignment
	guides      map[string]*domain.TourGuideAssignment
	operations  []domain.SeatOperation
	passengers  map[string][]domain.UnassignedPassenger
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		maps:        make(map[string]*domain.SeatMap),
		seats:       make(map[string]*domain.Seat),
		assignments: make(map[assignmentKey]*domain.SeatAssignment),
		guides:      make(map[string]*domain.TourGuideAssignment),
		passengers:  make(map[string][]domain.UnassignedPassenger),
		now:         time.Now,
	}
}

func (s *MemoryStore) CreateMap(ctx context.Context, m *domain.SeatMap, seats []domain.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.maps[m.ID]; exists {
		return fmt.Errorf("seat map %s already exists", m.ID)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	stored := *m
	s.maps[m.ID] = &stored
	for i := range seats {
		seat := seats[i]
		seat.Assignment = nil
		s.seats[seat.ID] = &seat
	}
	return nil
}

func (s *MemoryStore) GetMap(ctx context.Context, id string) (*domain.SeatMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.maps[id]
	if !ok {
		return nil, domain.ErrMapNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) ListSeats(ctx context.Context, mapID, transportID string) ([]domain.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.maps[mapID]; !ok {
		return nil, domain.ErrMapNotFound
	}
	seats := make([]domain.Seat, 0)
	for _, seat := range s.seats {
		if seat.SeatMapID != mapID {
			continue
		}
		seats = append(seats, s.withAssignment(*seat, transportID))
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].RowIndex != seats[j].RowIndex {
			return seats[i].RowIndex < seats[j].RowIndex
		}
		return seats[i].ColIndex < seats[j].ColIndex
	})
	return seats, nil
}

func (s *MemoryStore) GetSeat(ctx context.Context, id string) (*domain.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seat, ok := s.seats[id]
	if !ok {
		return nil, domain.ErrSeatNotFound
	}
	cp := s.withAssignment(*seat, "")
	return &cp, nil
}

func (s *MemoryStore) SaveSeat(ctx context.Context, seat *domain.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.maps[seat.SeatMapID]; !ok {
		return domain.ErrMapNotFound
	}
	for id, existing := range s.seats {
		if id != seat.ID && existing.SeatMapID == seat.SeatMapID &&
			existing.RowIndex == seat.RowIndex && existing.ColIndex == seat.ColIndex {
			return fmt.Errorf("%w: cell (%d,%d) already holds seat %s", domain.ErrInvariantViolation, seat.RowIndex, seat.ColIndex, id)
		}
	}
	held := s.hasAssignments(seat.ID)
	if held && (seat.IsBlocked || !seat.SeatType.Bookable()) {
		return domain.ErrSeatAlreadyAssigned
	}
	stored := *seat
	stored.Assignment = nil
	stored.Status = statusFor(held, stored.IsBlocked)
	stored.UpdatedAt = s.now()
	s.seats[seat.ID] = &stored
	seat.Status = stored.Status
	seat.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *MemoryStore) SetBlocked(ctx context.Context, seatID string, blocked bool, reason string) (*domain.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[seatID]
	if !ok {
		return nil, domain.ErrSeatNotFound
	}
	held := s.hasAssignments(seatID)
	if blocked {
		if seat.SeatType == domain.SeatTypeEmpty {
			return nil, domain.ErrSeatUnavailable
		}
		if held {
			return nil, domain.ErrSeatAlreadyAssigned
		}
		seat.BlockReason = reason
	} else {
		seat.BlockReason = ""
	}
	seat.IsBlocked = blocked
	seat.Status = statusFor(held, blocked)
	seat.UpdatedAt = s.now()
	cp := *seat
	return &cp, nil
}

func (s *MemoryStore) InsertIfAbsent(ctx context.Context, a *domain.SeatAssignment) (*domain.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[a.SeatID]
	if !ok {
		return nil, domain.ErrSeatNotFound
	}
	if seat.IsBlocked || !seat.SeatType.Bookable() {
		return nil, domain.ErrSeatUnavailable
	}
	key := assignmentKey{seatID: a.SeatID, transportID: a.TransportID}
	if _, taken := s.assignments[key]; taken {
		return nil, domain.ErrSeatAlreadyAssigned
	}
	stored := *a
	s.assignments[key] = &stored
	seat.Status = domain.SeatStatusBooked
	seat.UpdatedAt = s.now()
	cp := *seat
	cp.Assignment = &stored
	return &cp, nil
}

func (s *MemoryStore) DeleteIfPresent(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, *domain.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := assignmentKey{seatID: seatID, transportID: transportID}
	a, ok := s.assignments[key]
	if !ok {
		return nil, nil, domain.ErrAssignmentNotFound
	}
	delete(s.assignments, key)
	seat := s.seats[seatID]
	seat.Status = statusFor(s.hasAssignments(seatID), seat.IsBlocked)
	seat.UpdatedAt = s.now()
	removed := *a
	cp := *seat
	return &removed, &cp, nil
}

func (s *MemoryStore) Find(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assignments[assignmentKey{seatID: seatID, transportID: transportID}]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, patch domain.AssignmentPatch, at time.Time) (*domain.SeatAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.assignments {
		if a.ID != id {
			continue
		}
		patch.Apply(a)
		updated := at
		a.UpdatedAt = &updated
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrAssignmentNotFound
}

func (s *MemoryStore) ListByTransport(ctx context.Context, transportID string) ([]domain.SeatAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SeatAssignment, 0)
	for key, a := range s.assignments {
		if key.transportID == transportID {
			out = append(out, *a)
		}
	}
	sortAssignments(out)
	return out, nil
}

func (s *MemoryStore) ListBySeat(ctx context.Context, seatID string) ([]domain.SeatAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SeatAssignment, 0)
	for key, a := range s.assignments {
		if key.seatID == seatID {
			out = append(out, *a)
		}
	}
	sortAssignments(out)
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*domain.TourGuideAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guides[id]
	if !ok {
		return nil, domain.ErrGuideNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *MemoryStore) SetAssignedSeat(ctx context.Context, id string, expected, seatID *string) (*domain.TourGuideAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guides[id]
	if !ok {
		return nil, domain.ErrGuideNotFound
	}
	if !sameSeatID(g.AssignedSeatID, expected) {
		return nil, domain.ErrGuideBusy
	}
	if seatID != nil {
		v := *seatID
		g.AssignedSeatID = &v
	} else {
		g.AssignedSeatID = nil
	}
	g.UpdatedAt = s.now()
	cp := *g
	return &cp, nil
}

// AddGuide seeds a guide record; guides are created by the trip CRUD layer.
func (s *MemoryStore) AddGuide(g domain.TourGuideAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guides[g.ID] = &g
}

func (s *MemoryStore) Append(ctx context.Context, op *domain.SeatOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	op.Seq = int64(len(s.operations) + 1)
	if op.CreatedAt.IsZero() {
		op.CreatedAt = s.now()
	}
	s.operations = append(s.operations, *op)
	return nil
}

func (s *MemoryStore) ListByTransportOps(transportID string, limit int) []domain.SeatOperation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SeatOperation, 0)
	for _, op := range s.operations {
		if op.TransportID == transportID {
			out = append(out, op)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// AddPassengers seeds booking records for a transport.
func (s *MemoryStore) AddPassengers(transportID string, passengers ...domain.UnassignedPassenger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passengers[transportID] = append(s.passengers[transportID], passengers...)
}

func (s *MemoryStore) ListUnassigned(ctx context.Context, transportID string) ([]domain.UnassignedPassenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UnassignedPassenger, 0)
	for _, p := range s.passengers[transportID] {
		seated := false
		for key, a := range s.assignments {
			if key.transportID == transportID && a.BookingRef == p.BookingRef && a.PassengerName == p.Name {
				seated = true
				break
			}
		}
		if !seated {
			out = append(out, p)
		}
	}
	return out, nil
}

// Operations exposes the operation log half of the store under OperationRepository.
func (s *MemoryStore) Operations() OperationRepository {
	return memoryOperations{s}
}

type memoryOperations struct{ s *MemoryStore }

func (o memoryOperations) Append(ctx context.Context, op *domain.SeatOperation) error {
	return o.s.Append(ctx, op)
}

func (o memoryOperations) ListByTransport(ctx context.Context, transportID string, limit int) ([]domain.SeatOperation, error) {
	return o.s.ListByTransportOps(transportID, limit), nil
}

func (s *MemoryStore) withAssignment(seat domain.Seat, transportID string) domain.Seat {
	var found *domain.SeatAssignment
	for key, a := range s.assignments {
		if key.seatID != seat.ID {
			continue
		}
		if transportID != "" && key.transportID == transportID {
			found = a
			break
		}
		if found == nil || a.AssignedAt.Before(found.AssignedAt) {
			found = a
		}
	}
	if found != nil {
		cp := *found
		seat.Assignment = &cp
	}
	return seat
}

func (s *MemoryStore) hasAssignments(seatID string) bool {
	for key := range s.assignments {
		if key.seatID == seatID {
			return true
		}
	}
	return false
}

func sameSeatID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func statusFor(held, blocked bool) domain.SeatStatus {
	switch {
	case held:
		return domain.SeatStatusBooked
	case blocked:
		return domain.SeatStatusBlocked
	default:
		return domain.SeatStatusAvailable
	}
}

func sortAssignments(out []domain.SeatAssignment) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].AssignedAt.Before(out[j].AssignedAt)
		}
		return out[i].ID < out[j].ID
	})
}

var (
	_ SeatRepository       = (*MemoryStore)(nil)
	_ AssignmentRepository = (*MemoryStore)(nil)
	_ GuideRepository      = (*MemoryStore)(nil)
	_ PassengerSource      = (*MemoryStore)(nil)
	_ OperationRepository  = memoryOperations{}
)
