package layout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/repository"
	"github.com/Domenick1991/tripseats/internal/service/assignment"
	"github.com/Domenick1991/tripseats/internal/service/oplog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) GetSnapshot(ctx context.Context, mapID, transportID string) (*domain.SeatMapSnapshot, error) {
	args := m.Called(ctx, mapID, transportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatMapSnapshot), args.Error(1)
}

func (m *MockSnapshotCache) SetSnapshot(ctx context.Context, snap *domain.SeatMapSnapshot) error {
	return m.Called(ctx, snap).Error(0)
}

func (m *MockSnapshotCache) InvalidateSnapshot(ctx context.Context, mapID, transportID string) error {
	return m.Called(ctx, mapID, transportID).Error(0)
}

type env struct {
	store  *repository.MemoryStore
	engine *assignment.AssignmentService
	svc    *LayoutService
	mapID  string
}

// newEnv creates a 2x3 map: row 0 is window, seat, aisle marker; row 1 is left empty.
func newEnv(t *testing.T, opts ...LayoutServiceOption) env {
	t.Helper()
	store := repository.NewMemoryStore()
	engine := assignment.NewAssignmentService(store, store, oplog.New(store.Operations(), discard()), discard())
	svc := NewLayoutService(store, store, engine, discard(), opts...)

	snap, err := svc.CreateMap(context.Background(), CreateMapInput{
		Name: "Coach 1",
		Rows: 2,
		Cols: 3,
		Cells: []CellInput{
			{Row: 0, Col: 0, SeatType: domain.SeatTypeWindow, Block: "left"},
			{Row: 0, Col: 1, SeatType: domain.SeatTypeSeat},
			{Row: 0, Col: 2, SeatType: domain.SeatTypeAisle},
		},
	})
	require.NoError(t, err)
	return env{store: store, engine: engine, svc: svc, mapID: snap.Map.ID}
}

func (e env) seatAt(t *testing.T, row, col int) domain.Seat {
	t.Helper()
	snap, err := e.svc.Snapshot(context.Background(), e.mapID, "")
	require.NoError(t, err)
	for _, s := range snap.Seats {
		if s.RowIndex == row && s.ColIndex == col {
			return s
		}
	}
	t.Fatalf("no seat at (%d,%d)", row, col)
	return domain.Seat{}
}

func TestLayoutService_CreateMap(t *testing.T) {
	e := newEnv(t)

	snap, err := e.svc.Snapshot(context.Background(), e.mapID, "T1")
	require.NoError(t, err)
	assert.Equal(t, "Coach 1", snap.Map.Name)
	assert.Equal(t, 1.0, snap.Map.Zoom)
	require.Len(t, snap.Seats, 3)
	assert.Equal(t, "1A", snap.Seats[0].Label)
	assert.Equal(t, "left", snap.Seats[0].Block)
	assert.Equal(t, domain.SeatTypeAisle, snap.Seats[2].SeatType)
	assert.Empty(t, snap.Assignments)
}

func TestLayoutService_CreateMap_Invalid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateMap(ctx, CreateMapInput{Rows: 0, Cols: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.svc.CreateMap(ctx, CreateMapInput{Rows: 1, Cols: 1, Cells: []CellInput{{Row: 3, Col: 0, SeatType: domain.SeatTypeSeat}}})
	assert.ErrorIs(t, err, domain.ErrOutOfBounds)
}

func TestLayoutService_SetSeatType_NewCell(t *testing.T) {
	e := newEnv(t)
	label := "Guide"

	seat, err := e.svc.SetSeatType(context.Background(), e.mapID, 1, 0, domain.SeatTypeGuide, &label)
	require.NoError(t, err)
	assert.Equal(t, "Guide", seat.Label)
	assert.Equal(t, domain.SeatTypeGuide, e.seatAt(t, 1, 0).SeatType)
}

func TestLayoutService_SetSeatType_EmptyFreesAssignments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seatID := e.seatAt(t, 0, 1).ID

	_, err := e.engine.Assign(ctx, assignment.AssignInput{SeatID: seatID, TransportID: "T1", PassengerName: "Jane"})
	require.NoError(t, err)
	_, err = e.engine.Assign(ctx, assignment.AssignInput{SeatID: seatID, TransportID: "T2", PassengerName: "Paul"})
	require.NoError(t, err)

	seat, err := e.svc.SetSeatType(ctx, e.mapID, 0, 1, domain.SeatTypeEmpty, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SeatStatusAvailable, seat.Status)

	for _, transport := range []string{"T1", "T2"} {
		list, err := e.engine.ListForTransport(ctx, transport)
		require.NoError(t, err)
		assert.Empty(t, list)
	}
}

func TestLayoutService_MarkerOnOccupiedSeat(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seatID := e.seatAt(t, 0, 0).ID

	_, err := e.engine.Assign(ctx, assignment.AssignInput{SeatID: seatID, TransportID: "T1", PassengerName: "Jane"})
	require.NoError(t, err)

	_, err = e.svc.SetSeatType(ctx, e.mapID, 0, 0, domain.SeatTypeToilet, nil)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestLayoutService_SetSeatStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	seat, err := e.svc.SetSeatStatus(ctx, e.mapID, 0, 1, domain.SeatStatusBlocked)
	require.NoError(t, err)
	assert.True(t, seat.IsBlocked)
	assert.True(t, e.seatAt(t, 0, 1).IsBlocked)

	_, err = e.svc.SetSeatStatus(ctx, e.mapID, 0, 0, domain.SeatStatusBooked)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = e.svc.SetSeatStatus(ctx, e.mapID, 5, 0, domain.SeatStatusBlocked)
	assert.ErrorIs(t, err, domain.ErrOutOfBounds)
}

func TestLayoutService_UpdateSeat(t *testing.T) {
	e := newEnv(t)
	label := "W1"
	blocked := true

	seat, err := e.svc.UpdateSeat(context.Background(), e.mapID, 0, 0, domain.SeatPatch{Label: &label, IsBlocked: &blocked})
	require.NoError(t, err)
	assert.Equal(t, "W1", seat.Label)
	assert.Equal(t, domain.SeatStatusBlocked, seat.Status)
}

func TestLayoutService_SnapshotPerTransport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seatID := e.seatAt(t, 0, 0).ID

	_, err := e.engine.Assign(ctx, assignment.AssignInput{SeatID: seatID, TransportID: "T1", PassengerName: "Jane"})
	require.NoError(t, err)

	t1, err := e.svc.Snapshot(ctx, e.mapID, "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatStatusBooked, t1.Seats[0].Status)
	require.Len(t, t1.Assignments, 1)

	t2, err := e.svc.Snapshot(ctx, e.mapID, "T2")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatStatusAvailable, t2.Seats[0].Status)
	assert.Nil(t, t2.Seats[0].Assignment)
	assert.Empty(t, t2.Assignments)
}

func TestLayoutService_SnapshotCache(t *testing.T) {
	cache := &MockSnapshotCache{}
	cached := &domain.SeatMapSnapshot{Map: domain.SeatMap{ID: "M9"}, TransportID: "T1"}
	cache.On("GetSnapshot", mock.Anything, "M9", "T1").Return(cached, nil)

	svc := NewLayoutService(repository.NewMemoryStore(), repository.NewMemoryStore(), nil, discard(), WithSnapshotCache(cache))
	snap, err := svc.Snapshot(context.Background(), "M9", "T1")

	require.NoError(t, err)
	assert.Same(t, cached, snap)
	cache.AssertExpectations(t)
}

func TestLayoutService_SnapshotCacheMissAndInvalidate(t *testing.T) {
	cache := &MockSnapshotCache{}
	cache.On("GetSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))
	cache.On("SetSnapshot", mock.Anything, mock.AnythingOfType("*domain.SeatMapSnapshot")).Return(nil)
	cache.On("InvalidateSnapshot", mock.Anything, mock.Anything, "").Return(nil)

	e := newEnv(t, WithSnapshotCache(cache), WithClock(func() time.Time { return time.Unix(0, 0) }))
	ctx := context.Background()

	snap, err := e.svc.Snapshot(ctx, e.mapID, "T1")
	require.NoError(t, err)
	assert.Len(t, snap.Seats, 3)

	_, err = e.svc.SetSeatStatus(ctx, e.mapID, 0, 1, domain.SeatStatusBlocked)
	require.NoError(t, err)
	cache.AssertCalled(t, "InvalidateSnapshot", mock.Anything, e.mapID, "")
}

func TestLayoutService_UnknownMap(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.SetSeatType(context.Background(), "nope", 0, 0, domain.SeatTypeSeat, nil)
	assert.ErrorIs(t, err, domain.ErrMapNotFound)
}

func TestLayoutService_UpdateSeat_SeatType(t *testing.T) {
	ctx := context.Background()

	t.Run("non-bookable type on occupied seat is refused", func(t *testing.T) {
		e := newEnv(t)
		seatID := e.seatAt(t, 0, 1).ID
		_, err := e.engine.Assign(ctx, assignment.AssignInput{SeatID: seatID, TransportID: "T1", PassengerName: "Jane"})
		require.NoError(t, err)

		driver := domain.SeatTypeDriver
		_, err = e.svc.UpdateSeat(ctx, e.mapID, 0, 1, domain.SeatPatch{SeatType: &driver})
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)

		seat := e.seatAt(t, 0, 1)
		assert.Equal(t, domain.SeatTypeSeat, seat.SeatType)
		assert.Equal(t, domain.SeatStatusBooked, seat.Status)
	})

	t.Run("blocked seat set to empty is unblocked", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.svc.SetSeatStatus(ctx, e.mapID, 0, 0, domain.SeatStatusBlocked)
		require.NoError(t, err)

		empty := domain.SeatTypeEmpty
		seat, err := e.svc.UpdateSeat(ctx, e.mapID, 0, 0, domain.SeatPatch{SeatType: &empty})
		require.NoError(t, err)
		assert.False(t, seat.IsBlocked)
		assert.Equal(t, domain.SeatStatusAvailable, seat.Status)

		stored := e.seatAt(t, 0, 0)
		assert.Equal(t, domain.SeatTypeEmpty, stored.SeatType)
		assert.False(t, stored.IsBlocked)
	})
}

// lateAssignFreer frees through the engine and then lets one assign land before the
// layout service writes the cell.
type lateAssignFreer struct {
	engine *assignment.AssignmentService
	after  func()
	ran    bool
}

func (f *lateAssignFreer) Free(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, error) {
	removed, err := f.engine.Free(ctx, seatID, transportID)
	if !f.ran {
		f.ran = true
		f.after()
	}
	return removed, err
}

func TestLayoutService_EmptyRefusedWhenAssignLandsAfterFree(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seatID := e.seatAt(t, 0, 1).ID
	_, err := e.engine.Assign(ctx, assignment.AssignInput{SeatID: seatID, TransportID: "T1", PassengerName: "Jane"})
	require.NoError(t, err)

	freer := &lateAssignFreer{engine: e.engine}
	freer.after = func() {
		_, err := e.engine.Assign(ctx, assignment.AssignInput{SeatID: seatID, TransportID: "T2", PassengerName: "Paul"})
		require.NoError(t, err)
	}
	svc := NewLayoutService(e.store, e.store, freer, discard())

	empty := domain.SeatTypeEmpty
	_, err = svc.UpdateSeat(ctx, e.mapID, 0, 1, domain.SeatPatch{SeatType: &empty})
	assert.ErrorIs(t, err, domain.ErrSeatAlreadyAssigned)

	seat := e.seatAt(t, 0, 1)
	assert.Equal(t, domain.SeatTypeSeat, seat.SeatType)
	assert.Equal(t, domain.SeatStatusBooked, seat.Status)
	list, err := e.engine.ListForTransport(ctx, "T2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
