package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPool connects to TRIPSEATS_TEST_DSN and applies the schema; without it the test is skipped.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TRIPSEATS_TEST_DSN")
	if dsn == "" {
		t.Skip("TRIPSEATS_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestPGAssignmentRepository_MoveAssignment(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()

	mapID := uuid.NewString()
	from, to := uuid.NewString(), uuid.NewString()
	seats := NewSeatRepository(pool)
	require.NoError(t, seats.CreateMap(ctx, &domain.SeatMap{ID: mapID, Name: "Bus", Rows: 1, Cols: 2}, []domain.Seat{
		{ID: from, SeatMapID: mapID, RowIndex: 0, ColIndex: 0, SeatType: domain.SeatTypeSeat, Status: domain.SeatStatusAvailable, Label: "1A"},
		{ID: to, SeatMapID: mapID, RowIndex: 0, ColIndex: 1, SeatType: domain.SeatTypeSeat, Status: domain.SeatStatusAvailable, Label: "1B"},
	}))

	repo := NewAssignmentRepository(pool)
	transport := uuid.NewString()
	_, err := repo.InsertIfAbsent(ctx, &domain.SeatAssignment{ID: uuid.NewString(), SeatID: from, TransportID: transport, PassengerName: "Max", AssignedAt: time.Now()})
	require.NoError(t, err)

	_, err = repo.InsertIfAbsent(ctx, &domain.SeatAssignment{ID: uuid.NewString(), SeatID: from, TransportID: transport, PassengerName: "Eva", AssignedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrSeatAlreadyAssigned)

	rec, err := repo.MoveAssignment(ctx, from, to, transport, uuid.NewString(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Max", rec.New.PassengerName)
	assert.Equal(t, domain.SeatStatusAvailable, rec.From.Status)
	assert.Equal(t, domain.SeatStatusBooked, rec.To.Status)

	_, err = repo.Find(ctx, from, transport)
	assert.ErrorIs(t, err, domain.ErrAssignmentNotFound)

	_, err = seats.SetBlocked(ctx, to, true, "Reiseleiter: Anna")
	assert.ErrorIs(t, err, domain.ErrSeatAlreadyAssigned)

	ops := NewOperationRepository(pool)
	require.NoError(t, ops.Append(ctx, &domain.SeatOperation{ID: uuid.NewString(), Kind: domain.OperationMove, TransportID: transport, FromSeatID: from, ToSeatID: to}))
	list, err := ops.ListByTransport(ctx, transport, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotZero(t, list[0].Seq)
}

func TestNewPGRepositories(t *testing.T) {
	pool := &pgxpool.Pool{}
	assert.NotNil(t, NewSeatRepository(pool))
	assert.NotNil(t, NewAssignmentRepository(pool))
	assert.NotNil(t, NewGuideRepository(pool))
	assert.NotNil(t, NewOperationRepository(pool))
	assert.NotNil(t, NewPassengerSource(pool))

	var _ AtomicMover = NewAssignmentRepository(pool)
}
