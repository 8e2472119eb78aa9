// Package layout edits seat maps cell by cell and serves per-transport snapshots.
package layout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/grid"
	"github.com/Domenick1991/tripseats/internal/repository"
	"github.com/google/uuid"
)

type LayoutUseCase interface {
	CreateMap(ctx context.Context, input CreateMapInput) (*domain.SeatMapSnapshot, error)
	Snapshot(ctx context.Context, mapID, transportID string) (*domain.SeatMapSnapshot, error)
	SetSeatType(ctx context.Context, mapID string, row, col int, t domain.SeatType, label *string) (*domain.Seat, error)
	SetSeatStatus(ctx context.Context, mapID string, row, col int, status domain.SeatStatus) (*domain.Seat, error)
	UpdateSeat(ctx context.Context, mapID string, row, col int, patch domain.SeatPatch) (*domain.Seat, error)
}

// Freer removes assignments; the assignment engine implements it.
type Freer interface {
	Free(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, error)
}

type SnapshotCache interface {
	GetSnapshot(ctx context.Context, mapID, transportID string) (*domain.SeatMapSnapshot, error)
	SetSnapshot(ctx context.Context, snap *domain.SeatMapSnapshot) error
	InvalidateSnapshot(ctx context.Context, mapID, transportID string) error
}

type CellInput struct {
	Row      int             `json:"row"`
	Col      int             `json:"col"`
	SeatType domain.SeatType `json:"seat_type"`
	Label    *string         `json:"label,omitempty"`
	Block    string          `json:"block,omitempty"`
}

type CreateMapInput struct {
	Name        string      `json:"name"`
	Rows        int         `json:"rows"`
	Cols        int         `json:"cols"`
	RowLabeling string      `json:"row_labeling"`
	Orientation string      `json:"orientation"`
	Zoom        float64     `json:"zoom"`
	GridSize    int         `json:"grid_size"`
	Cells       []CellInput `json:"cells"`
}

type LayoutService struct {
	seats       repository.SeatRepository
	assignments repository.AssignmentRepository
	engine      Freer
	cache       SnapshotCache
	logger      *slog.Logger
	now         func() time.Time
}

type LayoutServiceOption func(*LayoutService)

func WithSnapshotCache(c SnapshotCache) LayoutServiceOption {
	return func(s *LayoutService) {
		s.cache = c
	}
}

func WithClock(now func() time.Time) LayoutServiceOption {
	return func(s *LayoutService) {
		s.now = now
	}
}

func NewLayoutService(seats repository.SeatRepository, assignments repository.AssignmentRepository, engine Freer, logger *slog.Logger, opts ...LayoutServiceOption) *LayoutService {
	s := &LayoutService{
		seats:       seats,
		assignments: assignments,
		engine:      engine,
		logger:      logger.With("component", "layout"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LayoutService) CreateMap(ctx context.Context, input CreateMapInput) (*domain.SeatMapSnapshot, error) {
	if input.Rows <= 0 || input.Cols <= 0 {
		return nil, fmt.Errorf("%w: rows and cols must be positive", domain.ErrInvalidInput)
	}
	m := domain.SeatMap{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Rows:        input.Rows,
		Cols:        input.Cols,
		RowLabeling: input.RowLabeling,
		Orientation: input.Orientation,
		Zoom:        input.Zoom,
		GridSize:    input.GridSize,
		CreatedAt:   s.now().UTC(),
	}
	if m.Zoom == 0 {
		m.Zoom = 1
	}

	g, err := grid.New(m, nil)
	if err != nil {
		return nil, err
	}
	for _, cell := range input.Cells {
		if _, err := g.SetSeatType(cell.Row, cell.Col, cell.SeatType, cell.Label); err != nil {
			return nil, err
		}
		if cell.Block != "" {
			block := cell.Block
			if _, err := g.UpdateSeat(cell.Row, cell.Col, domain.SeatPatch{Block: &block}); err != nil {
				return nil, err
			}
		}
	}

	seats := g.Seats()
	if err := s.seats.CreateMap(ctx, &m, seats); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "seat map created", "map_id", m.ID, "rows", m.Rows, "cols", m.Cols, "cells", len(seats))
	return &domain.SeatMapSnapshot{Map: m, Seats: seats, Assignments: []domain.SeatAssignment{}, TakenAt: m.CreatedAt}, nil
}

// Snapshot returns the map with seat statuses as seen by transportID. With an empty
// transportID the stored statuses are returned unchanged.
func (s *LayoutService) Snapshot(ctx context.Context, mapID, transportID string) (*domain.SeatMapSnapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.GetSnapshot(ctx, mapID, transportID)
		if err != nil {
			s.logger.WarnContext(ctx, "snapshot cache read failed", "map_id", mapID, "error", err)
		} else if snap != nil {
			return snap, nil
		}
	}

	m, err := s.seats.GetMap(ctx, mapID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListSeats(ctx, mapID, transportID)
	if err != nil {
		return nil, err
	}

	assignments := make([]domain.SeatAssignment, 0)
	for i := range seats {
		if transportID != "" {
			projectForTransport(&seats[i], transportID)
		}
		if seats[i].Assignment != nil {
			assignments = append(assignments, *seats[i].Assignment)
		}
	}

	snap := &domain.SeatMapSnapshot{
		Map:         *m,
		TransportID: transportID,
		Seats:       seats,
		Assignments: assignments,
		TakenAt:     s.now().UTC(),
	}
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snap); err != nil {
			s.logger.WarnContext(ctx, "snapshot cache write failed", "map_id", mapID, "error", err)
		}
	}
	return snap, nil
}

func projectForTransport(seat *domain.Seat, transportID string) {
	if seat.Assignment != nil && seat.Assignment.TransportID != transportID {
		seat.Assignment = nil
	}
	switch {
	case seat.Assignment != nil:
		seat.Status = domain.SeatStatusBooked
	case seat.IsBlocked:
		seat.Status = domain.SeatStatusBlocked
	default:
		seat.Status = domain.SeatStatusAvailable
	}
}

func (s *LayoutService) SetSeatType(ctx context.Context, mapID string, row, col int, t domain.SeatType, label *string) (*domain.Seat, error) {
	return s.edit(ctx, mapID, row, col, t == domain.SeatTypeEmpty, func(g *grid.Grid) (*domain.Seat, error) {
		return g.SetSeatType(row, col, t, label)
	})
}

func (s *LayoutService) SetSeatStatus(ctx context.Context, mapID string, row, col int, status domain.SeatStatus) (*domain.Seat, error) {
	return s.edit(ctx, mapID, row, col, false, func(g *grid.Grid) (*domain.Seat, error) {
		return g.SetSeatStatus(row, col, status)
	})
}

func (s *LayoutService) UpdateSeat(ctx context.Context, mapID string, row, col int, patch domain.SeatPatch) (*domain.Seat, error) {
	clears := patch.SeatType != nil && *patch.SeatType == domain.SeatTypeEmpty
	return s.edit(ctx, mapID, row, col, clears, func(g *grid.Grid) (*domain.Seat, error) {
		return g.UpdateSeat(row, col, patch)
	})
}

// edit loads the grid, applies one primitive and persists the changed cell. When the
// edit empties the cell its assignments are freed through the engine first.
func (s *LayoutService) edit(ctx context.Context, mapID string, row, col int, clearsCell bool, apply func(*grid.Grid) (*domain.Seat, error)) (*domain.Seat, error) {
	g, err := s.load(ctx, mapID)
	if err != nil {
		return nil, err
	}

	if clearsCell {
		if current, err := g.Seat(row, col); err == nil {
			if err := s.freeAll(ctx, current.ID); err != nil {
				return nil, err
			}
			if g, err = s.load(ctx, mapID); err != nil {
				return nil, err
			}
		}
	}

	seat, err := apply(g)
	if err != nil {
		return nil, err
	}
	if err := s.seats.SaveSeat(ctx, seat); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateSnapshot(ctx, mapID, ""); err != nil {
			s.logger.WarnContext(ctx, "snapshot invalidation failed", "map_id", mapID, "error", err)
		}
	}
	return seat, nil
}

func (s *LayoutService) freeAll(ctx context.Context, seatID string) error {
	held, err := s.assignments.ListBySeat(ctx, seatID)
	if err != nil {
		return err
	}
	for _, a := range held {
		if _, err := s.engine.Free(ctx, seatID, a.TransportID); err != nil {
			return fmt.Errorf("free seat %s for transport %s: %w", seatID, a.TransportID, err)
		}
	}
	return nil
}

func (s *LayoutService) load(ctx context.Context, mapID string) (*grid.Grid, error) {
	m, err := s.seats.GetMap(ctx, mapID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListSeats(ctx, mapID, "")
	if err != nil {
		return nil, err
	}
	return grid.New(*m, seats)
}

var _ LayoutUseCase = (*LayoutService)(nil)
