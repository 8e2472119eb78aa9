// Package grid holds the in-memory cells of one seat map and the primitives that
// change a cell's type and status without breaking the seat invariants.
package grid

import (
	"fmt"
	"sort"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/google/uuid"
)

type Coord struct {
	Row int
	Col int
}

type Grid struct {
	Map   domain.SeatMap
	cells map[Coord]*domain.Seat
	now   func() time.Time
}

func New(m domain.SeatMap, seats []domain.Seat) (*Grid, error) {
	if m.Rows <= 0 || m.Cols <= 0 {
		return nil, fmt.Errorf("seat map %s: rows and cols must be positive", m.ID)
	}
	g := &Grid{Map: m, cells: make(map[Coord]*domain.Seat, len(seats)), now: time.Now}
	for i := range seats {
		s := seats[i]
		c := Coord{Row: s.RowIndex, Col: s.ColIndex}
		if !m.Contains(c.Row, c.Col) {
			return nil, fmt.Errorf("%w: seat %s at (%d,%d)", domain.ErrOutOfBounds, s.ID, c.Row, c.Col)
		}
		if _, dup := g.cells[c]; dup {
			return nil, fmt.Errorf("%w: duplicate seat at (%d,%d)", domain.ErrInvariantViolation, c.Row, c.Col)
		}
		g.cells[c] = &s
	}
	return g, nil
}

func (g *Grid) Seat(row, col int) (*domain.Seat, error) {
	if !g.Map.Contains(row, col) {
		return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d", domain.ErrOutOfBounds, row, col, g.Map.Rows, g.Map.Cols)
	}
	s, ok := g.cells[Coord{Row: row, Col: col}]
	if !ok {
		return nil, fmt.Errorf("%w: no seat at (%d,%d)", domain.ErrSeatNotFound, row, col)
	}
	cp := *s
	return &cp, nil
}

// SetSeatType changes a cell's type, creating the cell when it does not exist yet.
// Turning a cell into empty resets it to available and drops assignment and blocking.
func (g *Grid) SetSeatType(row, col int, t domain.SeatType, label *string) (*domain.Seat, error) {
	if !g.Map.Contains(row, col) {
		return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d", domain.ErrOutOfBounds, row, col, g.Map.Rows, g.Map.Cols)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown seat type %q", domain.ErrInvariantViolation, t)
	}
	s := g.cell(row, col)
	s.SeatType = t
	if label != nil {
		s.Label = *label
	}
	if t == domain.SeatTypeEmpty {
		s.Status = domain.SeatStatusAvailable
		s.Assignment = nil
		s.IsBlocked = false
		s.BlockReason = ""
	} else if !t.Bookable() && s.Assignment != nil {
		return nil, fmt.Errorf("%w: seat %s holds an assignment", domain.ErrInvariantViolation, s.Label)
	}
	return g.commit(s)
}

func (g *Grid) SetSeatStatus(row, col int, status domain.SeatStatus) (*domain.Seat, error) {
	s, err := g.Seat(row, col)
	if err != nil {
		return nil, err
	}
	switch status {
	case domain.SeatStatusBooked:
		if s.SeatType == domain.SeatTypeEmpty {
			return nil, fmt.Errorf("%w: empty cell %s cannot be booked", domain.ErrInvalidTransition, s.Label)
		}
		if s.Assignment == nil {
			return nil, fmt.Errorf("%w: seat %s has no assignment", domain.ErrInvalidTransition, s.Label)
		}
	case domain.SeatStatusBlocked:
		if s.Assignment != nil {
			return nil, fmt.Errorf("%w: seat %s holds an assignment", domain.ErrInvalidTransition, s.Label)
		}
		s.IsBlocked = true
	case domain.SeatStatusAvailable:
		if s.Assignment != nil {
			return nil, fmt.Errorf("%w: seat %s holds an assignment", domain.ErrInvalidTransition, s.Label)
		}
		s.IsBlocked = false
		s.BlockReason = ""
	default:
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidTransition, status)
	}
	s.Status = status
	return g.commit(s)
}

// UpdateSeat applies a partial patch and refuses any result that breaks the seat invariants.
func (g *Grid) UpdateSeat(row, col int, patch domain.SeatPatch) (*domain.Seat, error) {
	s, err := g.Seat(row, col)
	if err != nil {
		return nil, err
	}
	if t := patch.SeatType; t != nil {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown seat type %q", domain.ErrInvariantViolation, *t)
		}
		if *t != domain.SeatTypeEmpty && !t.Bookable() && s.Assignment != nil {
			return nil, fmt.Errorf("%w: seat %s holds an assignment", domain.ErrInvariantViolation, s.Label)
		}
	}
	patch.Apply(s)
	if patch.SeatType != nil && *patch.SeatType == domain.SeatTypeEmpty {
		s.Status = domain.SeatStatusAvailable
		s.Assignment = nil
		s.IsBlocked = false
		s.BlockReason = ""
		return g.commit(s)
	}
	if patch.IsBlocked != nil && patch.Status == nil {
		switch {
		case s.IsBlocked:
			s.Status = domain.SeatStatusBlocked
		case s.Status == domain.SeatStatusBlocked:
			s.Status = domain.SeatStatusAvailable
		}
	}
	if !s.IsBlocked {
		s.BlockReason = ""
	}
	return g.commit(s)
}

func (g *Grid) Seats() []domain.Seat {
	out := make([]domain.Seat, 0, len(g.cells))
	for _, s := range g.cells {
		out = append(out, *s)
	}
	SortSeats(out)
	return out
}

// FreeSeats lists the cells a passenger could be assigned to right now.
func (g *Grid) FreeSeats() []domain.Seat {
	out := make([]domain.Seat, 0)
	for _, s := range g.Seats() {
		if s.IsAvailable() {
			out = append(out, s)
		}
	}
	return out
}

// Neighbors returns the cells directly left and right of (row, col), skipping aisle markers.
func (g *Grid) Neighbors(row, col int) []domain.Seat {
	out := make([]domain.Seat, 0, 2)
	for _, dir := range []int{-1, 1} {
		for c := col + dir; g.Map.Contains(row, c); c += dir {
			s, ok := g.cells[Coord{Row: row, Col: c}]
			if !ok {
				break
			}
			if s.SeatType == domain.SeatTypeAisle {
				continue
			}
			out = append(out, *s)
			break
		}
	}
	return out
}

func (g *Grid) cell(row, col int) *domain.Seat {
	if s, ok := g.cells[Coord{Row: row, Col: col}]; ok {
		cp := *s
		return &cp
	}
	return &domain.Seat{
		ID:        uuid.NewString(),
		SeatMapID: g.Map.ID,
		RowIndex:  row,
		ColIndex:  col,
		Status:    domain.SeatStatusAvailable,
		Label:     DefaultLabel(row, col),
	}
}

func (g *Grid) commit(s *domain.Seat) (*domain.Seat, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.UpdatedAt = g.now()
	stored := *s
	g.cells[Coord{Row: s.RowIndex, Col: s.ColIndex}] = &stored
	return s, nil
}

// DefaultLabel names a cell the way seat maps are printed: row number then column letter.
func DefaultLabel(row, col int) string {
	return fmt.Sprintf("%d%s", row+1, columnLetters(col))
}

func columnLetters(col int) string {
	s := ""
	for col >= 0 {
		s = string(rune('A'+col%26)) + s
		col = col/26 - 1
	}
	return s
}

func SortSeats(seats []domain.Seat) {
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].RowIndex != seats[j].RowIndex {
			return seats[i].RowIndex < seats[j].RowIndex
		}
		return seats[i].ColIndex < seats[j].ColIndex
	})
}
