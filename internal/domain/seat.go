package domain

import "time"

type SeatType string

const (
	SeatTypeSeat       SeatType = "seat"
	SeatTypeWindow     SeatType = "window_seat"
	SeatTypeAisleSeat  SeatType = "aisle_seat"
	SeatTypeAccessible SeatType = "accessible_seat"
	SeatTypePremium    SeatType = "premium_seat"
	SeatTypeDriver     SeatType = "driver"
	SeatTypeGuide      SeatType = "guide"
	SeatTypeAisle      SeatType = "aisle"
	SeatTypeStairs     SeatType = "stairs"
	SeatTypeToilet     SeatType = "toilet"
	SeatTypeKitchen    SeatType = "kitchen"
	SeatTypeEntrance   SeatType = "entrance"
	SeatTypeTable      SeatType = "table"
	SeatTypeEmpty      SeatType = "empty"
)

var seatTypes = map[SeatType]bool{
	SeatTypeSeat: true, SeatTypeWindow: true, SeatTypeAisleSeat: true, SeatTypeAccessible: true,
	SeatTypePremium: true, SeatTypeDriver: true, SeatTypeGuide: true, SeatTypeAisle: true,
	SeatTypeStairs: true, SeatTypeToilet: true, SeatTypeKitchen: true, SeatTypeEntrance: true,
	SeatTypeTable: true, SeatTypeEmpty: true,
}

func (t SeatType) Valid() bool {
	return seatTypes[t]
}

// Bookable reports whether a passenger may be assigned to a cell of this type.
func (t SeatType) Bookable() bool {
	switch t {
	case SeatTypeSeat, SeatTypeWindow, SeatTypeAisleSeat, SeatTypeAccessible, SeatTypePremium:
		return true
	default:
		return false
	}
}

type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusBooked    SeatStatus = "booked"
	SeatStatusBlocked   SeatStatus = "blocked"
)

func (s SeatStatus) Valid() bool {
	return s == SeatStatusAvailable || s == SeatStatusBooked || s == SeatStatusBlocked
}

type SeatMap struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	RowLabeling string    `json:"row_labeling"`
	Orientation string    `json:"orientation"`
	Zoom        float64   `json:"zoom"`
	GridSize    int       `json:"grid_size"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m SeatMap) Contains(row, col int) bool {
	return row >= 0 && row < m.Rows && col >= 0 && col < m.Cols
}

type Seat struct {
	ID          string          `json:"id"`
	SeatMapID   string          `json:"seat_map_id"`
	RowIndex    int             `json:"row_index"`
	ColIndex    int             `json:"col_index"`
	SeatType    SeatType        `json:"seat_type"`
	Status      SeatStatus      `json:"status"`
	Label       string          `json:"label"`
	Block       string          `json:"block"`
	IsBlocked   bool            `json:"is_blocked"`
	BlockReason string          `json:"block_reason,omitempty"`
	Assignment  *SeatAssignment `json:"assignment,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s *Seat) IsAvailable() bool {
	return s.Status == SeatStatusAvailable && !s.IsBlocked && s.SeatType.Bookable() && s.Assignment == nil
}

// Validate checks the type/status/assignment invariants of a single seat.
func (s *Seat) Validate() error {
	if !s.SeatType.Valid() {
		return invariantf("seat %s: unknown seat type %q", s.Label, s.SeatType)
	}
	if !s.Status.Valid() {
		return invariantf("seat %s: unknown status %q", s.Label, s.Status)
	}
	if s.SeatType == SeatTypeEmpty && (s.Status == SeatStatusBooked || s.Assignment != nil) {
		return invariantf("seat %s: empty cell cannot be booked", s.Label)
	}
	if s.SeatType == SeatTypeEmpty && s.IsBlocked {
		return invariantf("seat %s: empty cell cannot be blocked", s.Label)
	}
	if s.Assignment != nil && !s.SeatType.Bookable() {
		return invariantf("seat %s: %s cannot hold an assignment", s.Label, s.SeatType)
	}
	if s.IsBlocked && s.Assignment != nil {
		return invariantf("seat %s: blocked seat cannot hold an assignment", s.Label)
	}
	if s.IsBlocked != (s.Status == SeatStatusBlocked) {
		return invariantf("seat %s: status %s does not match blocked flag %t", s.Label, s.Status, s.IsBlocked)
	}
	if (s.Status == SeatStatusBooked) != (s.Assignment != nil) {
		return invariantf("seat %s: status %s does not match assignment", s.Label, s.Status)
	}
	return nil
}

type SeatPatch struct {
	SeatType    *SeatType   `json:"seat_type,omitempty"`
	Status      *SeatStatus `json:"status,omitempty"`
	Label       *string     `json:"label,omitempty"`
	Block       *string     `json:"block,omitempty"`
	IsBlocked   *bool       `json:"is_blocked,omitempty"`
	BlockReason *string     `json:"block_reason,omitempty"`
}

func (p SeatPatch) Apply(s *Seat) {
	if p.SeatType != nil {
		s.SeatType = *p.SeatType
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Label != nil {
		s.Label = *p.Label
	}
	if p.Block != nil {
		s.Block = *p.Block
	}
	if p.IsBlocked != nil {
		s.IsBlocked = *p.IsBlocked
	}
	if p.BlockReason != nil {
		s.BlockReason = *p.BlockReason
	}
}

// SeatMapSnapshot is a read-only view of one map as seen by one transport.
type SeatMapSnapshot struct {
	Map         SeatMap          `json:"map"`
	TransportID string           `json:"transport_id"`
	Seats       []Seat           `json:"seats"`
	Assignments []SeatAssignment `json:"assignments"`
	TakenAt     time.Time        `json:"taken_at"`
}
