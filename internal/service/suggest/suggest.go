// Package suggest proposes seats for passengers that have none yet. Suggestions are never
// applied here; callers commit them through the assignment engine.
package suggest

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/grid"
)

// State is the view of the seat map while one batch is being computed.
type State struct {
	Map   domain.SeatMap
	grid  *grid.Grid
	types map[grid.Coord]domain.SeatType
	// refs maps seat id to the booking reference holding it, including earlier picks.
	refs map[string]string
	// picked maps seat id to the passenger it was suggested for in this batch.
	picked map[string]string
}

func (st *State) TypeAt(row, col int) (domain.SeatType, bool) {
	t, ok := st.types[grid.Coord{Row: row, Col: col}]
	return t, ok
}

func (st *State) Neighbors(seat domain.Seat) []domain.Seat {
	if st.grid == nil {
		return nil
	}
	return st.grid.Neighbors(seat.RowIndex, seat.ColIndex)
}

func (st *State) BookingRefAt(seatID string) string {
	return st.refs[seatID]
}

// Compute runs DefaultPolicy over the snapshot.
func Compute(snap domain.SeatMapSnapshot, passengers []domain.UnassignedPassenger) []domain.BulkAssignmentSuggestion {
	return DefaultPolicy().Compute(snap, passengers)
}

// Compute suggests one seat per passenger in passenger order. It is deterministic and
// never suggests a seat twice. Passengers left without a free seat get no entry.
func (p Policy) Compute(snap domain.SeatMapSnapshot, passengers []domain.UnassignedPassenger) []domain.BulkAssignmentSuggestion {
	out := make([]domain.BulkAssignmentSuggestion, 0, len(passengers))
	if len(passengers) == 0 {
		return out
	}

	st, free := newState(snap)
	for _, passenger := range passengers {
		if len(st.picked) == len(free) {
			break
		}
		req := ParseRequest(passenger)

		best, bestScore, bestMatched := -1, 0.0, []Need(nil)
		uncontested, uncontestedScore := -1, 0.0
		for i, seat := range free {
			score, matched := p.score(seat, req, st)
			if uncontested < 0 || score > uncontestedScore {
				uncontested, uncontestedScore = i, score
			}
			if _, taken := st.picked[seat.ID]; taken {
				continue
			}
			if best < 0 || score > bestScore {
				best, bestScore, bestMatched = i, score, matched
			}
		}
		if best < 0 {
			continue
		}

		seat := free[best]
		conflicts := make([]string, 0)
		competed := false
		if rival := free[uncontested]; uncontested != best && uncontestedScore > bestScore {
			competed = true
			conflicts = append(conflicts, fmt.Sprintf("seat %s already suggested for %s", rival.Label, st.picked[rival.ID]))
		}
		conflicts = append(conflicts, unmet(req, bestMatched, passenger.BookingRef)...)

		out = append(out, domain.BulkAssignmentSuggestion{
			PassengerID:        passenger.ID,
			PassengerName:      passenger.Name,
			SuggestedSeatID:    seat.ID,
			SuggestedSeatLabel: seat.Label,
			Reason:             reason(req, bestMatched),
			Confidence:         confidence(req, bestMatched, competed),
			Conflicts:          conflicts,
		})

		st.picked[seat.ID] = passenger.Name
		if passenger.BookingRef != "" {
			st.refs[seat.ID] = passenger.BookingRef
		}
	}
	return out
}

func newState(snap domain.SeatMapSnapshot) (*State, []domain.Seat) {
	st := &State{
		Map:    snap.Map,
		types:  make(map[grid.Coord]domain.SeatType, len(snap.Seats)),
		refs:   make(map[string]string),
		picked: make(map[string]string),
	}
	if g, err := grid.New(snap.Map, snap.Seats); err == nil {
		st.grid = g
	}

	taken := make(map[string]bool)
	for _, a := range snap.Assignments {
		if snap.TransportID != "" && a.TransportID != snap.TransportID {
			continue
		}
		taken[a.SeatID] = true
		st.refs[a.SeatID] = a.BookingRef
	}

	seats := append([]domain.Seat(nil), snap.Seats...)
	grid.SortSeats(seats)
	free := make([]domain.Seat, 0, len(seats))
	for _, seat := range seats {
		st.types[grid.Coord{Row: seat.RowIndex, Col: seat.ColIndex}] = seat.SeatType
		if a := seat.Assignment; a != nil && (snap.TransportID == "" || a.TransportID == snap.TransportID) {
			taken[seat.ID] = true
			st.refs[seat.ID] = a.BookingRef
		}
		if taken[seat.ID] || seat.IsBlocked || !seat.SeatType.Bookable() {
			continue
		}
		free = append(free, seat)
	}
	return st, free
}

func confidence(req Request, matched []Need, competed bool) domain.Confidence {
	switch {
	case len(req.Needs) == 0:
		return domain.ConfidenceHigh
	case len(matched) == len(req.Needs) && !competed:
		return domain.ConfidenceHigh
	case req.Primary != "" && contains(matched, req.Primary):
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func reason(req Request, matched []Need) string {
	if len(req.Needs) == 0 {
		return "no preference stated; next free seat"
	}
	var b strings.Builder
	if len(matched) > 0 {
		b.WriteString("matches " + joinNeeds(matched))
	}
	var missed []Need
	for _, n := range req.Needs {
		if !contains(matched, n) {
			missed = append(missed, n)
		}
	}
	if len(missed) > 0 {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString("no free seat for " + joinNeeds(missed))
	}
	return b.String()
}

// unmet names each need the suggested seat does not satisfy.
func unmet(req Request, matched []Need, bookingRef string) []string {
	var out []string
	for _, n := range req.Needs {
		if contains(matched, n) {
			continue
		}
		if n == NeedCompanion {
			out = append(out, fmt.Sprintf("no free seat next to booking %s", bookingRef))
			continue
		}
		out = append(out, fmt.Sprintf("no free %s seat", n))
	}
	return out
}

func joinNeeds(needs []Need) string {
	parts := make([]string, len(needs))
	for i, n := range needs {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

func contains(needs []Need, n Need) bool {
	for _, x := range needs {
		if x == n {
			return true
		}
	}
	return false
}
