package suggest

import (
	"github.com/Domenick1991/tripseats/internal/domain"
)

// Rule reports whether seat satisfies one need of req.
type Rule func(seat domain.Seat, req Request, st *State) bool

// Policy decides which seats satisfy which needs and how seats are ranked. Swap it to
// change matching without touching the assignment loop.
type Policy struct {
	Rules map[Need]Rule
	// Weights score a matched need; the primary need's weight is multiplied by PrimaryFactor.
	Weights       map[Need]float64
	PrimaryFactor float64
	// Reserved lowers the score of seat types a passenger did not ask for, so special
	// seats stay free for the passengers who need them.
	Reserved map[domain.SeatType]Reservation
}

type Reservation struct {
	For     Need
	Penalty float64
}

func DefaultPolicy() Policy {
	return Policy{
		Rules: map[Need]Rule{
			NeedWindow:     windowRule,
			NeedAisle:      aisleRule,
			NeedFront:      frontRule,
			NeedBack:       backRule,
			NeedAccessible: accessibleRule,
			NeedCompanion:  companionRule,
		},
		Weights: map[Need]float64{
			NeedWindow:     3,
			NeedAisle:      3,
			NeedFront:      2,
			NeedBack:       2,
			NeedAccessible: 5,
			NeedCompanion:  4,
		},
		PrimaryFactor: 2,
		Reserved: map[domain.SeatType]Reservation{
			domain.SeatTypeAccessible: {For: NeedAccessible, Penalty: 4},
		},
	}
}

func (p Policy) matches(need Need, seat domain.Seat, req Request, st *State) bool {
	rule, ok := p.Rules[need]
	return ok && rule(seat, req, st)
}

func (p Policy) score(seat domain.Seat, req Request, st *State) (float64, []Need) {
	var total float64
	matched := make([]Need, 0, len(req.Needs))
	for _, need := range req.Needs {
		if !p.matches(need, seat, req, st) {
			continue
		}
		w := p.Weights[need]
		if need == req.Primary && p.PrimaryFactor > 0 {
			w *= p.PrimaryFactor
		}
		total += w
		matched = append(matched, need)
	}
	if r, ok := p.Reserved[seat.SeatType]; ok && !req.wants(r.For) {
		total -= r.Penalty
	}
	return total, matched
}

func (r Request) wants(n Need) bool {
	for _, need := range r.Needs {
		if need == n {
			return true
		}
	}
	return false
}

func windowRule(seat domain.Seat, _ Request, st *State) bool {
	return seat.SeatType == domain.SeatTypeWindow || seat.ColIndex == 0 || seat.ColIndex == st.Map.Cols-1
}

func aisleRule(seat domain.Seat, _ Request, st *State) bool {
	if seat.SeatType == domain.SeatTypeAisleSeat {
		return true
	}
	for _, dc := range []int{-1, 1} {
		if t, ok := st.TypeAt(seat.RowIndex, seat.ColIndex+dc); ok && t == domain.SeatTypeAisle {
			return true
		}
	}
	return false
}

func frontRule(seat domain.Seat, _ Request, st *State) bool {
	return seat.RowIndex < frontRows(st.Map.Rows)
}

func backRule(seat domain.Seat, _ Request, st *State) bool {
	return seat.RowIndex >= st.Map.Rows-frontRows(st.Map.Rows)
}

// frontRows is the size of the front and back zones: a third of the rows, at least one.
func frontRows(rows int) int {
	if n := rows / 3; n > 0 {
		return n
	}
	return 1
}

func accessibleRule(seat domain.Seat, _ Request, _ *State) bool {
	return seat.SeatType == domain.SeatTypeAccessible
}

// companionRule matches seats next to a seat held under the same booking reference,
// either already booked or suggested earlier in the batch.
func companionRule(seat domain.Seat, req Request, st *State) bool {
	ref := req.Passenger.BookingRef
	if ref == "" {
		return false
	}
	for _, n := range st.Neighbors(seat) {
		if st.BookingRefAt(n.ID) == ref {
			return true
		}
	}
	return false
}
