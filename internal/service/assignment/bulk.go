package assignment

import (
	"context"
	"strings"

	"github.com/Domenick1991/tripseats/internal/domain"
)

type BulkItem struct {
	SeatID         string `json:"seat_id"`
	PassengerName  string `json:"passenger_name"`
	BookingRef     string `json:"booking_ref"`
	Preferences    string `json:"preferences"`
	PreferenceType string `json:"preference_type"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
}

type BulkFailure struct {
	Index         int    `json:"index"`
	SeatID        string `json:"seat_id"`
	PassengerName string `json:"passenger_name"`
	Error         string `json:"error"`
	Err           error  `json:"-"`
}

type BulkResult struct {
	Assigned []domain.SeatAssignment `json:"assigned"`
	Failed   []BulkFailure           `json:"failed"`
}

// BulkAssign commits a list of pairs one conditional insert at a time. A failing item
// does not stop the batch. The pairs that succeeded are logged as one bulk_assign entry.
func (s *AssignmentService) BulkAssign(ctx context.Context, transportID string, items []BulkItem) (*BulkResult, error) {
	result := &BulkResult{
		Assigned: make([]domain.SeatAssignment, 0, len(items)),
		Failed:   make([]BulkFailure, 0),
	}
	pairs := make([]domain.BulkPair, 0, len(items))
	maps := make(map[string]struct{})

	for i, item := range items {
		input := AssignInput{
			SeatID:         item.SeatID,
			TransportID:    transportID,
			PassengerName:  item.PassengerName,
			BookingRef:     item.BookingRef,
			Preferences:    item.Preferences,
			PreferenceType: item.PreferenceType,
			Phone:          item.Phone,
			Email:          item.Email,
		}
		if err := input.validate(); err != nil {
			result.Failed = append(result.Failed, failure(i, item, err))
			continue
		}

		a := &domain.SeatAssignment{
			ID:             s.newID(),
			SeatID:         item.SeatID,
			TransportID:    transportID,
			PassengerName:  strings.TrimSpace(item.PassengerName),
			BookingRef:     item.BookingRef,
			Preferences:    item.Preferences,
			PreferenceType: item.PreferenceType,
			Phone:          item.Phone,
			Email:          item.Email,
			AssignedAt:     s.now().UTC(),
		}
		seat, err := s.assignments.InsertIfAbsent(ctx, a)
		if err != nil {
			result.Failed = append(result.Failed, failure(i, item, err))
			continue
		}
		result.Assigned = append(result.Assigned, *a)
		pairs = append(pairs, domain.BulkPair{SeatID: seat.ID, SeatLabel: seat.Label, PassengerName: a.PassengerName})
		maps[seat.SeatMapID] = struct{}{}
	}

	if len(pairs) > 0 {
		s.record(ctx, &domain.SeatOperation{
			Kind:        domain.OperationBulkAssign,
			TransportID: transportID,
			Pairs:       pairs,
		})
	}
	for mapID := range maps {
		s.invalidate(ctx, mapID, transportID)
	}
	s.logger.InfoContext(ctx, "bulk assign", "transport_id", transportID, "assigned", len(result.Assigned), "failed", len(result.Failed))
	return result, nil
}

func failure(i int, item BulkItem, err error) BulkFailure {
	return BulkFailure{Index: i, SeatID: item.SeatID, PassengerName: item.PassengerName, Error: err.Error(), Err: err}
}
