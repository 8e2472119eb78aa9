package suggest

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/repository"
)

type SuggestUseCase interface {
	Suggest(ctx context.Context, mapID, transportID string) ([]domain.BulkAssignmentSuggestion, error)
}

// SnapshotSource returns the seat map as seen by one transport.
type SnapshotSource interface {
	Snapshot(ctx context.Context, mapID, transportID string) (*domain.SeatMapSnapshot, error)
}

type SuggestService struct {
	snapshots  SnapshotSource
	passengers repository.PassengerSource
	policy     Policy
	logger     *slog.Logger
}

type SuggestServiceOption func(*SuggestService)

func WithPolicy(p Policy) SuggestServiceOption {
	return func(s *SuggestService) {
		s.policy = p
	}
}

func NewSuggestService(snapshots SnapshotSource, passengers repository.PassengerSource, logger *slog.Logger, opts ...SuggestServiceOption) *SuggestService {
	s := &SuggestService{
		snapshots:  snapshots,
		passengers: passengers,
		policy:     DefaultPolicy(),
		logger:     logger.With("component", "suggest"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest may return stale seats: the snapshot is not locked and commits go through
// the assignment engine, which reports conflicts.
func (s *SuggestService) Suggest(ctx context.Context, mapID, transportID string) ([]domain.BulkAssignmentSuggestion, error) {
	snap, err := s.snapshots.Snapshot(ctx, mapID, transportID)
	if err != nil {
		return nil, err
	}
	passengers, err := s.passengers.ListUnassigned(ctx, transportID)
	if err != nil {
		return nil, err
	}

	out := s.policy.Compute(*snap, passengers)
	s.logger.InfoContext(ctx, "suggestions computed", "map_id", mapID, "transport_id", transportID,
		"passengers", len(passengers), "suggestions", len(out))
	return out, nil
}

var _ SuggestUseCase = (*SuggestService)(nil)
