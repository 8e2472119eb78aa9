// Package guide couples a tour guide's seat to that seat's blocking flag.
package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/repository"
)

const DefaultReasonPrefix = "Reiseleiter"

// DefaultLockTTL bounds how long a crashed caller can hold a guide's lock.
const DefaultLockTTL = 10 * time.Second

type GuideUseCase interface {
	AssignGuideSeat(ctx context.Context, guideID string, seatID *string, blockSeat bool) (*domain.TourGuideAssignment, error)
	ReleaseGuideSeat(ctx context.Context, guideID string) (*domain.TourGuideAssignment, error)
}

type Locker interface {
	AcquireGuideLock(ctx context.Context, guideID string, ttl time.Duration) (bool, error)
	ReleaseGuideLock(ctx context.Context, guideID string) error
}

type Recorder interface {
	Record(ctx context.Context, op *domain.SeatOperation) error
}

type SnapshotInvalidator interface {
	InvalidateSnapshot(ctx context.Context, mapID, transportID string) error
}

type GuideService struct {
	guides  repository.GuideRepository
	seats   repository.SeatRepository
	log     Recorder
	locker  Locker
	cache   SnapshotInvalidator
	lockTTL time.Duration
	prefix  string
	logger  *slog.Logger
}

type GuideServiceOption func(*GuideService)

// WithLocker serialises AssignGuideSeat per guide across instances.
func WithLocker(l Locker, ttl time.Duration) GuideServiceOption {
	return func(s *GuideService) {
		s.locker = l
		s.lockTTL = ttl
		if ttl <= 0 {
			s.lockTTL = DefaultLockTTL
		}
	}
}

func WithSnapshotCache(c SnapshotInvalidator) GuideServiceOption {
	return func(s *GuideService) {
		s.cache = c
	}
}

func WithReasonPrefix(prefix string) GuideServiceOption {
	return func(s *GuideService) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewGuideService(guides repository.GuideRepository, seats repository.SeatRepository, log Recorder, logger *slog.Logger, opts ...GuideServiceOption) *GuideService {
	s := &GuideService{
		guides: guides,
		seats:  seats,
		log:    log,
		prefix: DefaultReasonPrefix,
		logger: logger.With("component", "guide"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BlockReason is the label written on a seat blocked for guide.
func (s *GuideService) BlockReason(g *domain.TourGuideAssignment) string {
	return fmt.Sprintf("%s: %s", s.prefix, g.Name)
}

// AssignGuideSeat binds the guide to seatID (nil releases it). The previous seat is
// unblocked before the new one is blocked; if blocking the new seat fails the previous
// one is blocked again and the guide record stays as it was.
func (s *GuideService) AssignGuideSeat(ctx context.Context, guideID string, seatID *string, blockSeat bool) (*domain.TourGuideAssignment, error) {
	if s.locker != nil {
		ok, err := s.locker.AcquireGuideLock(ctx, guideID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrGuideBusy
		}
		defer func() {
			if err := s.locker.ReleaseGuideLock(ctx, guideID); err != nil {
				s.logger.WarnContext(ctx, "release guide lock failed", "guide_id", guideID, "error", err)
			}
		}()
	}

	guide, err := s.guides.GetByID(ctx, guideID)
	if err != nil {
		return nil, err
	}
	reason := s.BlockReason(guide)
	sameSeat := guide.AssignedSeatID != nil && seatID != nil && *guide.AssignedSeatID == *seatID

	var previous *domain.Seat
	if guide.AssignedSeatID != nil && !sameSeat {
		previous, err = s.unblockPrevious(ctx, guide, *guide.AssignedSeatID, blockSeat, reason)
		if err != nil {
			return nil, err
		}
	}

	var blocked *domain.Seat
	if seatID != nil && blockSeat {
		blocked, err = s.seats.SetBlocked(ctx, *seatID, true, reason)
		if err != nil {
			s.restore(ctx, previous)
			return nil, err
		}
	}

	updated, err := s.guides.SetAssignedSeat(ctx, guide.ID, guide.AssignedSeatID, seatID)
	if err != nil {
		s.rollback(ctx, guide.ID, blocked, previous, sameSeat, errors.Is(err, domain.ErrGuideBusy))
		return nil, err
	}

	if previous != nil {
		s.record(ctx, domain.OperationUnblock, guide, previous, previous.BlockReason)
	}
	if blocked != nil && !sameSeat {
		s.record(ctx, domain.OperationBlock, guide, blocked, reason)
	}
	s.logger.InfoContext(ctx, "guide seat assigned", "guide_id", guide.ID, "seat_id", seatID, "blocked", blockSeat)
	return updated, nil
}

func (s *GuideService) ReleaseGuideSeat(ctx context.Context, guideID string) (*domain.TourGuideAssignment, error) {
	return s.AssignGuideSeat(ctx, guideID, nil, true)
}

// unblockPrevious lifts the block on the guide's old seat. Without blockSeat only a block
// carrying this guide's reason is lifted. It returns the seat as it was before, or nil
// when nothing changed.
func (s *GuideService) unblockPrevious(ctx context.Context, guide *domain.TourGuideAssignment, seatID string, blockSeat bool, reason string) (*domain.Seat, error) {
	seat, err := s.seats.GetSeat(ctx, seatID)
	if err != nil {
		if errors.Is(err, domain.ErrSeatNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !seat.IsBlocked || (!blockSeat && seat.BlockReason != reason) {
		return nil, nil
	}
	if _, err := s.seats.SetBlocked(ctx, seat.ID, false, ""); err != nil {
		return nil, err
	}
	return seat, nil
}

// rollback undoes the seat changes of a call whose guide update failed. When another call
// changed the guide in between (raced), that call owns the previous seat and may hold the
// same new seat, so only a new seat the guide does not hold now is unblocked.
func (s *GuideService) rollback(ctx context.Context, guideID string, blocked, previous *domain.Seat, sameSeat, raced bool) {
	if blocked != nil && !sameSeat {
		keep := false
		if raced {
			if current, err := s.guides.GetByID(ctx, guideID); err == nil && current.AssignedSeatID != nil {
				keep = *current.AssignedSeatID == blocked.ID
			}
		}
		if !keep {
			if _, err := s.seats.SetBlocked(ctx, blocked.ID, false, ""); err != nil {
				s.logger.ErrorContext(ctx, "rollback of new guide seat failed", "seat", blocked.Label, "error", err)
			}
		}
	}
	if !raced {
		s.restore(ctx, previous)
	}
}

func (s *GuideService) restore(ctx context.Context, previous *domain.Seat) {
	if previous == nil {
		return
	}
	if _, err := s.seats.SetBlocked(ctx, previous.ID, true, previous.BlockReason); err != nil {
		s.logger.ErrorContext(ctx, "re-blocking previous guide seat failed", "seat", previous.Label, "error", err)
	}
}

func (s *GuideService) record(ctx context.Context, kind domain.OperationKind, guide *domain.TourGuideAssignment, seat *domain.Seat, reason string) {
	if s.cache != nil {
		if err := s.cache.InvalidateSnapshot(ctx, seat.SeatMapID, ""); err != nil {
			s.logger.WarnContext(ctx, "snapshot invalidation failed", "map_id", seat.SeatMapID, "error", err)
		}
	}
	if s.log == nil {
		return
	}
	op := &domain.SeatOperation{
		Kind:          kind,
		TransportID:   guide.TransportID,
		SeatID:        seat.ID,
		SeatLabel:     seat.Label,
		PassengerName: guide.Name,
		Reason:        reason,
	}
	if err := s.log.Record(ctx, op); err != nil {
		s.logger.WarnContext(ctx, "operation log append failed", "kind", kind, "seat", seat.Label, "error", err)
	}
}

var _ GuideUseCase = (*GuideService)(nil)
