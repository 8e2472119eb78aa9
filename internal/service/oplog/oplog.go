// Package oplog keeps the ordered history of seat operations per transport.
package oplog

import (
	"context"
	"log/slog"
	"time"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/kafka"
	"github.com/Domenick1991/tripseats/internal/repository"
	"github.com/google/uuid"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type Log struct {
	ops      repository.OperationRepository
	producer Producer
	topic    string
	pageSize int
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Log)

// WithProducer fans every recorded entry out to topic.
func WithProducer(p Producer, topic string) Option {
	return func(l *Log) {
		l.producer = p
		l.topic = topic
	}
}

func WithPageSize(n int) Option {
	return func(l *Log) {
		l.pageSize = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

func New(ops repository.OperationRepository, logger *slog.Logger, opts ...Option) *Log {
	l := &Log{
		ops:    ops,
		logger: logger.With("component", "oplog"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends op and fills its ID, Seq and CreatedAt. A failed publish is logged only:
// the store is the source of truth.
func (l *Log) Record(ctx context.Context, op *domain.SeatOperation) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = l.now().UTC()
	}
	if err := l.ops.Append(ctx, op); err != nil {
		return err
	}

	if l.producer != nil && l.topic != "" {
		if err := l.producer.Publish(ctx, l.topic, op.TransportID, kafka.NewOperationEvent(*op)); err != nil {
			l.logger.WarnContext(ctx, "publish operation failed", "operation_id", op.ID, "kind", op.Kind, "error", err)
		}
	}
	return nil
}

// List returns the transport's entries oldest first, capped to the newest page.
func (l *Log) List(ctx context.Context, transportID string) ([]domain.SeatOperation, error) {
	return l.ops.ListByTransport(ctx, transportID, l.pageSize)
}
