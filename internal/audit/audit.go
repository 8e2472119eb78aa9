// Package audit turns operation events into structured audit log lines.
package audit

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/tripseats/internal/kafka"
)

type Sink struct {
	logger *slog.Logger
}

func NewSink(logger *slog.Logger) *Sink {
	return &Sink{logger: logger.With("component", "audit")}
}

func (s *Sink) Record(ctx context.Context, event kafka.OperationEvent) error {
	op := event.Operation
	attrs := []any{
		"type", event.Type,
		"seq", op.Seq,
		"operation_id", op.ID,
		"transport_id", op.TransportID,
	}
	if op.SeatLabel != "" {
		attrs = append(attrs, "seat", op.SeatLabel)
	}
	if op.FromSeatLabel != "" || op.ToSeatLabel != "" {
		attrs = append(attrs, "from", op.FromSeatLabel, "to", op.ToSeatLabel)
	}
	if op.PassengerName != "" {
		attrs = append(attrs, "passenger", op.PassengerName)
	}
	if op.Reason != "" {
		attrs = append(attrs, "reason", op.Reason)
	}
	if len(op.Pairs) > 0 {
		attrs = append(attrs, "pairs", len(op.Pairs))
	}
	s.logger.InfoContext(ctx, "seat operation", attrs...)
	return nil
}
