package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/segmentio/kafka-go"
)

// OperationEvent is the message published for every operation log entry.
type OperationEvent struct {
	Type      string               `json:"type"`
	Operation domain.SeatOperation `json:"operation"`
}

func NewOperationEvent(op domain.SeatOperation) OperationEvent {
	return OperationEvent{Type: "seat_" + string(op.Kind), Operation: op}
}

func DecodeOperationEvent(msg kafka.Message) (OperationEvent, error) {
	var event OperationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return OperationEvent{}, fmt.Errorf("decode operation event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
