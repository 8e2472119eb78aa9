package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_Record(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := sink.Record(context.Background(), kafka.NewOperationEvent(domain.SeatOperation{
		ID:          "op-9",
		Seq:         9,
		Kind:        domain.OperationBlock,
		TransportID: "T1",
		SeatLabel:   "1A",
		Reason:      "Reiseleiter: Max Müller",
	}))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "seat operation", line["msg"])
	assert.Equal(t, "audit", line["component"])
	assert.Equal(t, "seat_block", line["type"])
	assert.Equal(t, "1A", line["seat"])
	assert.Equal(t, "Reiseleiter: Max Müller", line["reason"])
	assert.NotContains(t, line, "passenger")
}
