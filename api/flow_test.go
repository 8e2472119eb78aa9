package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/repository"
	"github.com/Domenick1991/tripseats/internal/service/assignment"
	"github.com/Domenick1991/tripseats/internal/service/guide"
	"github.com/Domenick1991/tripseats/internal/service/layout"
	"github.com/Domenick1991/tripseats/internal/service/oplog"
	"github.com/Domenick1991/tripseats/internal/service/suggest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := repository.NewMemoryStore()
	log := oplog.New(store.Operations(), logger)
	engine := assignment.NewAssignmentService(store, store, log, logger)
	layouts := layout.NewLayoutService(store, store, engine, logger)
	guides := guide.NewGuideService(store, store, log, logger)
	suggestions := suggest.NewSuggestService(layouts, store, logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewMapHandler(layouts).Register(v1.Group("/maps"))
	NewAssignmentHandler(engine).Register(v1.Group("/assignments"))
	NewTransportHandler(engine, suggestions, log).Register(v1.Group("/transports"))
	NewGuideHandler(guides).Register(v1.Group("/guides"))
	return router, store
}

func do(t *testing.T, router *gin.Engine, req *http.Request, want int, out any) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, want, w.Code, w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
}

func TestFlow_MapAssignGuideSuggest(t *testing.T) {
	router, store := newTestRouter(t)

	var created domain.SeatMapSnapshot
	do(t, router, jsonRequest(http.MethodPost, "/api/v1/maps", layout.CreateMapInput{
		Name: "Coach",
		Rows: 2,
		Cols: 3,
		Cells: []layout.CellInput{
			{Row: 0, Col: 0, SeatType: domain.SeatTypeWindow},
			{Row: 0, Col: 1, SeatType: domain.SeatTypeSeat},
			{Row: 0, Col: 2, SeatType: domain.SeatTypeWindow},
			{Row: 1, Col: 0, SeatType: domain.SeatTypeWindow},
		},
	}), http.StatusCreated, &created)
	require.Len(t, created.Seats, 4)
	mapID := created.Map.ID
	seat1A, seat1B, seat1C := created.Seats[0].ID, created.Seats[1].ID, created.Seats[2].ID

	do(t, router, jsonRequest(http.MethodPost, "/api/v1/assignments", assignment.AssignInput{
		SeatID: seat1A, TransportID: "T1", PassengerName: "Jane Doe", BookingRef: "BK100",
	}), http.StatusCreated, nil)
	do(t, router, jsonRequest(http.MethodPost, "/api/v1/assignments", assignment.AssignInput{
		SeatID: seat1A, TransportID: "T1", PassengerName: "Jane Doe", BookingRef: "BK100",
	}), http.StatusConflict, nil)

	store.AddGuide(domain.TourGuideAssignment{ID: "G1", TransportID: "T1", Name: "Max Müller"})
	do(t, router, jsonRequest(http.MethodPut, "/api/v1/guides/G1/seat", map[string]any{"seat_id": seat1C}), http.StatusOK, nil)
	do(t, router, jsonRequest(http.MethodPost, "/api/v1/assignments", assignment.AssignInput{
		SeatID: seat1C, TransportID: "T1", PassengerName: "John",
	}), http.StatusConflict, nil)

	store.AddPassengers("T1", domain.UnassignedPassenger{ID: "P1", TransportID: "T1", BookingRef: "BK100", Name: "Tom Doe", PreferenceType: domain.PreferenceCompanion})
	var suggestions struct {
		Suggestions []domain.BulkAssignmentSuggestion `json:"suggestions"`
	}
	do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/transports/T1/suggestions?map_id="+mapID, nil), http.StatusOK, &suggestions)
	require.Len(t, suggestions.Suggestions, 1)
	assert.Equal(t, seat1B, suggestions.Suggestions[0].SuggestedSeatID)
	assert.Equal(t, domain.ConfidenceHigh, suggestions.Suggestions[0].Confidence)

	var snap domain.SeatMapSnapshot
	do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/maps/"+mapID+"?transport_id=T1", nil), http.StatusOK, &snap)
	assert.Equal(t, domain.SeatStatusBooked, snap.Seats[0].Status)
	assert.Equal(t, domain.SeatStatusBlocked, snap.Seats[2].Status)
	assert.Equal(t, "Reiseleiter: Max Müller", snap.Seats[2].BlockReason)

	var ops struct {
		Operations []domain.SeatOperation `json:"operations"`
	}
	do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/transports/T1/operations", nil), http.StatusOK, &ops)
	require.Len(t, ops.Operations, 2)
	assert.Equal(t, domain.OperationAssign, ops.Operations[0].Kind)
	assert.Equal(t, domain.OperationBlock, ops.Operations[1].Kind)
}

func TestFlow_BadCell(t *testing.T) {
	router, _ := newTestRouter(t)

	do(t, router, jsonRequest(http.MethodPut, "/api/v1/maps/M1/cells/x/0/type", map[string]string{"seat_type": "seat"}), http.StatusBadRequest, nil)
	do(t, router, jsonRequest(http.MethodPut, "/api/v1/maps/M1/cells/0/0/type", map[string]string{"seat_type": "seat"}), http.StatusNotFound, nil)
}

func TestFlow_BulkAssignPartial(t *testing.T) {
	router, _ := newTestRouter(t)

	var created domain.SeatMapSnapshot
	do(t, router, jsonRequest(http.MethodPost, "/api/v1/maps", layout.CreateMapInput{
		Rows: 1, Cols: 2,
		Cells: []layout.CellInput{{Row: 0, Col: 0, SeatType: domain.SeatTypeSeat}, {Row: 0, Col: 1, SeatType: domain.SeatTypeToilet}},
	}), http.StatusCreated, &created)

	var res assignment.BulkResult
	do(t, router, jsonRequest(http.MethodPost, "/api/v1/transports/T1/bulk-assign", map[string]any{
		"items": []assignment.BulkItem{
			{SeatID: created.Seats[0].ID, PassengerName: "Jane"},
			{SeatID: created.Seats[1].ID, PassengerName: "John"},
		},
	}), http.StatusMultiStatus, &res)
	assert.Len(t, res.Assigned, 1)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "seat unavailable", res.Failed[0].Error)

	var list struct {
		Assignments []domain.SeatAssignment `json:"assignments"`
	}
	do(t, router, httptest.NewRequest(http.MethodGet, "/api/v1/transports/T1/assignments", nil), http.StatusOK, &list)
	assert.Len(t, list.Assignments, 1)
}
