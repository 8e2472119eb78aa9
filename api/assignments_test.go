package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/service/assignment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAssignmentUseCase struct {
	mock.Mock
}

func (m *MockAssignmentUseCase) Assign(ctx context.Context, input assignment.AssignInput) (*domain.SeatAssignment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatAssignment), args.Error(1)
}

func (m *MockAssignmentUseCase) Free(ctx context.Context, seatID, transportID string) (*domain.SeatAssignment, error) {
	args := m.Called(ctx, seatID, transportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatAssignment), args.Error(1)
}

func (m *MockAssignmentUseCase) Move(ctx context.Context, from, to, transportID string) (*assignment.MoveResult, error) {
	args := m.Called(ctx, from, to, transportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.MoveResult), args.Error(1)
}

func (m *MockAssignmentUseCase) Update(ctx context.Context, id string, patch domain.AssignmentPatch) (*domain.SeatAssignment, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatAssignment), args.Error(1)
}

func (m *MockAssignmentUseCase) ListForTransport(ctx context.Context, transportID string) ([]domain.SeatAssignment, error) {
	args := m.Called(ctx, transportID)
	return args.Get(0).([]domain.SeatAssignment), args.Error(1)
}

func (m *MockAssignmentUseCase) BulkAssign(ctx context.Context, transportID string, items []assignment.BulkItem) (*assignment.BulkResult, error) {
	args := m.Called(ctx, transportID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*assignment.BulkResult), args.Error(1)
}

func jsonRequest(method, target string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAssignmentHandler_assign(t *testing.T) {
	mockService := &MockAssignmentUseCase{}
	handler := NewAssignmentHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := assignment.AssignInput{SeatID: "12A", TransportID: "T1", PassengerName: "Jane Doe", BookingRef: "BK100"}
	c.Request = jsonRequest(http.MethodPost, "/assignments", input)

	mockService.On("Assign", c.Request.Context(), input).
		Return(&domain.SeatAssignment{ID: "A1", SeatID: "12A", TransportID: "T1", PassengerName: "Jane Doe", BookingRef: "BK100"}, nil)

	handler.assign(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got domain.SeatAssignment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "A1", got.ID)
	mockService.AssertExpectations(t)
}

func TestAssignmentHandler_assign_Conflict(t *testing.T) {
	mockService := &MockAssignmentUseCase{}
	handler := NewAssignmentHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := assignment.AssignInput{SeatID: "12A", TransportID: "T1", PassengerName: "Jane Doe"}
	c.Request = jsonRequest(http.MethodPost, "/assignments", input)
	mockService.On("Assign", c.Request.Context(), input).Return(nil, domain.ErrSeatAlreadyAssigned)

	handler.assign(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"seat_already_assigned"`)
}

func TestAssignmentHandler_free(t *testing.T) {
	t.Run("missing query", func(t *testing.T) {
		handler := NewAssignmentHandler(&MockAssignmentUseCase{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/assignments?seat_id=12A", nil)

		handler.free(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockService := &MockAssignmentUseCase{}
		handler := NewAssignmentHandler(mockService)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodDelete, "/assignments?seat_id=12A&transport_id=T1", nil)
		mockService.On("Free", mock.Anything, "12A", "T1").Return(nil, domain.ErrAssignmentNotFound)

		handler.free(c)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAssignmentHandler_move_PartialFailure(t *testing.T) {
	mockService := &MockAssignmentUseCase{}
	handler := NewAssignmentHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/assignments/move", moveRequest{FromSeatID: "12A", ToSeatID: "12B", TransportID: "T1"})

	freed := domain.SeatAssignment{ID: "A1", SeatID: "12A", TransportID: "T1", PassengerName: "Jane Doe"}
	mockService.On("Move", mock.Anything, "12A", "12B", "T1").
		Return(nil, &domain.MoveFailedError{Freed: freed, Err: domain.ErrSeatAlreadyAssigned})

	handler.move(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "move_failed", body.Code)
	require.NotNil(t, body.Freed)
	assert.Equal(t, "Jane Doe", body.Freed.PassengerName)
}

func TestAssignmentHandler_update(t *testing.T) {
	mockService := &MockAssignmentUseCase{}
	router := gin.New()
	NewAssignmentHandler(mockService).Register(router.Group("/api/v1/assignments"))

	email := "jane@example.com"
	patch := domain.AssignmentPatch{Email: &email}
	mockService.On("Update", mock.Anything, "A1", patch).
		Return(&domain.SeatAssignment{ID: "A1", Email: email}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(http.MethodPatch, "/api/v1/assignments/A1", patch))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), email)
	mockService.AssertExpectations(t)
}

func TestWriteError_Internal(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"internal error"`)
	assert.Len(t, c.Errors, 1)
}
