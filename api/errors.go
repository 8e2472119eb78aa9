package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string                 `json:"error"`
	Code  string                 `json:"code"`
	Freed *domain.SeatAssignment `json:"freed_assignment,omitempty"`
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrMoveFailed, http.StatusConflict, "move_failed"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrOutOfBounds, http.StatusBadRequest, "out_of_bounds"},
	{domain.ErrMapNotFound, http.StatusNotFound, "map_not_found"},
	{domain.ErrSeatNotFound, http.StatusNotFound, "seat_not_found"},
	{domain.ErrAssignmentNotFound, http.StatusNotFound, "assignment_not_found"},
	{domain.ErrGuideNotFound, http.StatusNotFound, "guide_not_found"},
	{domain.ErrSeatUnavailable, http.StatusConflict, "seat_unavailable"},
	{domain.ErrSeatAlreadyAssigned, http.StatusConflict, "seat_already_assigned"},
	{domain.ErrGuideBusy, http.StatusConflict, "guide_busy"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrInvariantViolation, http.StatusUnprocessableEntity, "invariant_violation"},
}

func writeError(c *gin.Context, err error) {
	resp := errorResponse{Error: err.Error(), Code: "internal"}
	status := http.StatusInternalServerError
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			status, resp.Code = e.status, e.code
			break
		}
	}

	var moveErr *domain.MoveFailedError
	if errors.As(err, &moveErr) {
		resp.Freed = &moveErr.Freed
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		resp.Error = "internal error"
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "invalid_input"})
}
