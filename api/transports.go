package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/service/assignment"
	"github.com/Domenick1991/tripseats/internal/service/suggest"
	"github.com/gin-gonic/gin"
)

type OperationLister interface {
	List(ctx context.Context, transportID string) ([]domain.SeatOperation, error)
}

// TransportHandler serves the per-transport views: assignments, suggestions and history.
type TransportHandler struct {
	assignments assignment.AssignmentUseCase
	suggestions suggest.SuggestUseCase
	operations  OperationLister
}

type bulkAssignRequest struct {
	Items []assignment.BulkItem `json:"items" binding:"required"`
}

func NewTransportHandler(assignments assignment.AssignmentUseCase, suggestions suggest.SuggestUseCase, operations OperationLister) *TransportHandler {
	return &TransportHandler{assignments: assignments, suggestions: suggestions, operations: operations}
}

func (h *TransportHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/assignments", h.listAssignments)
	router.POST("/:id/bulk-assign", h.bulkAssign)
	router.GET("/:id/suggestions", h.suggest)
	router.GET("/:id/operations", h.listOperations)
}

func (h *TransportHandler) listAssignments(c *gin.Context) {
	list, err := h.assignments.ListForTransport(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": list})
}

func (h *TransportHandler) bulkAssign(c *gin.Context) {
	var req bulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.assignments.BulkAssign(c.Request.Context(), c.Param("id"), req.Items)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if len(res.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, res)
}

func (h *TransportHandler) suggest(c *gin.Context) {
	mapID := c.Query("map_id")
	if mapID == "" {
		badRequest(c, fmt.Errorf("map_id is required"))
		return
	}

	out, err := h.suggestions.Suggest(c.Request.Context(), mapID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": out})
}

func (h *TransportHandler) listOperations(c *gin.Context) {
	ops, err := h.operations.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operations": ops})
}
