package api

import (
	"fmt"
	"net/http"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/service/assignment"
	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	service assignment.AssignmentUseCase
}

type moveRequest struct {
	FromSeatID  string `json:"from_seat_id" binding:"required"`
	ToSeatID    string `json:"to_seat_id" binding:"required"`
	TransportID string `json:"transport_id" binding:"required"`
}

func NewAssignmentHandler(service assignment.AssignmentUseCase) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

func (h *AssignmentHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.assign)
	router.DELETE("", h.free)
	router.POST("/move", h.move)
	router.PATCH("/:id", h.update)
}

func (h *AssignmentHandler) assign(c *gin.Context) {
	var req assignment.AssignInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	a, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AssignmentHandler) free(c *gin.Context) {
	seatID, transportID := c.Query("seat_id"), c.Query("transport_id")
	if seatID == "" || transportID == "" {
		badRequest(c, fmt.Errorf("seat_id and transport_id are required"))
		return
	}

	removed, err := h.service.Free(c.Request.Context(), seatID, transportID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, removed)
}

func (h *AssignmentHandler) move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.service.Move(c.Request.Context(), req.FromSeatID, req.ToSeatID, req.TransportID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AssignmentHandler) update(c *gin.Context) {
	var patch domain.AssignmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
