package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Domenick1991/tripseats/internal/domain"
	"github.com/Domenick1991/tripseats/internal/service/layout"
	"github.com/gin-gonic/gin"
)

type MapHandler struct {
	service layout.LayoutUseCase
}

type seatTypeRequest struct {
	SeatType domain.SeatType `json:"seat_type" binding:"required"`
	Label    *string         `json:"label"`
}

type seatStatusRequest struct {
	Status domain.SeatStatus `json:"status" binding:"required"`
}

func NewMapHandler(service layout.LayoutUseCase) *MapHandler {
	return &MapHandler{service: service}
}

func (h *MapHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.snapshot)
	router.PUT("/:id/cells/:row/:col/type", h.setType)
	router.PUT("/:id/cells/:row/:col/status", h.setStatus)
	router.PATCH("/:id/cells/:row/:col", h.update)
}

func (h *MapHandler) create(c *gin.Context) {
	var req layout.CreateMapInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	snap, err := h.service.CreateMap(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *MapHandler) snapshot(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), c.Param("id"), c.Query("transport_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *MapHandler) setType(c *gin.Context) {
	row, col, ok := cellParams(c)
	if !ok {
		return
	}
	var req seatTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	seat, err := h.service.SetSeatType(c.Request.Context(), c.Param("id"), row, col, req.SeatType, req.Label)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seat)
}

func (h *MapHandler) setStatus(c *gin.Context) {
	row, col, ok := cellParams(c)
	if !ok {
		return
	}
	var req seatStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	seat, err := h.service.SetSeatStatus(c.Request.Context(), c.Param("id"), row, col, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seat)
}

func (h *MapHandler) update(c *gin.Context) {
	row, col, ok := cellParams(c)
	if !ok {
		return
	}
	var patch domain.SeatPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	seat, err := h.service.UpdateSeat(c.Request.Context(), c.Param("id"), row, col, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seat)
}

func cellParams(c *gin.Context) (int, int, bool) {
	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		badRequest(c, fmt.Errorf("row must be an integer"))
		return 0, 0, false
	}
	col, err := strconv.Atoi(c.Param("col"))
	if err != nil {
		badRequest(c, fmt.Errorf("col must be an integer"))
		return 0, 0, false
	}
	return row, col, true
}
