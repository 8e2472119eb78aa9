package api

import (
	"net/http"

	"github.com/Domenick1991/tripseats/internal/service/guide"
	"github.com/gin-gonic/gin"
)

type GuideHandler struct {
	service guide.GuideUseCase
}

// guideSeatRequest binds the guide to SeatID; a null SeatID releases the seat.
type guideSeatRequest struct {
	SeatID    *string `json:"seat_id"`
	BlockSeat *bool   `json:"block_seat"`
}

func NewGuideHandler(service guide.GuideUseCase) *GuideHandler {
	return &GuideHandler{service: service}
}

func (h *GuideHandler) Register(router *gin.RouterGroup) {
	router.PUT("/:id/seat", h.assignSeat)
}

func (h *GuideHandler) assignSeat(c *gin.Context) {
	var req guideSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	block := true
	if req.BlockSeat != nil {
		block = *req.BlockSeat
	}

	g, err := h.service.AssignGuideSeat(c.Request.Context(), c.Param("id"), req.SeatID, block)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}
