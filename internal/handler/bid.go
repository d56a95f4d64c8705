package handler

import (
	"net/http"
	"strconv"

	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/repository"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/gin-gonic/gin"
)

// BidHandler handles contractor bid endpoints
type BidHandler struct {
	bids *service.BidService
}

// NewBidHandler creates a new bid handler
func NewBidHandler(bids *service.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// Create places a bid on a report's tender
// @Summary      Place a bid
// @Tags         bids
// @Accept       json
// @Produce      json
// @Success      201 {object} model.Bid
// @Failure      400 {object} model.ErrorResponse
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/bids [post]
func (h *BidHandler) Create(c *gin.Context) {
	var req model.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "Missing required fields",
		})
		return
	}

	bid, err := h.bids.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// List returns bids filtered by contractor, report and status
// @Summary      List bids
// @Tags         bids
// @Produce      json
// @Param        contractor query string false "Filter by contractor"
// @Param        reportId query int false "Filter by report"
// @Param        status query string false "Filter by bid status"
// @Success      200 {array} model.Bid
// @Router       /api/bids [get]
func (h *BidHandler) List(c *gin.Context) {
	filter := repository.BidFilter{
		Contractor: c.Query("contractor"),
		Status:     c.Query("status"),
	}

	if raw := c.Query("reportId"); raw != "" {
		reportID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || reportID <= 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error: "reportId must be a positive integer",
			})
			return
		}
		filter.ReportID = reportID
	}

	bids, err := h.bids.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if bids == nil {
		bids = []model.Bid{}
	}

	c.JSON(http.StatusOK, bids)
}

// GetProgress returns one bid's current progress
// @Summary      Get bid progress
// @Tags         bids
// @Produce      json
// @Param        id path int true "Bid ID"
// @Success      200 {object} model.Bid
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/bids/{id}/progress [get]
func (h *BidHandler) GetProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	bid, err := h.bids.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bid)
}

// UpdateProgress sets a bid's progress and cascades it to the report
// @Summary      Update bid progress
// @Tags         bids
// @Accept       json
// @Produce      json
// @Param        id path int true "Bid ID"
// @Success      200 {object} model.ProgressUpdateResponse
// @Failure      400 {object} model.ErrorResponse
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/bids/{id}/progress [patch]
func (h *BidHandler) UpdateProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.ProgressUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Progress == nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: model.ErrInvalidProgress.Error(),
		})
		return
	}

	resp, err := h.bids.UpdateProgress(c.Request.Context(), id, *req.Progress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
