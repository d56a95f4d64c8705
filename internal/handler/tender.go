package handler

import (
	"net/http"

	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/gin-gonic/gin"
)

// TenderHandler handles tender endpoints
type TenderHandler struct {
	tenders *service.TenderService
}

// NewTenderHandler creates a new tender handler
func NewTenderHandler(tenders *service.TenderService) *TenderHandler {
	return &TenderHandler{tenders: tenders}
}

// List returns every tender with its report embedded
// @Summary      List tenders
// @Tags         tenders
// @Produce      json
// @Success      200 {array} model.Tender
// @Router       /api/tenders [get]
func (h *TenderHandler) List(c *gin.Context) {
	tenders, err := h.tenders.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if tenders == nil {
		tenders = []model.Tender{}
	}

	c.JSON(http.StatusOK, tenders)
}

// Create opens a tender for an existing report
// @Summary      Open a tender
// @Tags         tenders
// @Accept       json
// @Produce      json
// @Success      201 {object} model.Tender
// @Failure      400 {object} model.ErrorResponse
// @Failure      404 {object} model.ErrorResponse
// @Failure      409 {object} model.ErrorResponse
// @Router       /api/tenders [post]
func (h *TenderHandler) Create(c *gin.Context) {
	var req model.CreateTenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "Missing required fields",
		})
		return
	}

	tender, err := h.tenders.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tender)
}
