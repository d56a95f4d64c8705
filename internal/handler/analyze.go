package handler

import (
	"net/http"

	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/gin-gonic/gin"
)

// AnalyzeHandler exposes the damage cost estimation pipeline
type AnalyzeHandler struct {
	estimator *service.EstimateService
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(estimator *service.EstimateService) *AnalyzeHandler {
	return &AnalyzeHandler{estimator: estimator}
}

// Analyze runs the estimation pipeline on a submitted issue
// @Summary      Estimate damage repair cost
// @Description  Classifies the issue, draws a cost band and converts it to the country's currency
// @Tags         analyze
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        title formData string true "Issue title"
// @Param        description formData string true "Issue description"
// @Param        country formData string true "Country name"
// @Success      200 {object} model.EstimationResult
// @Failure      400 {object} model.ErrorResponse
// @Failure      500 {object} model.ErrorResponse
// @Router       /api/analyze-damage [post]
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req model.AnalyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "All fields are required",
		})
		return
	}

	result, err := h.estimator.Analyze(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
