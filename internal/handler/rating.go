package handler

import (
	"net/http"

	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/gin-gonic/gin"
)

// RatingHandler handles citizen rating endpoints
type RatingHandler struct {
	ratings *service.RatingService
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratings *service.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

// Create records a rating for a completed repair
// @Summary      Rate a repair
// @Tags         ratings
// @Accept       json
// @Produce      json
// @Success      201 {object} model.Rating
// @Failure      400 {object} model.ErrorResponse
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/ratings [post]
func (h *RatingHandler) Create(c *gin.Context) {
	var req model.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "Missing required fields",
		})
		return
	}

	rating, err := h.ratings.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// ListByReport returns a report's ratings
// @Summary      List a report's ratings
// @Tags         ratings
// @Produce      json
// @Param        id path int true "Report ID"
// @Success      200 {array} model.Rating
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/reports/{id}/ratings [get]
func (h *RatingHandler) ListByReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ratings, err := h.ratings.ListByReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if ratings == nil {
		ratings = []model.Rating{}
	}

	c.JSON(http.StatusOK, ratings)
}

// ContractorSummary aggregates a contractor's ratings on completed work
// @Summary      Contractor rating summary
// @Tags         ratings
// @Produce      json
// @Param        contractor path string true "Contractor name"
// @Success      200 {object} model.ContractorRatings
// @Router       /api/contractors/{contractor}/ratings [get]
func (h *RatingHandler) ContractorSummary(c *gin.Context) {
	contractor := c.Param("contractor")
	if contractor == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "contractor is required",
		})
		return
	}

	summary, err := h.ratings.ContractorSummary(c.Request.Context(), contractor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
