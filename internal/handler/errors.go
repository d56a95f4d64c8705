package handler

import (
	"errors"
	"net/http"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP status codes. Unknown errors
// become a generic 500 so internals never leak to the client.
func respondError(c *gin.Context, err error) {
	logger.Get(c.Request.Context()).Error().Err(err).Msg("Request failed")

	switch {
	case errors.Is(err, model.ErrMissingFields):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: "All fields are required",
		})
	case errors.Is(err, model.ErrInvalidProgress):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: model.ErrInvalidProgress.Error(),
		})
	case errors.Is(err, model.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: model.ErrInvalidRating.Error(),
		})
	case errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrInvalidDeadline):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: err.Error(),
		})
	case errors.Is(err, model.ErrReportNotFound),
		errors.Is(err, model.ErrBidNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Error: err.Error(),
		})
	case errors.Is(err, model.ErrTenderExists):
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Error: err.Error(),
		})
	case errors.Is(err, model.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
			Error:   "rate limit exceeded",
			Details: "wait a few seconds and try again",
		})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error: "Internal server error",
		})
	}
}
