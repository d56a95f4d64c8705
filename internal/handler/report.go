package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles citizen report endpoints
type ReportHandler struct {
	reports *service.ReportService
	uploads *service.UploadService
	exports *service.ExportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService, uploads *service.UploadService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		uploads: uploads,
		exports: exports,
	}
}

// Create submits a new report. Accepts multipart form data with an
// optional photo; every report automatically opens a tender.
// @Summary      Submit a report
// @Tags         reports
// @Accept       multipart/form-data
// @Produce      json
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} model.ErrorResponse
// @Failure      500 {object} model.ErrorResponse
// @Router       /api/reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	input := service.CreateReportInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Location:    c.PostForm("location"),
		Country:     c.PostForm("country"),
		Category:    c.PostForm("category"),
		Urgent:      c.PostForm("urgent") == "true",
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		url, err := h.uploads.SaveImage(c.Request.Context(), file)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "image upload failed",
				Details: err.Error(),
			})
			return
		}
		input.ImageURL = url
	}

	report, tender, err := h.reports.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"report": report,
		"tender": tender,
	})
}

// List returns reports, optionally filtered by status and capped by limit
// @Summary      List reports
// @Tags         reports
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        limit query int false "Maximum number of reports"
// @Success      200 {array} model.Report
// @Router       /api/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	status := c.Query("status")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error: "limit must be a non-negative integer",
			})
			return
		}
		limit = parsed
	}

	reports, err := h.reports.List(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}

	c.JSON(http.StatusOK, reports)
}

// Get returns one report by ID
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Param        id path int true "Report ID"
// @Success      200 {object} model.Report
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.reports.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Update applies a partial update to a report
// @Summary      Update a report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        id path int true "Report ID"
// @Success      200 {object} model.Report
// @Failure      400 {object} model.ErrorResponse
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/reports/{id} [put]
func (h *ReportHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "invalid payload",
			Details: err.Error(),
		})
		return
	}

	report, err := h.reports.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// History returns a report's status timeline
// @Summary      Report status history
// @Tags         reports
// @Produce      json
// @Param        id path int true "Report ID"
// @Success      200 {array} model.StatusChange
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/reports/{id}/history [get]
func (h *ReportHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	history, err := h.reports.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if history == nil {
		history = []model.StatusChange{}
	}

	c.JSON(http.StatusOK, history)
}

// Export downloads the report backlog as an XLSX workbook
// @Summary      Export reports to Excel
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        status query string false "Filter by status"
// @Success      200 {file} binary
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	buf, err := h.exports.ExportReports(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("reports_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// pathID parses a positive integer path parameter, responding 400 itself
// when the value is malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		logger.Get(c.Request.Context()).Warn().
			Str("param", name).
			Str("value", c.Param(name)).
			Msg("Malformed ID parameter")
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error: fmt.Sprintf("%s must be a positive integer", name),
		})
		return 0, false
	}
	return id, true
}
