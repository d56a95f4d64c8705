package handler

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/civicfix/civicfix-api/internal/cache"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/civicfix/civicfix-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	db        *sql.DB
	wsHub     *websocket.Hub
	cache     *cache.Cache
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler. wsHub and c may be nil.
func NewHealthHandler(db *sql.DB, wsHub *websocket.Hub, c *cache.Cache, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		wsHub:     wsHub,
		cache:     c,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck returns readiness status including dependencies
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := make(map[string]metrics.HealthStatus)

	components["database"] = metrics.CheckDatabaseHealth(h.db)
	components["memory"] = metrics.CheckMemoryHealth(512)

	h.respondHealth(c, components)
}

// DetailedHealthCheck returns comprehensive health information
// @Summary Detailed health check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := make(map[string]metrics.HealthStatus)

	components["database"] = metrics.CheckDatabaseHealth(h.db)
	components["memory"] = metrics.CheckMemoryHealth(512)

	if h.wsHub != nil {
		components["websocket"] = metrics.HealthStatus{
			Status: "healthy",
		}
	}
	if h.cache != nil {
		components["cache"] = metrics.HealthStatus{
			Status: "healthy",
		}
	}

	h.respondHealth(c, components)
}

func (h *HealthHandler) respondHealth(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// Metrics returns a snapshot of all application counters
// @Summary Application metrics
// @Tags health
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /health/metrics [get]
func (h *HealthHandler) Metrics(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()
	c.JSON(http.StatusOK, snapshot)
}
