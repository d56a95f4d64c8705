package metrics

import (
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application counters
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	TotalLatency       int64
	RequestCount       int64

	// Estimation pipeline metrics
	Estimates           int64
	Conversions         int64
	ConversionFallbacks int64

	// Domain entity metrics
	ReportsCreated int64
	BidsCreated    int64
	TendersCreated int64
	RatingsCreated int64
	ExportsServed  int64

	// File upload metrics
	FilesUploaded      int64
	TotalBytesUploaded int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesOut int64

	// Authentication metrics
	LoginAttempts  int64
	LoginSuccesses int64
	LoginFailures  int64

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	StartTime time.Time
}

var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = &Metrics{
			StartTime:       time.Now(),
			EndpointMetrics: make(map[string]*EndpointMetrics),
		}
	})
}

// Get returns the global metrics instance
func Get() *Metrics {
	if globalMetrics == nil {
		Init()
	}
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementEstimates counts completed estimation pipeline runs
func (m *Metrics) IncrementEstimates() {
	atomic.AddInt64(&m.Estimates, 1)
}

// IncrementConversions counts successful currency conversions
func (m *Metrics) IncrementConversions() {
	atomic.AddInt64(&m.Conversions, 1)
}

// IncrementConversionFallback counts fail-open conversion fallbacks.
// The HTTP caller cannot see these; this counter is how operators can.
func (m *Metrics) IncrementConversionFallback() {
	atomic.AddInt64(&m.ConversionFallbacks, 1)
}

// IncrementReportCreated counts created reports
func (m *Metrics) IncrementReportCreated() {
	atomic.AddInt64(&m.ReportsCreated, 1)
}

// IncrementBidCreated counts created bids
func (m *Metrics) IncrementBidCreated() {
	atomic.AddInt64(&m.BidsCreated, 1)
}

// IncrementTenderCreated counts created tenders
func (m *Metrics) IncrementTenderCreated() {
	atomic.AddInt64(&m.TendersCreated, 1)
}

// IncrementRatingCreated counts submitted ratings
func (m *Metrics) IncrementRatingCreated() {
	atomic.AddInt64(&m.RatingsCreated, 1)
}

// IncrementExportServed counts generated Excel exports
func (m *Metrics) IncrementExportServed() {
	atomic.AddInt64(&m.ExportsServed, 1)
}

// IncrementFileUpload increments file upload counters
func (m *Metrics) IncrementFileUpload(bytes int64) {
	atomic.AddInt64(&m.FilesUploaded, 1)
	atomic.AddInt64(&m.TotalBytesUploaded, bytes)
}

// IncrementWSConnection increments the WebSocket connection gauge
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements the WebSocket connection gauge
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageOut counts outbound WebSocket messages
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// IncrementLogin increments login counters
func (m *Metrics) IncrementLogin(success bool) {
	atomic.AddInt64(&m.LoginAttempts, 1)
	if success {
		atomic.AddInt64(&m.LoginSuccesses, 1)
	} else {
		atomic.AddInt64(&m.LoginFailures, 1)
	}
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndpointMetrics == nil {
		m.EndpointMetrics = make(map[string]*EndpointMetrics)
	}

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetAverageLatency returns average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.TotalLatency)
	return float64(total) / float64(count)
}

// GetUptime returns the application uptime
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot is a point-in-time copy of all counters
type MetricsSnapshot struct {
	UptimeSeconds       float64                            `json:"uptime_seconds"`
	TotalRequests       int64                              `json:"total_requests"`
	SuccessfulRequests  int64                              `json:"successful_requests"`
	FailedRequests      int64                              `json:"failed_requests"`
	AvgLatencyMs        float64                            `json:"avg_latency_ms"`
	Estimates           int64                              `json:"estimates"`
	Conversions         int64                              `json:"conversions"`
	ConversionFallbacks int64                              `json:"conversion_fallbacks"`
	ReportsCreated      int64                              `json:"reports_created"`
	BidsCreated         int64                              `json:"bids_created"`
	TendersCreated      int64                              `json:"tenders_created"`
	RatingsCreated      int64                              `json:"ratings_created"`
	ExportsServed       int64                              `json:"exports_served"`
	FilesUploaded       int64                              `json:"files_uploaded"`
	BytesUploaded       int64                              `json:"bytes_uploaded"`
	WSConnections       int64                              `json:"ws_connections"`
	WSMessagesOut       int64                              `json:"ws_messages_out"`
	LoginAttempts       int64                              `json:"login_attempts"`
	LoginFailures       int64                              `json:"login_failures"`
	Endpoints           map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		UptimeSeconds:       time.Since(m.StartTime).Seconds(),
		TotalRequests:       atomic.LoadInt64(&m.TotalRequests),
		SuccessfulRequests:  atomic.LoadInt64(&m.SuccessfulRequests),
		FailedRequests:      atomic.LoadInt64(&m.FailedRequests),
		AvgLatencyMs:        m.GetAverageLatency(),
		Estimates:           atomic.LoadInt64(&m.Estimates),
		Conversions:         atomic.LoadInt64(&m.Conversions),
		ConversionFallbacks: atomic.LoadInt64(&m.ConversionFallbacks),
		ReportsCreated:      atomic.LoadInt64(&m.ReportsCreated),
		BidsCreated:         atomic.LoadInt64(&m.BidsCreated),
		TendersCreated:      atomic.LoadInt64(&m.TendersCreated),
		RatingsCreated:      atomic.LoadInt64(&m.RatingsCreated),
		ExportsServed:       atomic.LoadInt64(&m.ExportsServed),
		FilesUploaded:       atomic.LoadInt64(&m.FilesUploaded),
		BytesUploaded:       atomic.LoadInt64(&m.TotalBytesUploaded),
		WSConnections:       atomic.LoadInt64(&m.WSConnections),
		WSMessagesOut:       atomic.LoadInt64(&m.WSMessagesOut),
		LoginAttempts:       atomic.LoadInt64(&m.LoginAttempts),
		LoginFailures:       atomic.LoadInt64(&m.LoginFailures),
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.EndpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot)
		for k, v := range m.EndpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: atomic.LoadInt64(&v.Requests),
				Errors:   atomic.LoadInt64(&v.Errors),
			}
			if em.Requests > 0 {
				em.AvgLatencyMs = float64(atomic.LoadInt64(&v.TotalLatency)) / float64(em.Requests)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// CheckDatabaseHealth checks database connectivity
func CheckDatabaseHealth(db *sql.DB) HealthStatus {
	start := time.Now()

	if db == nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "database connection not initialized",
		}
	}

	err := db.Ping()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency,
		}
	}

	if latency > 100 {
		return HealthStatus{
			Status:  "degraded",
			Message: "high latency",
			Latency: latency,
		}
	}

	return HealthStatus{
		Status:  "healthy",
		Latency: latency,
	}
}

// CheckMemoryHealth checks memory usage against a heap limit in MB
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "heap memory exceeds limit",
		}
	}

	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  "degraded",
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{
		Status: "healthy",
	}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
