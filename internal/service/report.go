package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/civicfix/civicfix-api/internal/cache"
	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/websocket"
)

const (
	// TenderBudgetPending is used until officials assign a budget
	TenderBudgetPending = "To be determined"

	// DefaultTenderWindow is how long a tender stays open for bids
	DefaultTenderWindow = 7 * 24 * time.Hour

	reportsCachePrefix = "reports:"
	reportsCacheTTL    = 30 * time.Second
)

// ReportStore is the persistence surface the report service needs
type ReportStore interface {
	Create(report *model.Report) error
	GetByID(id int64) (*model.Report, error)
	List(status string, limit int) ([]model.Report, error)
	Update(id int64, req model.UpdateReportRequest) (*model.Report, error)
	UpdateProgress(id int64, progress int, status string) error
	AddStatusChange(reportID int64, status string, progress int) error
	GetStatusHistory(reportID int64) ([]model.StatusChange, error)
}

// TenderStore is the persistence surface for tenders
type TenderStore interface {
	Create(tender *model.Tender) error
	List() ([]model.Tender, error)
	GetByReportID(reportID int64) (*model.Tender, error)
}

// StatusBroadcaster pushes report status changes to connected watchers
type StatusBroadcaster interface {
	BroadcastReportStatus(event websocket.ReportStatusEvent)
}

// CreateReportInput is the validated input for a new report
type CreateReportInput struct {
	Title       string
	Description string
	Location    string
	Country     string
	Category    string
	ImageURL    string
	Urgent      bool
}

// ReportService coordinates report creation, listing and updates. Every
// new report automatically opens a tender so contractors can bid.
type ReportService struct {
	reports   ReportStore
	tenders   TenderStore
	estimator *EstimateService
	cache     *cache.Cache
	broadcast StatusBroadcaster
}

// NewReportService creates a report service. estimator, cache and broadcast
// may be nil; the corresponding behavior is skipped.
func NewReportService(reports ReportStore, tenders TenderStore, estimator *EstimateService, c *cache.Cache, broadcast StatusBroadcaster) *ReportService {
	return &ReportService{
		reports:   reports,
		tenders:   tenders,
		estimator: estimator,
		cache:     c,
		broadcast: broadcast,
	}
}

// Create validates the input, stores the report and opens its tender.
// When a country is given the damage cost estimate is computed inline.
func (s *ReportService) Create(ctx context.Context, input CreateReportInput) (*model.Report, *model.Tender, error) {
	log := logger.Get(ctx)

	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Description) == "" ||
		strings.TrimSpace(input.Location) == "" {
		return nil, nil, model.ErrMissingFields
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	status := model.StatusPending
	if input.Urgent {
		status = model.StatusUrgent
	}

	report := &model.Report{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Country:     strings.TrimSpace(input.Country),
		Category:    category,
		ImageURL:    input.ImageURL,
		Status:      status,
		Progress:    0,
	}

	if s.estimator != nil && report.Country != "" {
		result, err := s.estimator.Analyze(ctx, model.AnalyzeRequest{
			Title:       report.Title,
			Description: report.Description,
			Country:     report.Country,
		})
		if err != nil {
			// A report without an estimate is still useful, keep going
			log.Warn().Err(err).Msg("Damage cost estimation failed for new report")
		} else {
			estimate := result.CostEstimate
			report.CostEstimate = &estimate
			report.Currency = result.Currency
		}
	}

	if err := s.reports.Create(report); err != nil {
		return nil, nil, fmt.Errorf("create report: %w", err)
	}

	if err := s.reports.AddStatusChange(report.ID, report.Status, 0); err != nil {
		log.Warn().Err(err).Int64("report_id", report.ID).Msg("Failed to record initial status")
	}

	tender := &model.Tender{
		ReportID: report.ID,
		Budget:   TenderBudgetPending,
		Deadline: time.Now().Add(DefaultTenderWindow),
		Urgent:   input.Urgent,
	}
	if err := s.tenders.Create(tender); err != nil {
		return nil, nil, fmt.Errorf("open tender for report %d: %w", report.ID, err)
	}
	report.Tender = tender

	s.invalidateListings()
	metrics.Get().IncrementReportCreated()
	metrics.Get().IncrementTenderCreated()

	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionReportCreate,
		Resource:   "report",
		ResourceID: fmt.Sprintf("%d", report.ID),
		Success:    true,
		Details: map[string]interface{}{
			"category": report.Category,
			"status":   report.Status,
		},
	})

	log.Info().
		Int64("report_id", report.ID).
		Str("category", report.Category).
		Str("status", report.Status).
		Msg("Report created with tender")

	return report, tender, nil
}

// GetByID returns one report with its tender embedded
func (s *ReportService) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	report, err := s.reports.GetByID(id)
	if err != nil {
		return nil, err
	}

	tender, err := s.tenders.GetByReportID(id)
	if err != nil {
		logger.Get(ctx).Warn().Err(err).Int64("report_id", id).Msg("Failed to load tender")
	} else {
		report.Tender = tender
	}
	return report, nil
}

// List returns reports filtered by status and capped by limit. Results are
// cached briefly since the public feed is read far more often than written.
func (s *ReportService) List(ctx context.Context, status string, limit int) ([]model.Report, error) {
	if status != "" && !model.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}

	key := fmt.Sprintf("%s%s:%d", reportsCachePrefix, status, limit)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if reports, ok := cached.([]model.Report); ok {
				return reports, nil
			}
		}
	}

	reports, err := s.reports.List(status, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetWithTTL(key, reports, reportsCacheTTL)
	}
	return reports, nil
}

// Update applies a partial update, records the status timeline entry and
// notifies watchers when the status changed.
func (s *ReportService) Update(ctx context.Context, id int64, req model.UpdateReportRequest) (*model.Report, error) {
	if req.Status != nil && !model.ValidStatus(*req.Status) {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, *req.Status)
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return nil, model.ErrInvalidProgress
	}

	report, err := s.reports.Update(id, req)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if err := s.reports.AddStatusChange(id, report.Status, report.Progress); err != nil {
			logger.Get(ctx).Warn().Err(err).Int64("report_id", id).Msg("Failed to record status change")
		}
		if s.broadcast != nil {
			s.broadcast.BroadcastReportStatus(websocket.ReportStatusEvent{
				ReportID: int(id),
				Status:   report.Status,
			})
		}
	}

	s.invalidateListings()

	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionReportUpdate,
		Resource:   "report",
		ResourceID: fmt.Sprintf("%d", id),
		Success:    true,
	})

	return report, nil
}

// History returns a report's status timeline, verifying it exists first
func (s *ReportService) History(ctx context.Context, id int64) ([]model.StatusChange, error) {
	if _, err := s.reports.GetByID(id); err != nil {
		return nil, err
	}
	return s.reports.GetStatusHistory(id)
}

func (s *ReportService) invalidateListings() {
	if s.cache != nil {
		s.cache.InvalidatePrefix(reportsCachePrefix)
	}
}
