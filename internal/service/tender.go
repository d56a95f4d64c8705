package service

import (
	"context"
	"fmt"
	"time"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/civicfix/civicfix-api/internal/model"
)

// TenderService lists open tenders and lets officials open one manually
// for reports that lost theirs or predate the automatic flow.
type TenderService struct {
	tenders TenderStore
	reports ReportStore
}

// NewTenderService creates a tender service
func NewTenderService(tenders TenderStore, reports ReportStore) *TenderService {
	return &TenderService{tenders: tenders, reports: reports}
}

// List returns every tender with its report embedded, newest first
func (s *TenderService) List(ctx context.Context) ([]model.Tender, error) {
	return s.tenders.List()
}

// Create opens a tender for an existing report. An empty deadline defaults
// to the standard bidding window; an empty budget stays undetermined.
func (s *TenderService) Create(ctx context.Context, req model.CreateTenderRequest) (*model.Tender, error) {
	report, err := s.reports.GetByID(req.ReportID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.tenders.GetByReportID(report.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: report %d", model.ErrTenderExists, report.ID)
	}

	budget := req.Budget
	if budget == "" {
		budget = TenderBudgetPending
	}

	deadline := time.Now().Add(DefaultTenderWindow)
	if req.Deadline != "" {
		parsed, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			return nil, model.ErrInvalidDeadline
		}
		deadline = parsed
	}

	tender := &model.Tender{
		ReportID: report.ID,
		Budget:   budget,
		Deadline: deadline,
		Urgent:   req.Urgent,
	}
	if err := s.tenders.Create(tender); err != nil {
		return nil, err
	}
	tender.Report = report

	metrics.Get().IncrementTenderCreated()

	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionTenderCreate,
		Resource:   "tender",
		ResourceID: fmt.Sprintf("%d", tender.ID),
		Success:    true,
		Details: map[string]interface{}{
			"report_id": tender.ReportID,
			"urgent":    tender.Urgent,
		},
	})

	return tender, nil
}
