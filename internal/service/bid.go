package service

import (
	"context"
	"fmt"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/repository"
	"github.com/civicfix/civicfix-api/internal/websocket"
)

// BidStore is the persistence surface the bid service needs
type BidStore interface {
	Create(bid *model.Bid) error
	GetByID(id int64) (*model.Bid, error)
	List(filter repository.BidFilter) ([]model.Bid, error)
	UpdateProgress(id int64, progress int) (*model.Bid, error)
}

// ProgressBroadcaster pushes bid progress events to connected watchers
type ProgressBroadcaster interface {
	BroadcastBidProgress(event websocket.BidProgressEvent)
	BroadcastReportStatus(event websocket.ReportStatusEvent)
}

// BidService handles contractor bids and the progress cascade: a bid's
// progress drives the status of the report it belongs to.
type BidService struct {
	bids      BidStore
	reports   ReportStore
	broadcast ProgressBroadcaster
}

// NewBidService creates a bid service. broadcast may be nil.
func NewBidService(bids BidStore, reports ReportStore, broadcast ProgressBroadcaster) *BidService {
	return &BidService{
		bids:      bids,
		reports:   reports,
		broadcast: broadcast,
	}
}

// Create places a bid on a report's tender. The report must exist; a bid
// on a missing report returns model.ErrReportNotFound.
func (s *BidService) Create(ctx context.Context, req model.CreateBidRequest) (*model.Bid, error) {
	report, err := s.reports.GetByID(req.ReportID)
	if err != nil {
		return nil, err
	}

	bid := &model.Bid{
		ReportID:   req.ReportID,
		Contractor: req.Contractor,
		Amount:     req.Amount,
		Status:     model.BidStatusActive,
		Progress:   0,
	}
	if err := s.bids.Create(bid); err != nil {
		return nil, err
	}

	// First bid moves the report into the bidding phase
	if report.Status == model.StatusPending || report.Status == model.StatusUrgent {
		status := model.StatusBidding
		if _, err := s.reports.Update(report.ID, model.UpdateReportRequest{Status: &status}); err != nil {
			logger.Get(ctx).Warn().Err(err).Int64("report_id", report.ID).Msg("Failed to move report to bidding")
		}
	}

	metrics.Get().IncrementBidCreated()

	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionBidCreate,
		Resource:   "bid",
		ResourceID: fmt.Sprintf("%d", bid.ID),
		Success:    true,
		Details: map[string]interface{}{
			"report_id":  bid.ReportID,
			"contractor": bid.Contractor,
			"amount":     bid.Amount,
		},
	})

	logger.Get(ctx).Info().
		Int64("bid_id", bid.ID).
		Int64("report_id", bid.ReportID).
		Str("contractor", bid.Contractor).
		Msg("Bid placed")

	return bid, nil
}

// GetByID returns one bid
func (s *BidService) GetByID(ctx context.Context, id int64) (*model.Bid, error) {
	return s.bids.GetByID(id)
}

// List returns bids matching the filter, newest first
func (s *BidService) List(ctx context.Context, filter repository.BidFilter) ([]model.Bid, error) {
	return s.bids.List(filter)
}

// UpdateProgress sets a bid's progress and cascades to the parent report:
// 100 completes the report, anything above zero puts it in progress.
func (s *BidService) UpdateProgress(ctx context.Context, bidID int64, progress int) (*model.ProgressUpdateResponse, error) {
	if progress < 0 || progress > 100 {
		return nil, model.ErrInvalidProgress
	}

	bid, err := s.bids.UpdateProgress(bidID, progress)
	if err != nil {
		return nil, err
	}

	report, err := s.reports.GetByID(bid.ReportID)
	if err != nil {
		return nil, err
	}

	reportStatus := report.Status
	switch {
	case progress >= 100:
		reportStatus = model.StatusCompleted
	case progress > 0:
		reportStatus = model.StatusInProgress
	}

	statusChanged := reportStatus != report.Status
	if statusChanged || report.Progress != progress {
		if err := s.reports.UpdateProgress(report.ID, progress, reportStatus); err != nil {
			return nil, fmt.Errorf("cascade progress to report %d: %w", report.ID, err)
		}
		report.Progress = progress
		report.Status = reportStatus
	}

	if statusChanged {
		if err := s.reports.AddStatusChange(report.ID, reportStatus, progress); err != nil {
			logger.Get(ctx).Warn().Err(err).Int64("report_id", report.ID).Msg("Failed to record status change")
		}
	}

	if s.broadcast != nil {
		s.broadcast.BroadcastBidProgress(websocket.BidProgressEvent{
			BidID:     int(bid.ID),
			ReportID:  int(bid.ReportID),
			Progress:  progress,
			BidStatus: bid.Status,
		})
		if statusChanged {
			s.broadcast.BroadcastReportStatus(websocket.ReportStatusEvent{
				ReportID: int(report.ID),
				Status:   reportStatus,
			})
		}
	}

	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionBidProgress,
		Resource:   "bid",
		ResourceID: fmt.Sprintf("%d", bid.ID),
		Success:    true,
		Details: map[string]interface{}{
			"progress":      progress,
			"report_id":     bid.ReportID,
			"report_status": reportStatus,
		},
	})

	logger.Get(ctx).Info().
		Int64("bid_id", bid.ID).
		Int64("report_id", bid.ReportID).
		Int("progress", progress).
		Str("report_status", reportStatus).
		Msg("Bid progress updated")

	return &model.ProgressUpdateResponse{
		Bid:     bid,
		Report:  report,
		Message: "Progress updated successfully",
	}, nil
}
