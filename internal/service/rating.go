package service

import (
	"context"
	"fmt"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/civicfix/civicfix-api/internal/model"
)

// RatingStore is the persistence surface for ratings
type RatingStore interface {
	Create(rating *model.Rating) error
	ListByReport(reportID int64) ([]model.Rating, error)
	ListByContractorCompleted(contractor string) ([]model.Rating, error)
}

// RatingService records citizen ratings and aggregates them per contractor
type RatingService struct {
	ratings RatingStore
	reports ReportStore
}

// NewRatingService creates a rating service
func NewRatingService(ratings RatingStore, reports ReportStore) *RatingService {
	return &RatingService{ratings: ratings, reports: reports}
}

// Create records a 1 to 5 star rating for a report
func (s *RatingService) Create(ctx context.Context, req model.CreateRatingRequest) (*model.Rating, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, model.ErrInvalidRating
	}

	if _, err := s.reports.GetByID(req.ReportID); err != nil {
		return nil, err
	}

	rating := &model.Rating{
		ReportID: req.ReportID,
		UserID:   req.UserID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := s.ratings.Create(rating); err != nil {
		return nil, err
	}

	metrics.Get().IncrementRatingCreated()

	logger.Get(ctx).Info().
		Int64("rating_id", rating.ID).
		Int64("report_id", rating.ReportID).
		Int("rating", rating.Rating).
		Msg("Rating recorded")

	return rating, nil
}

// ListByReport returns a report's ratings, oldest first
func (s *RatingService) ListByReport(ctx context.Context, reportID int64) ([]model.Rating, error) {
	if _, err := s.reports.GetByID(reportID); err != nil {
		return nil, err
	}
	return s.ratings.ListByReport(reportID)
}

// ContractorSummary aggregates ratings across a contractor's completed
// reports. The average carries two decimals and is null with no ratings.
func (s *RatingService) ContractorSummary(ctx context.Context, contractor string) (*model.ContractorRatings, error) {
	ratings, err := s.ratings.ListByContractorCompleted(contractor)
	if err != nil {
		return nil, err
	}

	summary := &model.ContractorRatings{
		TotalRatings: len(ratings),
		Ratings:      ratings,
	}
	if summary.Ratings == nil {
		summary.Ratings = []model.Rating{}
	}

	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r.Rating
		}
		avg := fmt.Sprintf("%.2f", float64(sum)/float64(len(ratings)))
		summary.AverageRating = &avg
	}

	return summary, nil
}
