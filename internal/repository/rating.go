package repository

import (
	"database/sql"
	"fmt"

	"github.com/civicfix/civicfix-api/internal/model"
)

// RatingRepository manages rating persistence
type RatingRepository struct {
	db *sql.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating and fills in its ID and timestamp
func (r *RatingRepository) Create(rating *model.Rating) error {
	query := `
		INSERT INTO ratings (report_id, user_id, rating, comment)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at
	`
	err := r.db.QueryRow(query,
		rating.ReportID, rating.UserID, rating.Rating, rating.Comment,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

// ListByReport returns a report's ratings, oldest first
func (r *RatingRepository) ListByReport(reportID int64) ([]model.Rating, error) {
	query := `
		SELECT id, report_id, user_id, rating, COALESCE(comment, ''), created_at
		FROM ratings WHERE report_id = $1
		ORDER BY created_at ASC
	`
	return r.queryRatings(query, reportID)
}

// ListByContractorCompleted returns all ratings across a contractor's
// completed reports. Only completed work counts toward the average.
func (r *RatingRepository) ListByContractorCompleted(contractor string) ([]model.Rating, error) {
	query := `
		SELECT ra.id, ra.report_id, ra.user_id, ra.rating, COALESCE(ra.comment, ''), ra.created_at
		FROM ratings ra
		JOIN reports re ON re.id = ra.report_id
		WHERE re.assigned_contractor = $1 AND re.status = 'completed'
		ORDER BY ra.created_at ASC
	`
	return r.queryRatings(query, contractor)
}

func (r *RatingRepository) queryRatings(query string, args ...interface{}) ([]model.Rating, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []model.Rating
	for rows.Next() {
		var ra model.Rating
		if err := rows.Scan(&ra.ID, &ra.ReportID, &ra.UserID, &ra.Rating, &ra.Comment, &ra.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, ra)
	}
	return ratings, rows.Err()
}
