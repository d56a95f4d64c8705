package repository

import (
	"database/sql"
	"fmt"

	"github.com/civicfix/civicfix-api/internal/model"
)

// TenderRepository manages tender persistence
type TenderRepository struct {
	db *sql.DB
}

// NewTenderRepository creates a new tender repository
func NewTenderRepository(db *sql.DB) *TenderRepository {
	return &TenderRepository{db: db}
}

// Create inserts a tender and fills in its ID and timestamp
func (r *TenderRepository) Create(tender *model.Tender) error {
	query := `
		INSERT INTO tenders (report_id, budget, deadline, urgent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(query,
		tender.ReportID, tender.Budget, tender.Deadline, tender.Urgent,
	).Scan(&tender.ID, &tender.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tender: %w", err)
	}
	return nil
}

// List returns every tender, newest first, with its report embedded
func (r *TenderRepository) List() ([]model.Tender, error) {
	query := `
		SELECT t.id, t.report_id, t.budget, t.deadline, t.urgent, t.created_at,` +
		reportColumns + `
		FROM tenders t
		JOIN reports r ON r.id = t.report_id
		ORDER BY t.created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list tenders: %w", err)
	}
	defer rows.Close()

	var tenders []model.Tender
	for rows.Next() {
		var t model.Tender
		var rep model.Report
		var costMin, costMax sql.NullInt64

		err := rows.Scan(
			&t.ID, &t.ReportID, &t.Budget, &t.Deadline, &t.Urgent, &t.CreatedAt,
			&rep.ID, &rep.Title, &rep.Description, &rep.Location, &rep.Country,
			&rep.Category, &rep.ImageURL, &rep.Status, &rep.Progress,
			&rep.AssignedContractor, &costMin, &costMax, &rep.Currency,
			&rep.CreatedAt, &rep.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tender: %w", err)
		}
		if costMin.Valid && costMax.Valid {
			rep.CostEstimate = &model.CostEstimate{Min: int(costMin.Int64), Max: int(costMax.Int64)}
		}
		t.Report = &rep
		tenders = append(tenders, t)
	}
	return tenders, rows.Err()
}

// GetByReportID returns a report's tender, or nil when none exists
func (r *TenderRepository) GetByReportID(reportID int64) (*model.Tender, error) {
	query := `
		SELECT id, report_id, budget, deadline, urgent, created_at
		FROM tenders WHERE report_id = $1
	`
	var t model.Tender
	err := r.db.QueryRow(query, reportID).Scan(
		&t.ID, &t.ReportID, &t.Budget, &t.Deadline, &t.Urgent, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tender for report %d: %w", reportID, err)
	}
	return &t, nil
}
