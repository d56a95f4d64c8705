package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/model"
)

// ReportRepository manages report persistence
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `
	r.id, r.title, r.description, r.location, COALESCE(r.country, ''),
	r.category, COALESCE(r.image_url, ''), r.status, r.progress,
	COALESCE(r.assigned_contractor, ''), r.cost_estimate_min,
	r.cost_estimate_max, COALESCE(r.currency, ''), r.created_at, r.updated_at`

// scanReport scans one report row including the nullable cost estimate
func scanReport(scanner interface{ Scan(...interface{}) error }) (*model.Report, error) {
	var r model.Report
	var costMin, costMax sql.NullInt64

	err := scanner.Scan(
		&r.ID, &r.Title, &r.Description, &r.Location, &r.Country,
		&r.Category, &r.ImageURL, &r.Status, &r.Progress,
		&r.AssignedContractor, &costMin, &costMax, &r.Currency,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if costMin.Valid && costMax.Valid {
		r.CostEstimate = &model.CostEstimate{
			Min: int(costMin.Int64),
			Max: int(costMax.Int64),
		}
	}
	return &r, nil
}

// Create inserts a report and fills in its ID and timestamps
func (r *ReportRepository) Create(report *model.Report) error {
	var costMin, costMax interface{}
	if report.CostEstimate != nil {
		costMin = report.CostEstimate.Min
		costMax = report.CostEstimate.Max
	}

	query := `
		INSERT INTO reports (title, description, location, country, category,
			image_url, status, progress, assigned_contractor,
			cost_estimate_min, cost_estimate_max, currency)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8,
			NULLIF($9, ''), $10, $11, NULLIF($12, ''))
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(query,
		report.Title, report.Description, report.Location, report.Country,
		report.Category, report.ImageURL, report.Status, report.Progress,
		report.AssignedContractor, costMin, costMax, report.Currency,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		logger.Global().Error().Err(err).Msg("Failed to insert report")
		return fmt.Errorf("insert report: %w", err)
	}

	return nil
}

// GetByID returns one report or model.ErrReportNotFound
func (r *ReportRepository) GetByID(id int64) (*model.Report, error) {
	query := "SELECT" + reportColumns + " FROM reports r WHERE r.id = $1"

	report, err := scanReport(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, model.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %d: %w", id, err)
	}
	return report, nil
}

// List returns reports, optionally filtered by status and capped by limit,
// newest first, with each report's tender embedded.
func (r *ReportRepository) List(status string, limit int) ([]model.Report, error) {
	query := "SELECT" + reportColumns + " FROM reports r"
	args := []interface{}{}

	if status != "" {
		query += " WHERE r.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY r.created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	ids := make([]int64, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *report)
		ids = append(ids, report.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	if err := r.attachTenders(reports, ids); err != nil {
		return nil, err
	}

	return reports, nil
}

// attachTenders embeds each report's tender into the slice
func (r *ReportRepository) attachTenders(reports []model.Report, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, report_id, budget, deadline, urgent, created_at
		FROM tenders WHERE report_id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("list tenders for reports: %w", err)
	}
	defer rows.Close()

	byReport := make(map[int64]*model.Tender)
	for rows.Next() {
		var t model.Tender
		if err := rows.Scan(&t.ID, &t.ReportID, &t.Budget, &t.Deadline, &t.Urgent, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan tender: %w", err)
		}
		tender := t
		byReport[t.ReportID] = &tender
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tenders: %w", err)
	}

	for i := range reports {
		reports[i].Tender = byReport[reports[i].ID]
	}
	return nil
}

// Update applies a partial update and returns the updated report
func (r *ReportRepository) Update(id int64, req model.UpdateReportRequest) (*model.Report, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}

	if req.Status != nil {
		args = append(args, *req.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if req.Progress != nil {
		args = append(args, *req.Progress)
		sets = append(sets, fmt.Sprintf("progress = $%d", len(args)))
	}
	if req.AssignedContractor != nil {
		args = append(args, *req.AssignedContractor)
		sets = append(sets, fmt.Sprintf("assigned_contractor = NULLIF($%d, '')", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE reports SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("update report %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update report %d: %w", id, err)
	}
	if affected == 0 {
		return nil, model.ErrReportNotFound
	}

	return r.GetByID(id)
}

// UpdateProgress sets progress and status together (the bid cascade path)
func (r *ReportRepository) UpdateProgress(id int64, progress int, status string) error {
	query := `
		UPDATE reports
		SET progress = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`
	result, err := r.db.Exec(query, progress, status, id)
	if err != nil {
		return fmt.Errorf("update report progress %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update report progress %d: %w", id, err)
	}
	if affected == 0 {
		return model.ErrReportNotFound
	}
	return nil
}

// AddStatusChange appends a status timeline entry
func (r *ReportRepository) AddStatusChange(reportID int64, status string, progress int) error {
	query := `
		INSERT INTO report_status_history (report_id, status, progress)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.Exec(query, reportID, status, progress); err != nil {
		return fmt.Errorf("insert status change: %w", err)
	}
	return nil
}

// GetStatusHistory returns a report's status timeline, oldest first
func (r *ReportRepository) GetStatusHistory(reportID int64) ([]model.StatusChange, error) {
	query := `
		SELECT id, report_id, status, progress, created_at
		FROM report_status_history
		WHERE report_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, reportID)
	if err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()

	var changes []model.StatusChange
	for rows.Next() {
		var c model.StatusChange
		if err := rows.Scan(&c.ID, &c.ReportID, &c.Status, &c.Progress, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
