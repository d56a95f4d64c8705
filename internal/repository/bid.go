package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/civicfix/civicfix-api/internal/model"
)

// BidRepository manages bid persistence
type BidRepository struct {
	db *sql.DB
}

// NewBidRepository creates a new bid repository
func NewBidRepository(db *sql.DB) *BidRepository {
	return &BidRepository{db: db}
}

// BidFilter narrows bid listings. Zero values mean "no filter".
type BidFilter struct {
	Contractor string
	ReportID   int64
	Status     string
}

// Create inserts a bid and fills in its ID and timestamp
func (r *BidRepository) Create(bid *model.Bid) error {
	query := `
		INSERT INTO bids (report_id, contractor, amount, status, progress)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(query,
		bid.ReportID, bid.Contractor, bid.Amount, bid.Status, bid.Progress,
	).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}
	return nil
}

// GetByID returns one bid or model.ErrBidNotFound
func (r *BidRepository) GetByID(id int64) (*model.Bid, error) {
	query := `
		SELECT id, report_id, contractor, amount, status, progress, created_at
		FROM bids WHERE id = $1
	`
	var b model.Bid
	err := r.db.QueryRow(query, id).Scan(
		&b.ID, &b.ReportID, &b.Contractor, &b.Amount, &b.Status, &b.Progress, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrBidNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bid %d: %w", id, err)
	}
	return &b, nil
}

// List returns bids matching the filter, newest first
func (r *BidRepository) List(filter BidFilter) ([]model.Bid, error) {
	query := `
		SELECT id, report_id, contractor, amount, status, progress, created_at
		FROM bids
	`
	var conditions []string
	var args []interface{}

	if filter.Contractor != "" {
		args = append(args, filter.Contractor)
		conditions = append(conditions, fmt.Sprintf("contractor = $%d", len(args)))
	}
	if filter.ReportID != 0 {
		args = append(args, filter.ReportID)
		conditions = append(conditions, fmt.Sprintf("report_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	var bids []model.Bid
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.ReportID, &b.Contractor, &b.Amount, &b.Status, &b.Progress, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

// UpdateProgress sets a bid's progress and returns the updated bid
func (r *BidRepository) UpdateProgress(id int64, progress int) (*model.Bid, error) {
	query := `
		UPDATE bids SET progress = $1 WHERE id = $2
		RETURNING id, report_id, contractor, amount, status, progress, created_at
	`
	var b model.Bid
	err := r.db.QueryRow(query, progress, id).Scan(
		&b.ID, &b.ReportID, &b.Contractor, &b.Amount, &b.Status, &b.Progress, &b.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrBidNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update bid progress %d: %w", id, err)
	}
	return &b, nil
}
