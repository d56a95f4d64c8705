package model

// CreateBidRequest is the payload for placing a bid
type CreateBidRequest struct {
	ReportID   int64   `json:"reportId" binding:"required"`
	Contractor string  `json:"contractor" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
}

// ProgressUpdateRequest is the payload for a bid progress update.
// Progress is a pointer so "missing" and "zero" can be told apart.
type ProgressUpdateRequest struct {
	Progress *int `json:"progress"`
}

// CreateTenderRequest is the payload for opening a tender manually
type CreateTenderRequest struct {
	ReportID int64  `json:"reportId" binding:"required"`
	Budget   string `json:"budget"`
	Deadline string `json:"deadline"` // RFC3339; empty means now+7d
	Urgent   bool   `json:"urgent"`
}

// CreateRatingRequest is the payload for rating a completed repair
type CreateRatingRequest struct {
	ReportID int64  `json:"reportId" binding:"required"`
	UserID   string `json:"userId" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
}

// UpdateReportRequest is the payload for a partial report update.
// Pointer fields distinguish "not sent" from zero values.
type UpdateReportRequest struct {
	Status             *string `json:"status"`
	Progress           *int    `json:"progress"`
	AssignedContractor *string `json:"assignedContractor"`
}

// ProgressUpdateResponse is returned by the bid progress PATCH,
// echoing both the bid and the cascaded report.
type ProgressUpdateResponse struct {
	Bid     *Bid    `json:"bid"`
	Report  *Report `json:"report"`
	Message string  `json:"message"`
}

// ContractorRatings aggregates ratings across a contractor's completed reports
type ContractorRatings struct {
	AverageRating *string  `json:"averageRating"`
	TotalRatings  int      `json:"totalRatings"`
	Ratings       []Rating `json:"ratings"`
}

// ErrorResponse is the error body for every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
