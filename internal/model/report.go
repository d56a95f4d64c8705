package model

import "time"

// Report status values. These mirror the values the front end filters on.
const (
	StatusUrgent     = "urgent"
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusBidding    = "bidding"
	StatusCompleted  = "completed"
)

// Bid status values
const (
	BidStatusActive   = "active"
	BidStatusAccepted = "accepted"
	BidStatusRejected = "rejected"
)

// DefaultCategory is assigned when the citizen does not pick one
const DefaultCategory = "Public Issue"

// Report is a citizen-submitted infrastructure issue
type Report struct {
	ID                 int64         `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Location           string        `json:"location"`
	Country            string        `json:"country,omitempty"`
	Category           string        `json:"category"`
	ImageURL           string        `json:"imageUrl,omitempty"`
	Status             string        `json:"status"`
	Progress           int           `json:"progress"`
	AssignedContractor string        `json:"assignedContractor,omitempty"`
	CostEstimate       *CostEstimate `json:"costEstimate,omitempty"`
	Currency           string        `json:"currency,omitempty"`
	Tender             *Tender       `json:"tender,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// Tender is the call-for-bids opened for a report
type Tender struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"reportId"`
	Budget    string    `json:"budget"`
	Deadline  time.Time `json:"deadline"`
	Urgent    bool      `json:"urgent"`
	Report    *Report   `json:"report,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bid is a contractor's offer on a report
type Bid struct {
	ID         int64     `json:"id"`
	ReportID   int64     `json:"reportId"`
	Contractor string    `json:"contractor"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Rating is a citizen's rating of a completed repair
type Rating struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"reportId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusChange is one entry of a report's status timeline
type StatusChange struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"reportId"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidStatus reports whether s is a known report status
func ValidStatus(s string) bool {
	switch s {
	case StatusUrgent, StatusPending, StatusInProgress, StatusBidding, StatusCompleted:
		return true
	}
	return false
}
