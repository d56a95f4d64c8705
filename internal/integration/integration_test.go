// Package integration exercises the full HTTP surface end to end: report
// submission with its automatic tender, bidding, the progress cascade and
// contractor ratings, against in-memory stores.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/civicfix/civicfix-api/internal/handler"
	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/repository"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/civicfix/civicfix-api/internal/websocket"
	"github.com/gin-gonic/gin"
)

// memStores bundles the in-memory persistence used by the test router
type memStores struct {
	reports *memReportStore
	bids    *memBidStore
	tenders *memTenderStore
	ratings *memRatingStore
}

type memReportStore struct {
	reports map[int64]*model.Report
	history []model.StatusChange
	nextID  int64
}

func (m *memReportStore) Create(report *model.Report) error {
	report.ID = m.nextID
	m.nextID++
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	copied := *report
	m.reports[report.ID] = &copied
	return nil
}

func (m *memReportStore) GetByID(id int64) (*model.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, model.ErrReportNotFound
	}
	copied := *report
	return &copied, nil
}

func (m *memReportStore) List(status string, limit int) ([]model.Report, error) {
	var out []model.Report
	for _, r := range m.reports {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memReportStore) Update(id int64, req model.UpdateReportRequest) (*model.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, model.ErrReportNotFound
	}
	if req.Status != nil {
		report.Status = *req.Status
	}
	if req.Progress != nil {
		report.Progress = *req.Progress
	}
	if req.AssignedContractor != nil {
		report.AssignedContractor = *req.AssignedContractor
	}
	report.UpdatedAt = time.Now()
	copied := *report
	return &copied, nil
}

func (m *memReportStore) UpdateProgress(id int64, progress int, status string) error {
	report, ok := m.reports[id]
	if !ok {
		return model.ErrReportNotFound
	}
	report.Progress = progress
	report.Status = status
	return nil
}

func (m *memReportStore) AddStatusChange(reportID int64, status string, progress int) error {
	m.history = append(m.history, model.StatusChange{ReportID: reportID, Status: status, Progress: progress})
	return nil
}

func (m *memReportStore) GetStatusHistory(reportID int64) ([]model.StatusChange, error) {
	var out []model.StatusChange
	for _, c := range m.history {
		if c.ReportID == reportID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memBidStore struct {
	bids   map[int64]*model.Bid
	nextID int64
}

func (m *memBidStore) Create(bid *model.Bid) error {
	bid.ID = m.nextID
	m.nextID++
	bid.CreatedAt = time.Now()
	copied := *bid
	m.bids[bid.ID] = &copied
	return nil
}

func (m *memBidStore) GetByID(id int64) (*model.Bid, error) {
	bid, ok := m.bids[id]
	if !ok {
		return nil, model.ErrBidNotFound
	}
	copied := *bid
	return &copied, nil
}

func (m *memBidStore) List(filter repository.BidFilter) ([]model.Bid, error) {
	var out []model.Bid
	for _, b := range m.bids {
		if filter.Contractor != "" && b.Contractor != filter.Contractor {
			continue
		}
		if filter.ReportID != 0 && b.ReportID != filter.ReportID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (m *memBidStore) UpdateProgress(id int64, progress int) (*model.Bid, error) {
	bid, ok := m.bids[id]
	if !ok {
		return nil, model.ErrBidNotFound
	}
	bid.Progress = progress
	copied := *bid
	return &copied, nil
}

type memTenderStore struct {
	tenders map[int64]*model.Tender
	nextID  int64
}

func (m *memTenderStore) Create(tender *model.Tender) error {
	tender.ID = m.nextID
	m.nextID++
	tender.CreatedAt = time.Now()
	copied := *tender
	m.tenders[tender.ID] = &copied
	return nil
}

func (m *memTenderStore) List() ([]model.Tender, error) {
	var out []model.Tender
	for _, t := range m.tenders {
		out = append(out, *t)
	}
	return out, nil
}

func (m *memTenderStore) GetByReportID(reportID int64) (*model.Tender, error) {
	for _, t := range m.tenders {
		if t.ReportID == reportID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

type memRatingStore struct {
	ratings []model.Rating
	reports *memReportStore
	nextID  int64
}

func (m *memRatingStore) Create(rating *model.Rating) error {
	rating.ID = m.nextID
	m.nextID++
	rating.CreatedAt = time.Now()
	m.ratings = append(m.ratings, *rating)
	return nil
}

func (m *memRatingStore) ListByReport(reportID int64) ([]model.Rating, error) {
	var out []model.Rating
	for _, r := range m.ratings {
		if r.ReportID == reportID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRatingStore) ListByContractorCompleted(contractor string) ([]model.Rating, error) {
	var out []model.Rating
	for _, r := range m.ratings {
		report, ok := m.reports.reports[r.ReportID]
		if !ok {
			continue
		}
		if report.AssignedContractor == contractor && report.Status == model.StatusCompleted {
			out = append(out, r)
		}
	}
	return out, nil
}

type deadRates struct{}

func (deadRates) GetRates(ctx context.Context, base string) (map[string]float64, error) {
	return nil, errors.New("unreachable in tests")
}

// setupRouter wires the public API surface the way cmd/api does, backed
// by in-memory stores.
func setupRouter(t *testing.T) (*gin.Engine, *memStores) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stores := &memStores{
		reports: &memReportStore{reports: make(map[int64]*model.Report), nextID: 1},
		bids:    &memBidStore{bids: make(map[int64]*model.Bid), nextID: 1},
		tenders: &memTenderStore{tenders: make(map[int64]*model.Tender), nextID: 1},
	}
	stores.ratings = &memRatingStore{reports: stores.reports, nextID: 1}

	hub := websocket.NewHub()
	go hub.Run()

	estimator := service.NewEstimateService(deadRates{})
	reportService := service.NewReportService(stores.reports, stores.tenders, estimator, nil, hub)
	bidService := service.NewBidService(stores.bids, stores.reports, hub)
	tenderService := service.NewTenderService(stores.tenders, stores.reports)
	ratingService := service.NewRatingService(stores.ratings, stores.reports)
	exportService := service.NewExportService(stores.reports)

	uploadService, err := service.NewUploadService(t.TempDir())
	if err != nil {
		t.Fatalf("upload service: %v", err)
	}

	analyzeHandler := handler.NewAnalyzeHandler(estimator)
	reportHandler := handler.NewReportHandler(reportService, uploadService, exportService)
	bidHandler := handler.NewBidHandler(bidService)
	tenderHandler := handler.NewTenderHandler(tenderService)
	ratingHandler := handler.NewRatingHandler(ratingService)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/analyze-damage", analyzeHandler.Analyze)
		api.POST("/reports", reportHandler.Create)
		api.GET("/reports", reportHandler.List)
		api.GET("/reports/:id", reportHandler.Get)
		api.GET("/reports/:id/history", reportHandler.History)
		api.GET("/reports/:id/ratings", ratingHandler.ListByReport)
		api.GET("/tenders", tenderHandler.List)
		api.POST("/bids", bidHandler.Create)
		api.GET("/bids", bidHandler.List)
		api.GET("/bids/:id/progress", bidHandler.GetProgress)
		api.PATCH("/bids/:id/progress", bidHandler.UpdateProgress)
		api.POST("/ratings", ratingHandler.Create)
		api.GET("/contractors/:contractor/ratings", ratingHandler.ContractorSummary)
	}

	return r, stores
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createReport(t *testing.T, r *gin.Engine, title, description, location string) (model.Report, model.Tender) {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("title", title)
	form.WriteField("description", description)
	form.WriteField("location", location)
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("create report status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Report model.Report `json:"report"`
		Tender model.Tender `json:"tender"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	return resp.Report, resp.Tender
}

func TestReportLifecycle(t *testing.T) {
	r, _ := setupRouter(t)

	report, tender := createReport(t, r, "Pothole on Main St", "Deep pothole near the crosswalk", "Main St")

	if report.Status != model.StatusPending {
		t.Errorf("new report status = %q, want pending", report.Status)
	}
	if tender.ReportID != report.ID {
		t.Errorf("tender.ReportID = %d, want %d", tender.ReportID, report.ID)
	}
	if tender.Budget != service.TenderBudgetPending {
		t.Errorf("tender budget = %q, want %q", tender.Budget, service.TenderBudgetPending)
	}

	// The tender shows up on the public tender board
	w := doJSON(t, r, http.MethodGet, "/api/tenders", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list tenders status = %d", w.Code)
	}
	var tenders []model.Tender
	if err := json.Unmarshal(w.Body.Bytes(), &tenders); err != nil {
		t.Fatalf("unmarshal tenders: %v", err)
	}
	if len(tenders) != 1 {
		t.Errorf("got %d tenders, want 1", len(tenders))
	}

	// Contractor places a bid; the report moves to bidding
	w = doJSON(t, r, http.MethodPost, "/api/bids", model.CreateBidRequest{
		ReportID:   report.ID,
		Contractor: "Acme Repairs",
		Amount:     750,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create bid status = %d, body %s", w.Code, w.Body.String())
	}
	var bid model.Bid
	if err := json.Unmarshal(w.Body.Bytes(), &bid); err != nil {
		t.Fatalf("unmarshal bid: %v", err)
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/reports/%d", report.ID), nil)
	var fetched model.Report
	if err := json.Unmarshal(w.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if fetched.Status != model.StatusBidding {
		t.Errorf("report status after bid = %q, want bidding", fetched.Status)
	}

	// Contractor reports partial progress
	progress := 50
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/bids/%d/progress", bid.ID), model.ProgressUpdateRequest{Progress: &progress})
	if w.Code != http.StatusOK {
		t.Fatalf("progress status = %d, body %s", w.Code, w.Body.String())
	}
	var progressResp model.ProgressUpdateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &progressResp); err != nil {
		t.Fatalf("unmarshal progress response: %v", err)
	}
	if progressResp.Report.Status != model.StatusInProgress {
		t.Errorf("report status at 50%% = %q, want in-progress", progressResp.Report.Status)
	}

	// Work completes
	progress = 100
	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/bids/%d/progress", bid.ID), model.ProgressUpdateRequest{Progress: &progress})
	if w.Code != http.StatusOK {
		t.Fatalf("progress status = %d, body %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &progressResp); err != nil {
		t.Fatalf("unmarshal progress response: %v", err)
	}
	if progressResp.Report.Status != model.StatusCompleted {
		t.Errorf("report status at 100%% = %q, want completed", progressResp.Report.Status)
	}

	// The status timeline recorded the transitions
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/reports/%d/history", report.ID), nil)
	var history []model.StatusChange
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history) < 3 {
		t.Errorf("history has %d entries, want at least 3 (pending, in-progress, completed)", len(history))
	}
}

func TestBidProgressValidationOverHTTP(t *testing.T) {
	r, stores := setupRouter(t)

	report, _ := createReport(t, r, "Streetlight out", "Dark corner", "Oak St")
	bid := &model.Bid{ReportID: report.ID, Contractor: "Acme", Amount: 300, Status: model.BidStatusActive}
	stores.bids.Create(bid)

	// Missing progress field
	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/bids/%d/progress", bid.ID), map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing progress status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "between 0 and 100") {
		t.Errorf("body = %s, want range message", w.Body.String())
	}

	// Out-of-range progress
	for _, p := range []int{-1, 101} {
		progress := p
		w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/bids/%d/progress", bid.ID), model.ProgressUpdateRequest{Progress: &progress})
		if w.Code != http.StatusBadRequest {
			t.Errorf("progress %d status = %d, want 400", p, w.Code)
		}
	}

	// Unknown bid
	progress := 50
	w = doJSON(t, r, http.MethodPatch, "/api/bids/999/progress", model.ProgressUpdateRequest{Progress: &progress})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown bid status = %d, want 404", w.Code)
	}
}

func TestRatingsFlow(t *testing.T) {
	r, stores := setupRouter(t)

	report, _ := createReport(t, r, "Pothole", "Deep", "Main St")

	// Complete the report and assign the contractor
	contractor := "Acme Repairs"
	status := model.StatusCompleted
	stores.reports.Update(report.ID, model.UpdateReportRequest{
		Status:             &status,
		AssignedContractor: &contractor,
	})

	for _, stars := range []int{5, 4} {
		w := doJSON(t, r, http.MethodPost, "/api/ratings", model.CreateRatingRequest{
			ReportID: report.ID,
			UserID:   fmt.Sprintf("citizen-%d", stars),
			Rating:   stars,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create rating status = %d, body %s", w.Code, w.Body.String())
		}
	}

	// Invalid rating value rejected
	w := doJSON(t, r, http.MethodPost, "/api/ratings", model.CreateRatingRequest{
		ReportID: report.ID,
		UserID:   "citizen-x",
		Rating:   6,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid rating status = %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/contractors/Acme%20Repairs/ratings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("contractor ratings status = %d", w.Code)
	}
	var summary model.ContractorRatings
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if summary.TotalRatings != 2 {
		t.Errorf("TotalRatings = %d, want 2", summary.TotalRatings)
	}
	if summary.AverageRating == nil || *summary.AverageRating != "4.50" {
		t.Errorf("AverageRating = %v, want 4.50", summary.AverageRating)
	}
}

func TestReportValidationOverHTTP(t *testing.T) {
	r, _ := setupRouter(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("title", "Pothole")
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "All fields are required") {
		t.Errorf("body = %s, want required-fields error", w.Body.String())
	}
}
