package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/civicfix/civicfix-api/internal/model"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/gin-gonic/gin"
)

type stubRates struct {
	rates map[string]float64
	err   error
}

func (s *stubRates) GetRates(ctx context.Context, base string) (map[string]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

func newAnalyzeRouter(rates service.RatesFetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAnalyzeHandler(service.NewEstimateService(rates))
	r.POST("/api/analyze-damage", h.Analyze)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpointMissingFields(t *testing.T) {
	r := newAnalyzeRouter(&stubRates{err: errors.New("unreachable")})

	cases := []url.Values{
		{},
		{"title": {"Pothole"}},
		{"title": {"Pothole"}, "description": {"Deep"}},
		{"description": {"Deep"}, "country": {"Germany"}},
	}

	for _, form := range cases {
		w := postForm(r, "/api/analyze-damage", form)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400 for form %v", w.Code, form)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if body["error"] != "All fields are required" {
			t.Errorf("error = %q, want %q", body["error"], "All fields are required")
		}
	}
}

func TestAnalyzeEndpointSuccess(t *testing.T) {
	r := newAnalyzeRouter(&stubRates{rates: map[string]float64{"EUR": 0.9}})

	w := postForm(r, "/api/analyze-damage", url.Values{
		"title":       {"Pothole on Main St"},
		"description": {"Deep pothole near the crosswalk"},
		"country":     {"Germany"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var result model.EstimationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}

	if result.Title != "Pothole on Main St" {
		t.Errorf("title = %q, want echo of input", result.Title)
	}
	if result.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", result.Currency)
	}
	if result.CostEstimate.Min <= 0 || result.CostEstimate.Max < result.CostEstimate.Min {
		t.Errorf("estimate = %+v, want positive and ordered", result.CostEstimate)
	}
}

func TestAnalyzeEndpointFailsOpen(t *testing.T) {
	// A dead exchange-rate upstream must not surface as an error: the
	// endpoint still answers 200 with the USD amounts.
	r := newAnalyzeRouter(&stubRates{err: errors.New("upstream down")})

	w := postForm(r, "/api/analyze-damage", url.Values{
		"title":       {"Streetlight out"},
		"description": {"Dark corner"},
		"country":     {"Japan"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var result model.EstimationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if result.Currency != "JPY" {
		t.Errorf("currency = %q, want JPY", result.Currency)
	}

	// streetlight bracket is 200-500; with the ±15% band the USD amounts
	// stay within 170-575
	if result.CostEstimate.Min < 170 || result.CostEstimate.Max > 575 {
		t.Errorf("estimate = %+v, want unconverted USD band", result.CostEstimate)
	}
}

func TestAnalyzeEndpointUnknownCountryUsesUSD(t *testing.T) {
	r := newAnalyzeRouter(&stubRates{rates: map[string]float64{"EUR": 0.9}})

	w := postForm(r, "/api/analyze-damage", url.Values{
		"title":       {"Fallen tree"},
		"description": {"Blocking the sidewalk"},
		"country":     {"Atlantis"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var result model.EstimationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if result.Currency != "USD" {
		t.Errorf("currency = %q, want USD fallback", result.Currency)
	}
}
