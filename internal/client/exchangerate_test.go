package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/civicfix/civicfix-api/internal/model"
)

func newTestClient(server *httptest.Server) *ExchangeRateClient {
	c := NewExchangeRateClient("test-key")
	c.SetBaseURL(server.URL)
	return c
}

func TestGetRatesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test-key/latest/USD" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"result": "success",
			"base_code": "USD",
			"conversion_rates": {"EUR": 0.92, "JPY": 149.5, "USD": 1}
		}`))
	}))
	defer server.Close()

	rates, err := newTestClient(server).GetRates(context.Background(), "USD")
	if err != nil {
		t.Fatalf("GetRates returned error: %v", err)
	}

	if rates["EUR"] != 0.92 {
		t.Errorf("EUR rate = %v, want 0.92", rates["EUR"])
	}
	if len(rates) != 3 {
		t.Errorf("got %d rates, want 3", len(rates))
	}
}

func TestGetRatesErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, model.ErrRateLimited},
		{"unauthorized", http.StatusUnauthorized, model.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, model.ErrUnauthorized},
		{"not found", http.StatusNotFound, model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := newTestClient(server).GetRates(context.Background(), "USD")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGetRatesNonSuccessResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "error", "error-type": "invalid-key"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).GetRates(context.Background(), "USD")
	if !errors.Is(err, model.ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestGetRatesEmptyRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "success", "conversion_rates": {}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server).GetRates(context.Background(), "USD")
	if !errors.Is(err, model.ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestGetRatesMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	if _, err := newTestClient(server).GetRates(context.Background(), "USD"); err == nil {
		t.Error("expected decode error, got nil")
	}
}

func TestGetRatesContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"result": "success", "conversion_rates": {"EUR": 1}}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server).GetRates(ctx, "USD")
	if !errors.Is(err, model.ErrTimeout) && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want timeout", err)
	}
}
