package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/model"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://v6.exchangerate-api.com/v6"

	// RequestsPerMinute is a conservative limit well below the upstream quota
	RequestsPerMinute = 60

	// DefaultTimeout bounds the latest-rates request. The pipeline fails open
	// on expiry, so this only caps latency, it does not change the contract.
	DefaultTimeout = 5 * time.Second

	resultSuccess = "success"
)

// RatesResponse is the upstream latest-rates payload
type RatesResponse struct {
	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

// ExchangeRateClient is the HTTP client for the exchangerate-api.com service
type ExchangeRateClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewExchangeRateClient creates a new exchange-rate client
func NewExchangeRateClient(apiKey string) *ExchangeRateClient {
	return &ExchangeRateClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/RequestsPerMinute), 5),
	}
}

// SetBaseURL overrides the upstream base URL. Used by tests.
func (c *ExchangeRateClient) SetBaseURL(url string) {
	c.baseURL = url
}

// GetRates fetches the latest conversion-rate table for a base currency
func (c *ExchangeRateClient) GetRates(ctx context.Context, baseCurrency string) (map[string]float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, baseCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, model.ErrTimeout
		}
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// OK, continue
	case http.StatusTooManyRequests:
		return nil, model.ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, model.ErrUnauthorized
	case http.StatusNotFound:
		return nil, model.ErrNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var ratesResp RatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&ratesResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if ratesResp.Result != resultSuccess {
		logger.Get(ctx).Warn().
			Str("result", ratesResp.Result).
			Str("base", baseCurrency).
			Msg("Exchange-rate API returned non-success result")
		return nil, model.ErrInvalidResponse
	}

	if len(ratesResp.ConversionRates) == 0 {
		return nil, model.ErrInvalidResponse
	}

	logger.Get(ctx).Debug().
		Str("base", baseCurrency).
		Int("rates", len(ratesResp.ConversionRates)).
		Msg("Conversion rates fetched")

	return ratesResp.ConversionRates, nil
}
