package service

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/civicfix/civicfix-api/internal/model"
)

// costSpread is the symmetric band applied around the drawn base cost
const costSpread = 0.15

// RandSource supplies the random base-cost draw. Production uses a seeded
// math/rand source; tests inject a fixed one to pin the draw.
type RandSource interface {
	Intn(n int) int
}

// lockedRand guards a rand.Rand for concurrent handler use
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// EstimateService runs the damage-cost estimation pipeline:
// classify -> draw cost range -> resolve currency -> convert.
type EstimateService struct {
	classifier *Classifier
	resolver   *CurrencyResolver
	converter  *CurrencyConverter
	rand       RandSource
}

// NewEstimateService creates the pipeline with production defaults
func NewEstimateService(rates RatesFetcher) *EstimateService {
	return &EstimateService{
		classifier: NewClassifier(),
		resolver:   NewCurrencyResolver(),
		converter:  NewCurrencyConverter(rates),
		rand:       &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))},
	}
}

// NewEstimateServiceWithRand creates the pipeline with an injected random
// source. Used by tests that need a deterministic draw.
func NewEstimateServiceWithRand(rates RatesFetcher, src RandSource) *EstimateService {
	s := NewEstimateService(rates)
	s.rand = src
	return s
}

// Analyze validates the request and produces an estimation result. The only
// error it returns is model.ErrMissingFields; conversion failures degrade to
// the USD amounts per the fail-open contract.
func (s *EstimateService) Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.EstimationResult, error) {
	if req.Title == "" || req.Description == "" || req.Country == "" {
		return nil, model.ErrMissingFields
	}

	category := s.classifier.Classify(req.Title, req.Description)
	usdEstimate := s.drawEstimate(category)
	currency := s.resolver.Resolve(req.Country)

	estimate := usdEstimate
	if currency != USDCode {
		min, max := s.converter.ConvertPair(ctx,
			float64(usdEstimate.Min), float64(usdEstimate.Max), USDCode, currency)
		estimate = model.CostEstimate{
			Min: int(math.Round(min)),
			Max: int(math.Round(max)),
		}
	}

	logger.Get(ctx).Info().
		Str("category", category.Name).
		Str("country", req.Country).
		Str("currency", currency).
		Int("min", estimate.Min).
		Int("max", estimate.Max).
		Msg("Damage estimate produced")
	metrics.Get().IncrementEstimates()

	return &model.EstimationResult{
		Title:        req.Title,
		Description:  req.Description,
		Country:      req.Country,
		Currency:     currency,
		CostEstimate: estimate,
	}, nil
}

// drawEstimate draws a uniform base cost from the category bracket and
// applies the ±15% band. The draw is randomized per call: identical input
// legitimately produces different output across calls.
func (s *EstimateService) drawEstimate(category Category) model.CostEstimate {
	base := category.Lo + s.rand.Intn(category.Hi-category.Lo+1)
	return model.CostEstimate{
		Min: int(math.Round(float64(base) * (1 - costSpread))),
		Max: int(math.Round(float64(base) * (1 + costSpread))),
	}
}

// Classifier exposes the classifier for handlers and tests
func (s *EstimateService) Classifier() *Classifier {
	return s.classifier
}

// Resolver exposes the currency resolver
func (s *EstimateService) Resolver() *CurrencyResolver {
	return s.resolver
}
