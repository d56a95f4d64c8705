package service

import (
	"context"
	"errors"
	"testing"
)

func TestResolveKnownCountries(t *testing.T) {
	r := NewCurrencyResolver()

	tests := []struct {
		country string
		want    string
	}{
		{"United States", "USD"},
		{"Germany", "EUR"},
		{"France", "EUR"},
		{"Japan", "JPY"},
		{"Brazil", "BRL"},
		{"United Kingdom", "GBP"},
		{"India", "INR"},
		{"South Africa", "ZAR"},
	}

	for _, tt := range tests {
		if got := r.Resolve(tt.country); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.country, got, tt.want)
		}
	}
}

func TestResolveUnknownDefaultsToUSD(t *testing.T) {
	r := NewCurrencyResolver()

	// The table is exact and case-sensitive: anything off the selector
	// list, including case variants, falls back to USD.
	for _, country := range []string{"", "Atlantis", "germany", "GERMANY", " Germany"} {
		if got := r.Resolve(country); got != USDCode {
			t.Errorf("Resolve(%q) = %q, want USD", country, got)
		}
	}
}

func TestConvertSameCurrencySkipsLookup(t *testing.T) {
	rates := &stubRates{rates: map[string]float64{"USD": 1}}
	c := NewCurrencyConverter(rates)

	got := c.Convert(context.Background(), 100, "USD", "USD")
	if got != 100 {
		t.Errorf("Convert(100, USD, USD) = %v, want 100", got)
	}
	if rates.calls != 0 {
		t.Errorf("rates fetched %d times, want 0", rates.calls)
	}
}

func TestConvertFailsOpen(t *testing.T) {
	tests := []struct {
		name  string
		rates *stubRates
	}{
		{"upstream error", &stubRates{err: errors.New("boom")}},
		{"missing target rate", &stubRates{rates: map[string]float64{"GBP": 0.8}}},
		{"non-positive rate", &stubRates{rates: map[string]float64{"EUR": 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCurrencyConverter(tt.rates)
			if got := c.Convert(context.Background(), 250, "USD", "EUR"); got != 250 {
				t.Errorf("Convert = %v, want unchanged 250", got)
			}
		})
	}
}

func TestConvertAppliesRate(t *testing.T) {
	c := NewCurrencyConverter(&stubRates{rates: map[string]float64{"EUR": 0.5}})

	if got := c.Convert(context.Background(), 200, "USD", "EUR"); got != 100 {
		t.Errorf("Convert(200, USD, EUR) = %v, want 100", got)
	}
}

func TestConvertPairSingleLookup(t *testing.T) {
	rates := &stubRates{rates: map[string]float64{"JPY": 150}}
	c := NewCurrencyConverter(rates)

	min, max := c.ConvertPair(context.Background(), 100, 200, "USD", "JPY")
	if min != 15000 || max != 30000 {
		t.Errorf("ConvertPair = (%v, %v), want (15000, 30000)", min, max)
	}
	if rates.calls != 1 {
		t.Errorf("rates fetched %d times, want 1", rates.calls)
	}
}

func TestConvertPairFailsOpenTogether(t *testing.T) {
	c := NewCurrencyConverter(&stubRates{err: errors.New("boom")})

	min, max := c.ConvertPair(context.Background(), 100, 200, "USD", "JPY")
	if min != 100 || max != 200 {
		t.Errorf("ConvertPair = (%v, %v), want unchanged (100, 200)", min, max)
	}
}
