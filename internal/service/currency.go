package service

import (
	"context"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
)

// USDCode is the base and fallback currency
const USDCode = "USD"

// defaultCountryCurrencies maps country names to ISO 4217 codes.
// Lookups are exact and case-sensitive on the country string as submitted
// by the front end's fixed country selector.
var defaultCountryCurrencies = map[string]string{
	"United States":        "USD",
	"Canada":               "CAD",
	"Mexico":               "MXN",
	"Brazil":               "BRL",
	"Argentina":            "ARS",
	"Colombia":             "COP",
	"Peru":                 "PEN",
	"Chile":                "CLP",
	"United Kingdom":       "GBP",
	"Germany":              "EUR",
	"France":               "EUR",
	"Italy":                "EUR",
	"Spain":                "EUR",
	"Netherlands":          "EUR",
	"Belgium":              "EUR",
	"Switzerland":          "CHF",
	"Sweden":               "SEK",
	"Norway":               "NOK",
	"Denmark":              "DKK",
	"Poland":               "PLN",
	"Russia":               "RUB",
	"India":                "INR",
	"China":                "CNY",
	"Japan":                "JPY",
	"South Korea":          "KRW",
	"Singapore":            "SGD",
	"Malaysia":             "MYR",
	"Thailand":             "THB",
	"Vietnam":              "VND",
	"Indonesia":            "IDR",
	"Philippines":          "PHP",
	"Pakistan":             "PKR",
	"Bangladesh":           "BDT",
	"Sri Lanka":            "LKR",
	"Nepal":                "NPR",
	"Saudi Arabia":         "SAR",
	"United Arab Emirates": "AED",
	"Qatar":                "QAR",
	"Kuwait":               "KWD",
	"Israel":               "ILS",
	"Turkey":               "TRY",
	"South Africa":         "ZAR",
	"Egypt":                "EGP",
	"Nigeria":              "NGN",
	"Kenya":                "KES",
	"Ethiopia":             "ETB",
	"Australia":            "AUD",
	"New Zealand":          "NZD",
}

// CurrencyResolver maps a country name to its currency code
type CurrencyResolver struct {
	table map[string]string
}

// NewCurrencyResolver creates a resolver with the built-in country table
func NewCurrencyResolver() *CurrencyResolver {
	return &CurrencyResolver{table: defaultCountryCurrencies}
}

// NewCurrencyResolverWithTable creates a resolver with a custom table
func NewCurrencyResolverWithTable(table map[string]string) *CurrencyResolver {
	return &CurrencyResolver{table: table}
}

// Resolve returns the currency code for a country, or USD when unknown
func (r *CurrencyResolver) Resolve(country string) string {
	if code, ok := r.table[country]; ok {
		return code
	}
	return USDCode
}

// RatesFetcher fetches the latest conversion-rate table for a base currency
type RatesFetcher interface {
	GetRates(ctx context.Context, baseCurrency string) (map[string]float64, error)
}

// CurrencyConverter converts amounts between currencies, failing open: any
// upstream failure returns the input amount unchanged. The estimation must
// always produce an answer, so conversion errors never propagate.
type CurrencyConverter struct {
	rates RatesFetcher
}

// NewCurrencyConverter creates a converter backed by a rates fetcher
func NewCurrencyConverter(rates RatesFetcher) *CurrencyConverter {
	return &CurrencyConverter{rates: rates}
}

// Convert converts amount from one currency to another. On any failure the
// original amount is returned; the fallback is logged and counted but not
// surfaced to the caller.
func (c *CurrencyConverter) Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) float64 {
	if toCurrency == fromCurrency {
		return amount
	}

	rate, ok := c.lookupRate(ctx, fromCurrency, toCurrency)
	if !ok {
		return amount
	}
	return amount * rate
}

// ConvertPair converts min and max with a single rate lookup so that either
// both values are converted or neither is. Converting them against separate
// lookups could invert the min <= max ordering if one lookup failed.
func (c *CurrencyConverter) ConvertPair(ctx context.Context, min, max float64, fromCurrency, toCurrency string) (float64, float64) {
	if toCurrency == fromCurrency {
		return min, max
	}

	rate, ok := c.lookupRate(ctx, fromCurrency, toCurrency)
	if !ok {
		return min, max
	}
	return min * rate, max * rate
}

func (c *CurrencyConverter) lookupRate(ctx context.Context, fromCurrency, toCurrency string) (float64, bool) {
	rates, err := c.rates.GetRates(ctx, fromCurrency)
	if err != nil {
		logger.Get(ctx).Warn().
			Str("from", fromCurrency).
			Str("to", toCurrency).
			Err(err).
			Msg("Currency conversion failed, returning unconverted amount")
		metrics.Get().IncrementConversionFallback()
		return 0, false
	}

	rate, ok := rates[toCurrency]
	if !ok || rate <= 0 {
		logger.Get(ctx).Warn().
			Str("from", fromCurrency).
			Str("to", toCurrency).
			Msg("No conversion rate for target currency, returning unconverted amount")
		metrics.Get().IncrementConversionFallback()
		return 0, false
	}

	metrics.Get().IncrementConversions()
	return rate, true
}
