package currency

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"TRIPPLANNER_BACK-END/internal/metrics"
)

// Converter turns amounts into BaseCurrency. It never fails: a missing or
// broken quote provider degrades to the fallback table.
type Converter struct {
	provider QuoteProvider
}

// NewConverter wraps provider. A nil provider always uses fallback rates.
func NewConverter(provider QuoteProvider) *Converter {
	return &Converter{provider: provider}
}

// Rate returns the multiplier from code to BaseCurrency. The result is always > 0.
func (c *Converter) Rate(ctx context.Context, code Code) decimal.Decimal {
	if code == BaseCurrency {
		return decimal.NewFromInt(1)
	}
	if c == nil || c.provider == nil {
		metrics.ObserveProvider("quote", metrics.OutcomeSkipped)
		return FallbackRate(code)
	}

	rate, err := c.provider.Quote(ctx, code)
	if err != nil {
		metrics.ObserveProvider("quote", metrics.OutcomeFallback)
		log.WithFields(log.Fields{"provider": "quote", "currency": code}).
			Warnf("live quote unavailable, using fallback rate: %v", err)
		return FallbackRate(code)
	}
	if !rate.IsPositive() {
		metrics.ObserveProvider("quote", metrics.OutcomeFallback)
		log.WithFields(log.Fields{"provider": "quote", "currency": code}).
			Warnf("non-positive quote %s, using fallback rate", rate)
		return FallbackRate(code)
	}

	metrics.ObserveProvider("quote", metrics.OutcomeOK)
	return rate
}

// Convert multiplies amount by rate and rounds half away from zero to cents.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// RateCache memoizes Converter.Rate per code. It lives for a single
// aggregation pass and must not be shared across requests.
type RateCache struct {
	conv    *Converter
	mu      sync.Mutex
	rates   map[Code]decimal.Decimal
	lookups int
}

// NewRateCache returns an empty cache backed by conv.
func NewRateCache(conv *Converter) *RateCache {
	return &RateCache{conv: conv, rates: make(map[Code]decimal.Decimal)}
}

// Rate returns the cached rate of code, resolving it on first use.
func (rc *RateCache) Rate(ctx context.Context, code Code) decimal.Decimal {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rate, ok := rc.rates[code]; ok {
		return rate
	}
	rc.lookups++
	rate := rc.conv.Rate(ctx, code)
	rc.rates[code] = rate
	return rate
}

// Lookups is the number of codes resolved through the converter.
func (rc *RateCache) Lookups() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.lookups
}

// Snapshot copies the resolved rates, keyed by code.
func (rc *RateCache) Snapshot() map[Code]decimal.Decimal {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make(map[Code]decimal.Decimal, len(rc.rates))
	for k, v := range rc.rates {
		out[k] = v
	}
	return out
}
