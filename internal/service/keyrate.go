package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

const keyRateCacheKey = "appraisal:key_rate"

// KeyRate returns the reference annual rate (key rate plus bank margin),
// served from cache while fresh.
func (s *Service) KeyRate(ctx context.Context) (decimal.Decimal, error) {
	cached, ok, err := s.cache.Get(ctx, keyRateCacheKey)
	if err != nil {
		s.log.Warnf("Key rate cache read failed: %v", err)
	}
	if ok {
		rate, err := decimal.NewFromString(cached)
		if err == nil {
			return rate, nil
		}
		s.log.Warnf("Discarding malformed cached key rate %q: %v", cached, err)
	}
	return s.RefreshKeyRate(ctx)
}

// RefreshKeyRate fetches the reference rate and stores it in the cache
func (s *Service) RefreshKeyRate(ctx context.Context) (decimal.Decimal, error) {
	raw, err := s.rates.GetKeyRate(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrReferenceRateUnavailable, err)
	}
	rate := decimal.NewFromFloat(raw).Round(4)

	if err := s.cache.Set(ctx, keyRateCacheKey, rate.String(), s.config.KeyRateTTL); err != nil {
		s.log.Warnf("Key rate cache write failed: %v", err)
	}
	return rate, nil
}
