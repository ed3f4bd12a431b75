package service

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"solfolio/internal/app/port"
	"solfolio/internal/domain/entity"
	"solfolio/internal/infrastructure/priceapi"
	"solfolio/internal/pkg/metrics"
	"solfolio/internal/pkg/utils"
)

// WrappedSOLMint is the canonical wrapped-SOL mint, used to price the
// native balance through the regular token price path.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// FallbackSOLPriceUSD is the last-resort native price when every upstream
// source failed. A stale-but-plausible constant keeps portfolio totals
// readable instead of zeroing the dominant asset.
const FallbackSOLPriceUSD = 30.0

// Recommended cache lifetimes for the injected caches.
const (
	RegistryCacheTTL = time.Hour
	PriceCacheTTL    = 5 * time.Minute
)

// NativePriceExtendedTTL bounds how long the last known native price may
// stand in for failed live sources before the fixed fallback takes over.
const NativePriceExtendedTTL = 30 * time.Minute

const (
	registryLoadedKey  = "registry:loaded"
	nativeLastKnownKey = "native:lastKnown"
)

// priceServiceImpl implements port.PriceService.
type priceServiceImpl struct {
	client       priceapi.PriceClient
	nativeSource port.NativePriceSource
	logger       port.Logger

	registryCache *cache.Cache
	priceCache    *cache.Cache
	batchDelay    time.Duration

	registryMu sync.Mutex
}

// NewPriceService creates a new instance of priceServiceImpl. Both caches
// are injected so tests and callers control their lifetimes; nil caches get
// the recommended TTLs. nativeSource may be nil, which skips that rung of
// the native price fallback chain.
func NewPriceService(
	client priceapi.PriceClient,
	nativeSource port.NativePriceSource,
	registryCache *cache.Cache,
	priceCache *cache.Cache,
	batchDelay time.Duration,
	l port.Logger,
) port.PriceService {
	if registryCache == nil {
		registryCache = cache.New(RegistryCacheTTL, 10*time.Minute)
	}
	if priceCache == nil {
		priceCache = cache.New(PriceCacheTTL, time.Minute)
	}
	return &priceServiceImpl{
		client:        client,
		nativeSource:  nativeSource,
		logger:        l,
		registryCache: registryCache,
		priceCache:    priceCache,
		batchDelay:    batchDelay,
	}
}

// GetPrices implements port.PriceService. Every requested mint is present
// in the result; mints nothing could price carry a zero price and, where
// the registry knows them, their display metadata.
func (s *priceServiceImpl) GetPrices(ctx context.Context, mints []string) map[string]entity.TokenPrice {
	unique := utils.UniqueStrings(mints)
	result := make(map[string]entity.TokenPrice, len(unique))
	if len(unique) == 0 {
		return result
	}

	s.ensureRegistry(ctx)

	prices := make(map[string]float64, len(unique))
	var missing []string
	for _, mint := range unique {
		if cached, ok := s.priceCache.Get(priceKey(mint)); ok {
			metrics.PriceCacheHits.Inc()
			prices[mint] = cached.(float64)
			continue
		}
		metrics.PriceCacheMisses.Inc()
		missing = append(missing, mint)
	}

	s.fetchMissing(ctx, missing, prices)

	for _, mint := range unique {
		entry := s.registryEntry(mint)
		entry.PriceUSD = prices[mint]
		result[mint] = entry
	}
	return result
}

// fetchMissing pulls uncached prices from the provider in batches, pausing
// between batches to stay under the provider's rate limits. A failed batch
// is logged and skipped; its mints stay at zero.
func (s *priceServiceImpl) fetchMissing(ctx context.Context, missing []string, prices map[string]float64) {
	batches := utils.BatchStrings(missing, priceapi.MaxMintsPerPriceRequest)
	for i, batch := range batches {
		if i > 0 && s.batchDelay > 0 {
			select {
			case <-time.After(s.batchDelay):
			case <-ctx.Done():
				s.logger.Warn("Price fetch cancelled mid-batch", "remainingBatches", len(batches)-i)
				return
			}
		}

		fetched, err := s.client.GetPrices(ctx, batch)
		if err != nil {
			s.logger.Error("Failed to fetch price batch, degrading to zero prices",
				"batchIndex", i, "batchSize", len(batch), "error", err)
			continue
		}

		for mint, price := range fetched {
			prices[mint] = price
			s.priceCache.Set(priceKey(mint), price, cache.DefaultExpiration)
		}
	}
}

// GetNativePrice implements port.PriceService. The fallback chain is: price
// API entry for wrapped SOL, then a live swap quote, then the last known
// price within its extended TTL, then a fixed constant.
func (s *priceServiceImpl) GetNativePrice(ctx context.Context) float64 {
	if price := s.GetPrices(ctx, []string{WrappedSOLMint})[WrappedSOLMint].PriceUSD; price > 0 {
		s.priceCache.Set(nativeLastKnownKey, price, NativePriceExtendedTTL)
		return price
	}

	if s.nativeSource != nil {
		price, err := s.nativeSource.NativePriceUSD(ctx)
		if err == nil && price > 0 {
			s.priceCache.Set(priceKey(WrappedSOLMint), price, cache.DefaultExpiration)
			s.priceCache.Set(nativeLastKnownKey, price, NativePriceExtendedTTL)
			s.logger.Info("Native price resolved via quote fallback", "priceUSD", price)
			return price
		}
		if err != nil {
			s.logger.Warn("Native quote fallback failed", "error", err)
		}
	}

	if cached, ok := s.priceCache.Get(nativeLastKnownKey); ok {
		price := cached.(float64)
		s.logger.Warn("Live native price sources failed, using last known price",
			"priceUSD", price)
		return price
	}

	s.logger.Warn("All native price sources failed, using fixed fallback",
		"fallbackPriceUSD", FallbackSOLPriceUSD)
	return FallbackSOLPriceUSD
}

// ensureRegistry loads the token registry into the registry cache once per
// TTL window. Failures degrade to unknown display metadata.
func (s *priceServiceImpl) ensureRegistry(ctx context.Context) {
	if _, loaded := s.registryCache.Get(registryLoadedKey); loaded {
		return
	}

	s.registryMu.Lock()
	defer s.registryMu.Unlock()
	if _, loaded := s.registryCache.Get(registryLoadedKey); loaded {
		return
	}

	registry, err := s.client.GetTokenRegistry(ctx)
	if err != nil {
		s.logger.Warn("Failed to load token registry, display metadata will be unknown", "error", err)
		return
	}

	for mint, entry := range registry {
		s.registryCache.Set(registryKey(mint), entry, cache.DefaultExpiration)
	}
	s.registryCache.Set(registryLoadedKey, true, cache.DefaultExpiration)
	s.logger.Info("Token registry cached", "tokenCount", len(registry))
}

// registryEntry returns cached display metadata for a mint, or the unknown
// placeholders.
func (s *priceServiceImpl) registryEntry(mint string) entity.TokenPrice {
	if cached, ok := s.registryCache.Get(registryKey(mint)); ok {
		return cached.(entity.TokenPrice)
	}
	return entity.TokenPrice{
		Symbol: entity.UnknownSymbol,
		Name:   entity.UnknownTokenName,
	}
}

func priceKey(mint string) string    { return "price:" + mint }
func registryKey(mint string) string { return "registry:" + mint }
