package pricecache

import (
	"context"
	"fmt"
	"time"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Compile-time check
var _ port.PriceCache = (*Memory)(nil)

const pricesKey = "prices"

// Memory keeps the latest price map in process memory under a single key.
type Memory struct {
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewMemory creates an in-memory price cache whose entry expires ttl after each Set.
func NewMemory(ttl time.Duration, logger *zap.Logger) *Memory {
	logger.Info("Initialized go-cache for price storage", zap.Duration("ttl", ttl))
	return &Memory{
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger.Named("MemoryPriceCache"),
	}
}

// Get returns the cached map while it is younger than the TTL.
func (m *Memory) Get(_ context.Context) (entity.PriceMap, bool) {
	x, found := m.cache.Get(pricesKey)
	if !found {
		return nil, false
	}
	prices, ok := x.(entity.PriceMap)
	if !ok {
		m.logger.Warn("Memory cache data type mismatch for key",
			zap.String("key", pricesKey), zap.String("type", fmt.Sprintf("%T", x)))
		return nil, false
	}
	return prices, true
}

// Set replaces the cached map and restarts the TTL.
func (m *Memory) Set(_ context.Context, prices entity.PriceMap) {
	m.cache.Set(pricesKey, prices, m.ttl)
	m.logger.Debug("Memory cache set", zap.String("key", pricesKey), zap.Int("entries", len(prices)))
}
