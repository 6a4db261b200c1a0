package pricecache

import (
	"context"
	"errors"
	"time"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Compile-time check
var _ port.PriceCache = (*Redis)(nil)

// redisClient is the subset of *redis.Client used here.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis shares the latest price map between instances. Expiry is delegated to Redis (SET ... EX).
type Redis struct {
	client redisClient
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis creates a Redis-backed price cache.
func NewRedis(client redisClient, key string, ttl time.Duration, logger *zap.Logger) *Redis {
	return &Redis{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger.Named("RedisPriceCache"),
	}
}

// Get returns the cached map; any Redis or decoding error counts as a miss.
func (r *Redis) Get(ctx context.Context) (entity.PriceMap, bool) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Redis price cache read failed", zap.String("key", r.key), zap.Error(err))
		}
		return nil, false
	}

	var prices entity.PriceMap
	if err := json.Unmarshal(raw, &prices); err != nil {
		r.logger.Warn("Redis price cache holds undecodable value", zap.String("key", r.key), zap.Error(err))
		return nil, false
	}
	return prices, true
}

// Set replaces the cached map. Failures are logged; the caller already has fresh data.
func (r *Redis) Set(ctx context.Context, prices entity.PriceMap) {
	raw, err := json.Marshal(prices)
	if err != nil {
		r.logger.Error("Failed to encode prices for Redis", zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		r.logger.Warn("Redis price cache write failed", zap.String("key", r.key), zap.Error(err))
		return
	}
	r.logger.Debug("Redis cache set", zap.String("key", r.key), zap.Int("entries", len(prices)))
}
