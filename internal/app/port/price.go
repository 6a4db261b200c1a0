package port

import (
	"context"

	"market_aggregator/internal/domain/entity"
)

// PriceClient talks to the external price API.
type PriceClient interface {
	// TokenPrices fetches prices of token contracts on one platform, keyed by lower-cased address.
	TokenPrices(ctx context.Context, platformID string, addresses []string, currency string) (entity.PriceMap, error)
	// CoinPrices fetches prices of coins by coin id, keyed by coin id and then currency.
	CoinPrices(ctx context.Context, coinIDs []string, currencies []string) (map[string]map[string]entity.PriceQuote, error)
}

// PriceCache holds the single most recent price map.
type PriceCache interface {
	Get(ctx context.Context) (entity.PriceMap, bool)
	Set(ctx context.Context, prices entity.PriceMap)
}

// PriceService is the price fetcher consumed by the other services and the REST layer.
type PriceService interface {
	GetTokenPrices(ctx context.Context, chainID uint64, addresses []string, currency string) entity.PriceMap
	GetNativePrice(ctx context.Context, chainID uint64, currency string) (entity.PriceQuote, bool)
	GetPricesWithNative(ctx context.Context, chainID uint64, tokens []entity.Token, currency string) entity.PriceMap
	GetCoinPrices(ctx context.Context, coinIDs []string, currencies []string) (map[string]map[string]entity.PriceQuote, error)
}
