package service

import (
	"context"
	"strings"
	"time"

	"market_aggregator/internal/app/port"
	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/metrics"
	"market_aggregator/internal/pkg/utils"
)

const (
	defaultCurrency     = "usd"
	defaultPriceTimeout = 10 * time.Second
)

// priceServiceImpl implements port.PriceService
type priceServiceImpl struct {
	chains  port.ChainRegistry
	client  port.PriceClient
	cache   port.PriceCache
	logger  port.Logger
	timeout time.Duration
}

// NewPriceService creates a new instance of priceServiceImpl.
func NewPriceService(
	chains port.ChainRegistry,
	client port.PriceClient,
	cache port.PriceCache,
	l port.Logger,
	timeout time.Duration,
) port.PriceService {
	if timeout <= 0 {
		timeout = defaultPriceTimeout
	}
	s := &priceServiceImpl{
		chains:  chains,
		client:  client,
		cache:   cache,
		logger:  l,
		timeout: timeout,
	}
	l.Info("PriceService initialized", "timeout", timeout)
	return s
}

func normalizeCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return defaultCurrency
	}
	return currency
}

// GetTokenPrices returns prices keyed by lower-cased address.
// Within the cache window the cached map is returned as is, whatever the arguments.
// Failures are logged and yield an empty map.
func (s *priceServiceImpl) GetTokenPrices(ctx context.Context, chainID uint64, addresses []string, currency string) entity.PriceMap {
	chain, ok := s.chains.Get(chainID)
	if !ok || !chain.SupportsTokenPrices() {
		s.logger.Debug("Token prices not supported for chain", "chain_id", chainID)
		return entity.PriceMap{}
	}

	if cached, hit := s.cache.Get(ctx); hit {
		metrics.PriceCacheLookups.WithLabelValues("hit").Inc()
		return cached
	}
	metrics.PriceCacheLookups.WithLabelValues("miss").Inc()

	valid := utils.FilterValidAddresses(addresses)
	if len(valid) == 0 {
		return entity.PriceMap{}
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prices, err := s.client.TokenPrices(reqCtx, chain.PlatformID, utils.LowerAll(valid), normalizeCurrency(currency))
	if err != nil {
		s.logger.Error("Error fetching token prices", "chain_id", chainID, "platform", chain.PlatformID, "error", err)
		return entity.PriceMap{}
	}
	if prices == nil {
		prices = entity.PriceMap{}
	}

	s.cache.Set(ctx, prices)
	return prices
}

// GetNativePrice returns the price of the chain's native coin. Not cached.
func (s *priceServiceImpl) GetNativePrice(ctx context.Context, chainID uint64, currency string) (entity.PriceQuote, bool) {
	chain, ok := s.chains.Get(chainID)
	if !ok || chain.NativeCoinID == "" {
		return entity.PriceQuote{}, false
	}
	currency = normalizeCurrency(currency)

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	quotes, err := s.client.CoinPrices(reqCtx, []string{chain.NativeCoinID}, []string{currency})
	if err != nil {
		s.logger.Error("Error fetching native token price", "chain_id", chainID, "coin_id", chain.NativeCoinID, "error", err)
		return entity.PriceQuote{}, false
	}

	quote, ok := quotes[chain.NativeCoinID][currency]
	return quote, ok
}

// GetPricesWithNative merges the native coin quote under the native sentinel address into the token prices.
func (s *priceServiceImpl) GetPricesWithNative(ctx context.Context, chainID uint64, tokens []entity.Token, currency string) entity.PriceMap {
	addresses := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.IsNative() {
			continue
		}
		addresses = append(addresses, t.Address)
	}

	prices := entity.PriceMap{}
	if len(addresses) > 0 {
		prices = s.GetTokenPrices(ctx, chainID, addresses, currency).Clone()
	}

	if native, ok := s.GetNativePrice(ctx, chainID, currency); ok {
		prices[entity.NativeTokenAddress] = native
	}
	return prices
}

// GetCoinPrices is a raw coin-id lookup; errors are returned to the caller.
func (s *priceServiceImpl) GetCoinPrices(ctx context.Context, coinIDs []string, currencies []string) (map[string]map[string]entity.PriceQuote, error) {
	if len(currencies) == 0 {
		currencies = []string{defaultCurrency}
	}
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.CoinPrices(reqCtx, coinIDs, utils.LowerAll(currencies))
}
