package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"market_aggregator/internal/domain/entity"
	"market_aggregator/internal/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const proAPIKeyHeader = "x-cg-pro-api-key"

// CoinGeckoClient implements port.PriceClient against the CoinGecko simple price API.
type CoinGeckoClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGeckoClient. When apiKey is set every request carries the pro key header.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// simplePriceResponse is {id: {"usd": 1.0, "usd_24h_change": -0.4}}.
type simplePriceResponse map[string]map[string]decimal.NullDecimal

// TokenPrices implements port.PriceClient.
func (c *CoinGeckoClient) TokenPrices(ctx context.Context, platformID string, addresses []string, currency string) (entity.PriceMap, error) {
	if len(addresses) == 0 {
		return entity.PriceMap{}, nil
	}
	currency = strings.ToLower(currency)

	q := url.Values{}
	q.Set("contract_addresses", strings.Join(addresses, ","))
	q.Set("vs_currencies", currency)
	q.Set("include_24h_change", "true")
	requestURL := fmt.Sprintf("%s/simple/token_price/%s?%s", c.baseURL, url.PathEscape(platformID), q.Encode())

	parsed, err := c.get(ctx, "token_price", requestURL)
	if err != nil {
		return nil, err
	}

	prices := make(entity.PriceMap, len(parsed))
	for addr, quote := range parsed {
		if q, ok := toQuote(quote, currency); ok {
			prices[strings.ToLower(addr)] = q
		}
	}
	c.logger.Debug("Fetched token prices",
		zap.String("platform", platformID),
		zap.Int("requested", len(addresses)),
		zap.Int("priced", len(prices)))
	return prices, nil
}

// CoinPrices implements port.PriceClient.
func (c *CoinGeckoClient) CoinPrices(ctx context.Context, coinIDs []string, currencies []string) (map[string]map[string]entity.PriceQuote, error) {
	if len(coinIDs) == 0 {
		return map[string]map[string]entity.PriceQuote{}, nil
	}
	lowered := make([]string, len(currencies))
	for i, cur := range currencies {
		lowered[i] = strings.ToLower(cur)
	}

	q := url.Values{}
	q.Set("ids", strings.Join(coinIDs, ","))
	q.Set("vs_currencies", strings.Join(lowered, ","))
	q.Set("include_24h_change", "true")
	requestURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())

	parsed, err := c.get(ctx, "price", requestURL)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]entity.PriceQuote, len(parsed))
	for coinID, quote := range parsed {
		byCurrency := make(map[string]entity.PriceQuote, len(lowered))
		for _, cur := range lowered {
			if pq, ok := toQuote(quote, cur); ok {
				byCurrency[cur] = pq
			}
		}
		out[coinID] = byCurrency
	}
	return out, nil
}

func (c *CoinGeckoClient) get(ctx context.Context, endpoint, requestURL string) (simplePriceResponse, error) {
	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{proAPIKeyHeader: c.apiKey}
	}

	c.logger.Debug("Requesting prices from CoinGecko", zap.String("endpoint", endpoint), zap.String("url", requestURL))
	body, err := doGet(ctx, c.client, requestURL, headers, c.timeout)
	if err != nil {
		metrics.PriceRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Error("CoinGecko request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	var parsed simplePriceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.PriceRequests.WithLabelValues(endpoint, "error").Inc()
		c.logger.Error("Failed to unmarshal CoinGecko response",
			zap.String("endpoint", endpoint),
			zap.String("responseBody", truncate(body)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: failed to unmarshal CoinGecko response: %v", entity.ErrUpstream, err)
	}
	metrics.PriceRequests.WithLabelValues(endpoint, "success").Inc()
	return parsed, nil
}

func toQuote(raw map[string]decimal.NullDecimal, currency string) (entity.PriceQuote, bool) {
	price, ok := raw[currency]
	if !ok || !price.Valid {
		return entity.PriceQuote{}, false
	}
	return entity.PriceQuote{
		Price:     price.Decimal,
		Change24h: raw[currency+"_24h_change"],
	}, true
}
